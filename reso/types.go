package reso

// Record is a single entity as returned by the API. RESO payloads are
// schema-driven and vary per MLS, so records stay dynamic rather than
// being bound to generated structs.
type Record map[string]any

// ODataResponse is the standard OData collection envelope.
type ODataResponse struct {
	// Context is the @odata.context metadata URL.
	Context string `json:"@odata.context,omitempty"`
	// Count carries the total matching record count when the query was
	// built with WithCount; nil otherwise.
	Count *int64 `json:"@odata.count,omitempty"`
	// NextLink is the @odata.nextLink continuation URL for server-driven
	// paging, when present.
	NextLink string `json:"@odata.nextLink,omitempty"`
	// Value holds the records of this response.
	Value []Record `json:"value"`
}
