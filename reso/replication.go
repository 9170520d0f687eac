package reso

import (
	"fmt"
	"strings"
)

// MaxReplicationTop is the largest page size the replication endpoint
// accepts per request.
const MaxReplicationTop = 2000

// ReplicationQuery describes a bulk-transfer request against the
// /replication endpoint. The endpoint supports only $filter, $select and
// $top; there is no key access, paging offset, ordering or aggregation —
// continuation happens through the next-link cursor instead.
type ReplicationQuery struct {
	resource     string
	filter       string
	selectFields []string
	top          *int
}

// ReplicationQueryBuilder builds ReplicationQuery values.
type ReplicationQueryBuilder struct {
	query ReplicationQuery
}

// NewReplicationQueryBuilder starts a replication query against the named
// resource.
func NewReplicationQueryBuilder(resource string) *ReplicationQueryBuilder {
	return &ReplicationQueryBuilder{query: ReplicationQuery{resource: resource}}
}

// Filter sets the $filter expression, passed through verbatim.
func (b *ReplicationQueryBuilder) Filter(expr string) *ReplicationQueryBuilder {
	b.query.filter = expr
	return b
}

// Select sets the $select field list. Order is preserved.
func (b *ReplicationQueryBuilder) Select(fields ...string) *ReplicationQueryBuilder {
	b.query.selectFields = fields
	return b
}

// Top sets the $top page size, up to MaxReplicationTop.
func (b *ReplicationQueryBuilder) Top(n int) *ReplicationQueryBuilder {
	b.query.top = &n
	return b
}

// Build validates the page size and returns the finished query.
func (b *ReplicationQueryBuilder) Build() (*ReplicationQuery, error) {
	if b.query.top != nil && *b.query.top > MaxReplicationTop {
		return nil, fmt.Errorf("%w: $top value %d exceeds the replication maximum of %d",
			ErrInvalidQuery, *b.query.top, MaxReplicationTop)
	}

	q := b.query
	return &q, nil
}

// Resource returns the entity resource name the query targets.
func (q *ReplicationQuery) Resource() string {
	return q.resource
}

// ToODataString serializes the query to the path-and-query portion of a
// replication URL, e.g. "Property/replication?$top=2000".
func (q *ReplicationQuery) ToODataString() string {
	var params []string
	if q.filter != "" {
		params = append(params, "$filter="+percentEncode(q.filter))
	}
	if len(q.selectFields) > 0 {
		params = append(params, "$select="+strings.Join(q.selectFields, ","))
	}
	if q.top != nil {
		params = append(params, fmt.Sprintf("$top=%d", *q.top))
	}

	base := q.resource + "/replication"
	if len(params) == 0 {
		return base
	}
	return base + "?" + strings.Join(params, "&")
}

// ReplicationResponse is one page of a replication cursor walk: the
// records of this page plus the continuation URL for the next one. Pages
// are independent values; the walk is driven by the caller feeding
// NextLink back into Client.ExecuteNextLink until HasMore reports false.
type ReplicationResponse struct {
	// Records holds the page's records in server order.
	Records []Record
	// NextLink is the opaque absolute URL of the next page, or "" on the
	// final page. It is handed back to the server verbatim, never
	// inspected or rewritten.
	NextLink string
	// RecordCount is the number of records in this page.
	RecordCount int
}

// NewReplicationResponse wraps one page of records and its continuation
// URL. nextLink is "" when the server signalled the final page.
func NewReplicationResponse(records []Record, nextLink string) *ReplicationResponse {
	return &ReplicationResponse{
		Records:     records,
		NextLink:    nextLink,
		RecordCount: len(records),
	}
}

// HasMore reports whether another page is available.
func (r *ReplicationResponse) HasMore() bool {
	return r.NextLink != ""
}
