package reso

import (
	"fmt"
	"net/url"
	"strings"
)

// Query describes a single OData request against one resource. It is
// immutable once built; the only remaining operation is serialization
// via ToODataString.
type Query struct {
	resource     string
	key          string
	filter       string
	apply        string
	orderBy      string
	selectFields []string
	expandFields []string
	top          *int
	skip         *int
	count        bool
	countOnly    bool
}

// QueryBuilder accumulates query parameters through a fluent API and
// validates them when Build is called. Setters overwrite any previous
// value for the same parameter.
type QueryBuilder struct {
	query Query
}

// NewQueryBuilder starts a standard query against the named resource,
// e.g. "Property" or "Member".
func NewQueryBuilder(resource string) *QueryBuilder {
	return &QueryBuilder{query: Query{resource: resource}}
}

// ByKey starts a direct entity-access query, addressing a single record
// by its key. Key access is exclusive: filter, top, skip, orderby, apply
// and count options cannot be combined with it.
func ByKey(resource, key string) *QueryBuilder {
	return &QueryBuilder{query: Query{resource: resource, key: key}}
}

// Filter sets the $filter expression. The expression is passed through
// verbatim (only percent-encoded), never parsed or validated.
func (b *QueryBuilder) Filter(expr string) *QueryBuilder {
	b.query.filter = expr
	return b
}

// Apply sets the $apply aggregation expression, e.g.
// "groupby((City),aggregate($count as Count))".
func (b *QueryBuilder) Apply(expr string) *QueryBuilder {
	b.query.apply = expr
	return b
}

// OrderBy sets the $orderby clause from a field name and a direction
// token ("asc" or "desc"). The direction is stored verbatim; the server
// is the validator.
func (b *QueryBuilder) OrderBy(field, direction string) *QueryBuilder {
	b.query.orderBy = field + " " + direction
	return b
}

// Select sets the $select field list. Order is preserved.
func (b *QueryBuilder) Select(fields ...string) *QueryBuilder {
	b.query.selectFields = fields
	return b
}

// Expand sets the $expand list of navigation properties to inline.
func (b *QueryBuilder) Expand(fields ...string) *QueryBuilder {
	b.query.expandFields = fields
	return b
}

// Top sets the $top record limit.
func (b *QueryBuilder) Top(n int) *QueryBuilder {
	b.query.top = &n
	return b
}

// Skip sets the $skip record offset.
func (b *QueryBuilder) Skip(n int) *QueryBuilder {
	b.query.skip = &n
	return b
}

// WithCount requests the total record count alongside the records
// ($count=true, surfaced as @odata.count in the response).
func (b *QueryBuilder) WithCount() *QueryBuilder {
	b.query.count = true
	return b
}

// Count switches the query to count-only mode: the serialized URL targets
// the /$count endpoint and the response is a bare integer instead of
// records.
func (b *QueryBuilder) Count() *QueryBuilder {
	b.query.countOnly = true
	return b
}

// Build validates the accumulated parameters and returns the finished
// Query. Validation only applies to key-access queries: combining a key
// with any other query option is an error. Without a key, Build always
// succeeds.
func (b *QueryBuilder) Build() (*Query, error) {
	if b.query.key != "" {
		switch {
		case b.query.filter != "":
			return nil, fmt.Errorf("%w: Key access cannot be used with $filter", ErrInvalidQuery)
		case b.query.top != nil:
			return nil, fmt.Errorf("%w: Key access cannot be used with $top", ErrInvalidQuery)
		case b.query.skip != nil:
			return nil, fmt.Errorf("%w: Key access cannot be used with $skip", ErrInvalidQuery)
		case b.query.orderBy != "":
			return nil, fmt.Errorf("%w: Key access cannot be used with $orderby", ErrInvalidQuery)
		case b.query.apply != "":
			return nil, fmt.Errorf("%w: Key access cannot be used with $apply", ErrInvalidQuery)
		case b.query.count || b.query.countOnly:
			return nil, fmt.Errorf("%w: Key access cannot be used with $count", ErrInvalidQuery)
		}
	}

	q := b.query
	return &q, nil
}

// Resource returns the entity resource name the query targets.
func (q *Query) Resource() string {
	return q.resource
}

// Key returns the entity key for key-access queries, or "" for standard
// queries.
func (q *Query) Key() string {
	return q.key
}

// IsCountOnly reports whether the query targets the /$count endpoint.
func (q *Query) IsCountOnly() bool {
	return q.countOnly
}

// ToODataString serializes the query to the path-and-query portion of an
// OData URL. The output is deterministic: parameters always appear in the
// same order regardless of the order the builder methods were called in.
func (q *Query) ToODataString() string {
	// Key access produces Resource('key') and supports only $select and
	// $expand as parameters.
	if q.key != "" {
		base := fmt.Sprintf("%s('%s')", q.resource, percentEncode(q.key))

		var params []string
		if len(q.selectFields) > 0 {
			params = append(params, "$select="+strings.Join(q.selectFields, ","))
		}
		if len(q.expandFields) > 0 {
			params = append(params, "$expand="+strings.Join(q.expandFields, ","))
		}

		if len(params) == 0 {
			return base
		}
		return base + "?" + strings.Join(params, "&")
	}

	// Count-only queries hit the /$count endpoint, which accepts $filter
	// and nothing else. Any other parameters that were set are ignored.
	if q.countOnly {
		base := q.resource + "/$count"
		if q.filter != "" {
			return base + "?$filter=" + percentEncode(q.filter)
		}
		return base
	}

	var params []string
	if q.apply != "" {
		params = append(params, "$apply="+percentEncode(q.apply))
	}
	if q.filter != "" {
		params = append(params, "$filter="+percentEncode(q.filter))
	}
	if len(q.selectFields) > 0 {
		params = append(params, "$select="+strings.Join(q.selectFields, ","))
	}
	if len(q.expandFields) > 0 {
		params = append(params, "$expand="+strings.Join(q.expandFields, ","))
	}
	if q.orderBy != "" {
		params = append(params, "$orderby="+percentEncode(q.orderBy))
	}
	if q.top != nil {
		params = append(params, fmt.Sprintf("$top=%d", *q.top))
	}
	if q.skip != nil {
		params = append(params, fmt.Sprintf("$skip=%d", *q.skip))
	}
	if q.count {
		params = append(params, "$count=true")
	}

	if len(params) == 0 {
		return q.resource
	}
	return q.resource + "?" + strings.Join(params, "&")
}

// percentEncode applies RFC 3986 percent-encoding to a parameter value,
// with spaces as %20 rather than '+'. Unreserved characters (letters,
// digits, "-_.~") pass through; everything else is encoded. $select and
// $expand lists are deliberately not run through this: servers expect
// their commas raw.
func percentEncode(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
