package pipeline

import (
	"blog-api/internal/validation"
)

// Request is the parsed inbound request a pipeline run owns.
// Params, Query and Body are rewritten in place by the validation stage.
type Request struct {
	Method   string
	Scheme   string
	Host     string
	Path     string // escaped
	RawQuery string

	Params map[string]any
	Query  map[string]any
	Body   map[string]any

	// CacheHit is set when the response was served from the cache.
	CacheHit bool
}

// URLParts implements cache.Addressable.
func (r *Request) URLParts() (scheme, host, path, rawQuery string) {
	return r.Scheme, r.Host, r.Path, r.RawQuery
}

func (r *Request) values(in validation.Location) map[string]any {
	switch in {
	case validation.InParam:
		return r.Params
	case validation.InQuery:
		return r.Query
	default:
		return r.Body
	}
}

// Lookup implements validation.Source.
func (r *Request) Lookup(in validation.Location, field string) (any, bool) {
	v, ok := r.values(in)[field]
	return v, ok
}

// Set implements validation.Source.
func (r *Request) Set(in validation.Location, field string, value any) {
	m := r.values(in)
	if m == nil {
		m = make(map[string]any)
		switch in {
		case validation.InParam:
			r.Params = m
		case validation.InQuery:
			r.Query = m
		default:
			r.Body = m
		}
	}
	m[field] = value
}

// Param returns a path parameter as a string.
func (r *Request) Param(name string) string {
	s, _ := r.Params[name].(string)
	return s
}

// QueryInt returns a normalized integer query parameter, or def.
func (r *Request) QueryInt(name string, def int) int {
	if n, ok := r.Query[name].(int); ok {
		return n
	}
	return def
}

// Has reports whether the body carries field.
func (r *Request) Has(field string) bool {
	_, ok := r.Body[field]
	return ok
}

// String returns a body field as a string.
func (r *Request) String(field string) string {
	s, _ := r.Body[field].(string)
	return s
}

// Strings returns a normalized string list body field.
func (r *Request) Strings(field string) []string {
	s, _ := r.Body[field].([]string)
	return s
}
