package skylark

import (
	"net/http"
	"sort"
	"strings"
	"time"
)

// Availability request headers understood by Skylark.
const (
	HeaderTimeTravel      = "x-time-travel"
	HeaderDimensionPrefix = "x-sl-dimension-"
	HeaderBypassCache     = "x-bypass-cache"
)

// AvailabilityContext selects which availability rules the server applies
// when resolving a query. The zero value sends no headers.
type AvailabilityContext struct {
	// TimeTravel evaluates availability at the given instant.
	TimeTravel time.Time
	// Dimensions maps a dimension slug to the value slug to filter by.
	Dimensions  map[string]string
	BypassCache bool
}

// IsZero reports whether the context would send no headers.
func (a AvailabilityContext) IsZero() bool {
	return a.TimeTravel.IsZero() && len(a.Dimensions) == 0 && !a.BypassCache
}

// Headers returns the request headers for the context.
func (a AvailabilityContext) Headers() http.Header {
	h := http.Header{}
	if !a.TimeTravel.IsZero() {
		h.Set(HeaderTimeTravel, a.TimeTravel.UTC().Format(time.RFC3339))
	}
	slugs := make([]string, 0, len(a.Dimensions))
	for slug := range a.Dimensions {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	for _, slug := range slugs {
		h.Set(HeaderDimensionPrefix+strings.ToLower(slug), a.Dimensions[slug])
	}
	if a.BypassCache {
		h.Set(HeaderBypassCache, "1")
	}
	return h
}

// RequestOption adjusts a single outgoing request.
type RequestOption func(*http.Request)

// WithAvailability sends the headers of a with the request.
func WithAvailability(a AvailabilityContext) RequestOption {
	return func(r *http.Request) {
		for k, vs := range a.Headers() {
			for _, v := range vs {
				r.Header.Set(k, v)
			}
		}
	}
}

// WithHeader sets one request header.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}
