// Package geocode provides resolver strategy 1 (spec §4.3): a country-
// filtered external place lookup for "<code>, <country>". Implementations
// must be context-cancellable so the resolver's hard 2s timeout is
// enforced regardless of provider latency.
package geocode

import "context"

// Result is a single geocoder hit.
type Result struct {
	Latitude  float64
	Longitude float64
	Relevance float64 // 0..1 confidence score, when the provider supplies one
}

// Client abstracts an external geocoding provider.
type Client interface {
	// Geocode resolves a free-text query (e.g. "560001, India") to zero or
	// more candidate points, best match first.
	Geocode(ctx context.Context, query string) ([]Result, error)
}
