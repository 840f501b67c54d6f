// Package resolver implements the three-strategy postal-code-to-coordinate
// chain (spec §4.3): external geocoding, then a local exact centroid over
// facilities sharing the code, then a district centroid. The first
// strategy to succeed wins.
package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/apex/log"
	gocache "github.com/patrickmn/go-cache"

	"healthroute/internal/config"
	"healthroute/internal/errs"
	"healthroute/internal/geocode"
	"healthroute/internal/models"
	"healthroute/internal/store"
)

const minGeocodeConfidence = 0.5

// Resolver resolves postal codes to coordinates.
type Resolver struct {
	store          *store.Store
	geocodeClient  geocode.Client // nil disables strategy 1
	geocodeTimeout time.Duration
	bbox           config.BoundingBox
	country        string
	cache          *gocache.Cache
}

// New builds a Resolver. geocodeClient may be nil to skip strategy 1
// entirely (e.g. in deployments without geocode_index_name configured).
func New(st *store.Store, geocodeClient geocode.Client, geocodeTimeout time.Duration, bbox config.BoundingBox, cacheTTL time.Duration) *Resolver {
	return &Resolver{
		store:          st,
		geocodeClient:  geocodeClient,
		geocodeTimeout: geocodeTimeout,
		bbox:           bbox,
		country:        "India",
		cache:          gocache.New(cacheTTL, cacheTTL*2),
	}
}

// Resolve runs the three-strategy chain, caching successful resolutions
// by (code, country) for the configured TTL (spec §4.3 "Caching").
func (r *Resolver) Resolve(ctx context.Context, code string) (models.PostalCodeResolution, error) {
	cacheKey := code + "|" + r.country
	if cached, ok := r.cache.Get(cacheKey); ok {
		return cached.(models.PostalCodeResolution), nil
	}

	if res, ok := r.tryExternalGeocode(ctx, code); ok {
		r.cache.Set(cacheKey, res, gocache.DefaultExpiration)
		return res, nil
	}

	if res, ok, err := r.tryLocalExactCentroid(ctx, code); err != nil {
		log.Warnf("local exact centroid lookup failed for %s: %v", code, err)
	} else if ok {
		r.cache.Set(cacheKey, res, gocache.DefaultExpiration)
		return res, nil
	}

	if res, ok, err := r.tryDistrictCentroid(ctx, code); err != nil {
		log.Warnf("district centroid lookup failed for %s: %v", code, err)
	} else if ok {
		r.cache.Set(cacheKey, res, gocache.DefaultExpiration)
		return res, nil
	}

	return models.PostalCodeResolution{}, errs.New(errs.CodeNotFound, fmt.Sprintf("no resolution strategy succeeded for postal code %s", code))
}

// tryExternalGeocode is resolver strategy 1. Any failure (timeout, low
// confidence, out-of-bbox) is only logged (GeocoderUnavailable never
// surfaces, spec §7) and the chain falls through to strategy 2.
func (r *Resolver) tryExternalGeocode(ctx context.Context, code string) (models.PostalCodeResolution, bool) {
	if r.geocodeClient == nil {
		return models.PostalCodeResolution{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, r.geocodeTimeout)
	defer cancel()

	results, err := r.geocodeClient.Geocode(ctx, fmt.Sprintf("%s, %s", code, r.country))
	if err != nil {
		log.Warnf("external geocoder unavailable for %s: %v", code, err)
		return models.PostalCodeResolution{}, false
	}
	if len(results) == 0 {
		return models.PostalCodeResolution{}, false
	}

	best := results[0]
	if best.Relevance != 0 && best.Relevance < minGeocodeConfidence {
		log.Warnf("geocoder relevance %.2f below confidence threshold for %s", best.Relevance, code)
		return models.PostalCodeResolution{}, false
	}
	if !r.bbox.Contains(best.Latitude, best.Longitude) {
		log.Warnf("geocoder returned out-of-bbox coordinates for %s", code)
		return models.PostalCodeResolution{}, false
	}

	return models.PostalCodeResolution{
		Latitude:   best.Latitude,
		Longitude:  best.Longitude,
		Provenance: models.ProvenanceExternalGeocode,
	}, true
}

// tryLocalExactCentroid is resolver strategy 2.
func (r *Resolver) tryLocalExactCentroid(ctx context.Context, code string) (models.PostalCodeResolution, bool, error) {
	centroid, err := r.store.CentroidByPostalCode(ctx, code, r.bbox.Contains)
	if err != nil {
		return models.PostalCodeResolution{}, false, err
	}
	if centroid == nil {
		return models.PostalCodeResolution{}, false, nil
	}
	return models.PostalCodeResolution{
		Latitude:      centroid.Latitude,
		Longitude:     centroid.Longitude,
		State:         centroid.State,
		District:      centroid.District,
		FacilityCount: centroid.Count,
		Provenance:    models.ProvenanceLocalExactCentroid,
	}, true, nil
}

// tryDistrictCentroid is resolver strategy 3.
func (r *Resolver) tryDistrictCentroid(ctx context.Context, code string) (models.PostalCodeResolution, bool, error) {
	state, district, found, err := r.store.FindDistrictForPostalCode(ctx, code)
	if err != nil {
		return models.PostalCodeResolution{}, false, err
	}
	if !found {
		return models.PostalCodeResolution{}, false, nil
	}

	centroid, err := r.store.CentroidByDistrict(ctx, state, district)
	if err != nil {
		return models.PostalCodeResolution{}, false, err
	}
	if centroid == nil {
		return models.PostalCodeResolution{}, false, nil
	}
	return models.PostalCodeResolution{
		Latitude:      centroid.Latitude,
		Longitude:     centroid.Longitude,
		State:         state,
		District:      district,
		FacilityCount: centroid.Count,
		Provenance:    models.ProvenanceLocalDistrictCentroid,
	}, true, nil
}
