// Package router implements the severity-aware geospatial search (spec
// §4.4): progressive-radius expansion over the facility store, two passes
// per radius (strict then relaxed), returning the first non-empty result
// set, ranked by distance.
package router

import (
	"context"
	"fmt"

	"github.com/apex/log"

	"healthroute/internal/models"
	"healthroute/internal/store"
)

// LevelConfig is the per-severity-level radius/preference table (spec
// §4.4).
type LevelConfig struct {
	InitialRadiusKM float64
	PreferEmergency bool
}

// DefaultLevelConfigs is the table from spec §4.4.
var DefaultLevelConfigs = map[models.SeverityLevel]LevelConfig{
	models.SeverityMild:      {InitialRadiusKM: 5},
	models.SeverityModerate:  {InitialRadiusKM: 8},
	models.SeverityHigh:      {InitialRadiusKM: 12},
	models.SeverityEmergency: {InitialRadiusKM: 12, PreferEmergency: true},
}

// RadiusSequence is the ordered progressive-expansion ladder (spec §4.4).
var RadiusSequence = []float64{5, 8, 12, 20}

// Router runs the progressive-radius, two-pass severity search.
type Router struct {
	store            *store.Store
	qualityThreshold float64
	minResults       int
	maxRadiusKM      float64
	levelConfigs     map[models.SeverityLevel]LevelConfig
}

func New(st *store.Store, qualityThreshold float64, minResults int, maxRadiusKM float64) *Router {
	return &Router{
		store:            st,
		qualityThreshold: qualityThreshold,
		minResults:       minResults,
		maxRadiusKM:      maxRadiusKM,
		levelConfigs:     DefaultLevelConfigs,
	}
}

// Result is the router's output (spec §4.1's severity-based endpoint
// response shape).
type Result struct {
	Facilities        []models.Facility
	RadiusUsedKM      float64
	WasExpanded       bool
	SpecialtyFiltered bool
}

// Search runs the progressive-radius search for (lat, lng, level,
// specialty). specialty may be empty (spec §4.4 only uses specialties[0]
// as a filter, per the HTTP surface).
func (r *Router) Search(ctx context.Context, lat, lng float64, level models.SeverityLevel, specialty string) (Result, error) {
	cfg, ok := r.levelConfigs[level]
	if !ok {
		return Result{}, fmt.Errorf("unknown severity level %q", level)
	}

	radii := radiiFrom(cfg.InitialRadiusKM)
	var lastErr error
	anyRadiusClean := false

	for i, radius := range radii {
		if radius > r.maxRadiusKM {
			break
		}

		// Pass 1: strict.
		strictFilters := store.Filters{
			RadiusKM:         radius,
			QualityThreshold: r.qualityThreshold,
			Specialty:        specialty,
			EmergencyOnly:    cfg.PreferEmergency,
		}
		facilities, err := r.store.NearestWithin(ctx, lat, lng, strictFilters)
		if err != nil {
			log.Warnf("severity router: pass-1 query failed at radius %.0fkm: %v", radius, err)
			lastErr = err
			continue
		}
		if len(facilities) >= r.minResults {
			return r.finish(facilities, radius, i > 0, true), nil
		}

		// Pass 2: relaxed — drop specialty, and for emergency drop the
		// emergency_available filter but keep emergency-first ordering.
		relaxedFilters := store.Filters{
			RadiusKM:         radius,
			QualityThreshold: r.qualityThreshold,
			EmergencyFirst:   cfg.PreferEmergency,
		}
		relaxed, err := r.store.NearestWithin(ctx, lat, lng, relaxedFilters)
		if err != nil {
			log.Warnf("severity router: pass-2 query failed at radius %.0fkm: %v", radius, err)
			lastErr = err
			continue
		}
		if len(relaxed) > 0 {
			return r.finish(relaxed, radius, i > 0, false), nil
		}
		anyRadiusClean = true
	}

	// A failure at one radius does not short-circuit; the request fails
	// only when every radius raised a store error.
	if !anyRadiusClean && lastErr != nil {
		return Result{}, lastErr
	}
	return Result{Facilities: []models.Facility{}, RadiusUsedKM: r.maxRadiusKM, WasExpanded: true, SpecialtyFiltered: false}, nil
}

func (r *Router) finish(facilities []models.Facility, radius float64, expanded, specialtyFiltered bool) Result {
	return Result{
		Facilities:        facilities,
		RadiusUsedKM:      radius,
		WasExpanded:       expanded,
		SpecialtyFiltered: specialtyFiltered,
	}
}

// radiiFrom returns the progressive-expansion ladder starting at the
// level's initial radius (spec §4.4: "walks radii in the ordered sequence
// {5, 8, 12, 20} starting at the level's initial radius").
func radiiFrom(initial float64) []float64 {
	var out []float64
	started := false
	for _, radius := range RadiusSequence {
		if radius == initial {
			started = true
		}
		if started {
			out = append(out, radius)
		}
	}
	if len(out) == 0 {
		out = RadiusSequence
	}
	return out
}

// ApplyGovernmentBias reorders results so government-tagged facilities
// precede non-government ones, preserving within-group distance order
// (spec §4.4 "Post-filter ranking bias", done by the HTTP surface, not the
// router — exported here so the HTTP layer can call it without
// duplicating the predicate).
func ApplyGovernmentBias(facilities []models.Facility) []models.Facility {
	gov := make([]models.Facility, 0, len(facilities))
	rest := make([]models.Facility, 0, len(facilities))
	for _, f := range facilities {
		if f.IsGovernment() {
			gov = append(gov, f)
		} else {
			rest = append(rest, f)
		}
	}
	return append(gov, rest...)
}
