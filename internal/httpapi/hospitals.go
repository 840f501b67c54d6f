package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"healthroute/internal/errs"
	"healthroute/internal/middleware"
	"healthroute/internal/models"
	"healthroute/internal/store"
)

type hospitalsSearchResponse struct {
	Hospitals []models.Facility `json:"hospitals"`
	Count     int               `json:"count"`
	Radius    float64           `json:"radius"`
}

// handleHospitalsSearch is the diagnostic, single-radius, no-expansion
// search (spec §4.1, §6 "GET /hospitals").
func (s *Server) handleHospitalsSearch(c *gin.Context) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "lat is required and must be numeric"))
		return
	}
	lng, err := strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "lng is required and must be numeric"))
		return
	}
	if !isValidCoordinate(s.cfg.CountryBoundingBox, lat, lng) {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "lat/lng out of range"))
		return
	}

	radius := s.cfg.MaxRadiusKM
	if raw := c.Query("radius"); raw != "" {
		r, err := strconv.ParseFloat(raw, 64)
		if err != nil || r <= 0 {
			middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "radius must be a positive number"))
			return
		}
		radius = r
	}

	filters := store.Filters{
		RadiusKM:         radius,
		QualityThreshold: s.cfg.QualityThreshold,
		Specialty:        c.Query("specialty"),
		EmergencyOnly:    c.Query("emergency") == "true",
		Limit:            store.DiagnosticResultCap,
		MaxCap:           store.DiagnosticResultCap,
	}

	facilities, err := s.store.NearestWithin(c.Request.Context(), lat, lng, filters)
	if err != nil {
		middleware.RenderStoreError(c, "hospitals search failed", err)
		return
	}
	if c.Query("ayush") == "true" {
		facilities = filterAyush(facilities)
	}

	c.JSON(http.StatusOK, hospitalsSearchResponse{
		Hospitals: facilities,
		Count:     len(facilities),
		Radius:    radius,
	})
}

func filterAyush(in []models.Facility) []models.Facility {
	out := make([]models.Facility, 0, len(in))
	for _, f := range in {
		if f.AyushFlag {
			out = append(out, f)
		}
	}
	return out
}

type fuzzySearchResponse struct {
	Hospitals []models.Facility `json:"hospitals"`
	Count     int               `json:"count"`
}

// handleFuzzySearch is the diagnostic name search: exact matches rank
// ahead of prefix matches ahead of substring matches.
func (s *Server) handleFuzzySearch(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "q is required"))
		return
	}

	facilities, err := s.store.FuzzyNameSearch(c.Request.Context(), q, c.Query("state"))
	if err != nil {
		middleware.RenderStoreError(c, "name search failed", err)
		return
	}
	if facilities == nil {
		facilities = []models.Facility{}
	}

	c.JSON(http.StatusOK, fuzzySearchResponse{Hospitals: facilities, Count: len(facilities)})
}

// handleStats reports aggregate facility counts (spec §4.1, §4.5, §6
// "GET /hospitals/stats").
func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats(c.Request.Context(), s.cfg.QualityThreshold)
	if err != nil {
		middleware.RenderStoreError(c, "stats query failed", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
