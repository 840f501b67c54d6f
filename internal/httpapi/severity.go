package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthroute/internal/errs"
	"healthroute/internal/middleware"
	"healthroute/internal/models"
	"healthroute/internal/router"
)

type severityBasedRequest struct {
	Pincode       string   `json:"pincode,omitempty"`
	Latitude      float64  `json:"latitude"`
	Longitude     float64  `json:"longitude"`
	SeverityLevel string   `json:"severityLevel"`
	Specialties   []string `json:"specialties,omitempty"`
}

type severityBasedResponse struct {
	Facilities        []models.Facility `json:"facilities"`
	RadiusUsed        float64           `json:"radiusUsed"`
	WasExpanded       bool              `json:"wasExpanded"`
	SpecialtyFiltered bool              `json:"specialtyFiltered"`
	SeverityLevel     string            `json:"severityLevel"`
	Config            levelConfigView   `json:"config"`
}

type levelConfigView struct {
	Level         string  `json:"level"`
	InitialRadius float64 `json:"initialRadius"`
}

var levelDisplayNames = map[models.SeverityLevel]string{
	models.SeverityMild:      "Mild",
	models.SeverityModerate:  "Moderate",
	models.SeverityHigh:      "High",
	models.SeverityEmergency: "Emergency",
}

// handleSeverityBasedSearch is the primary routing endpoint (spec §4.1,
// §6 "POST /hospitals/severity-based").
func (s *Server) handleSeverityBasedSearch(c *gin.Context) {
	body, err := readBody(c.Request.Body)
	if err != nil {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "could not read request body"))
		return
	}

	var req severityBasedRequest
	if err := strictUnmarshal(body, &req); err != nil {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "malformed request body"))
		return
	}

	if !isValidCoordinate(s.cfg.CountryBoundingBox, req.Latitude, req.Longitude) {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "latitude/longitude out of range"))
		return
	}
	if !isValidSeverityLevel(req.SeverityLevel) {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "severityLevel must be one of mild, moderate, high, emergency"))
		return
	}

	level := models.SeverityLevel(req.SeverityLevel)
	specialty := ""
	if len(req.Specialties) > 0 {
		specialty = req.Specialties[0]
	}

	result, err := s.router.Search(c.Request.Context(), req.Latitude, req.Longitude, level, specialty)
	if err != nil {
		middleware.RenderStoreError(c, "severity-based search failed", err)
		return
	}

	facilities := result.Facilities
	if level == models.SeverityMild || level == models.SeverityModerate {
		facilities = router.ApplyGovernmentBias(facilities)
	}
	cfg := router.DefaultLevelConfigs[level]

	c.JSON(http.StatusOK, severityBasedResponse{
		Facilities:        facilities,
		RadiusUsed:        result.RadiusUsedKM,
		WasExpanded:       result.WasExpanded,
		SpecialtyFiltered: result.SpecialtyFiltered,
		SeverityLevel:     req.SeverityLevel,
		Config: levelConfigView{
			Level:         levelDisplayNames[level],
			InitialRadius: cfg.InitialRadiusKM,
		},
	})
}
