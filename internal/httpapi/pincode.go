package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"healthroute/internal/errs"
	"healthroute/internal/middleware"
)

type pincodeResponse struct {
	Pincode       string  `json:"pincode"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	State         string  `json:"state,omitempty"`
	District      string  `json:"district,omitempty"`
	HospitalCount int     `json:"hospital_count"`
	Source        string  `json:"source"`
}

// handlePincode resolves a postal code to coordinates (spec §4.1, §6
// "GET /pincode/{code}").
func (s *Server) handlePincode(c *gin.Context) {
	code := c.Param("code")
	if !isValidPostalCode(code) {
		middleware.RenderError(c, http.StatusBadRequest, errs.New(errs.InvalidInput, "postal code must be six digits"))
		return
	}

	resolution, err := s.resolver.Resolve(c.Request.Context(), code)
	if err != nil {
		middleware.RenderError(c, http.StatusNotFound, err)
		return
	}

	c.JSON(http.StatusOK, pincodeResponse{
		Pincode:       code,
		Latitude:      resolution.Latitude,
		Longitude:     resolution.Longitude,
		State:         resolution.State,
		District:      resolution.District,
		HospitalCount: resolution.FacilityCount,
		Source:        string(resolution.Provenance),
	})
}
