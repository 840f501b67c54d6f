package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"healthroute/internal/version"
)

type healthResponse struct {
	Status    string       `json:"status"`
	Database  string       `json:"database"`
	Timestamp string       `json:"timestamp"`
	Version   version.Info `json:"version"`
}

// handleHealth reports liveness, a store connectivity check, and build
// version metadata (spec §4.1, §6 "GET /health").
func (s *Server) handleHealth(c *gin.Context) {
	dbStatus := "ok"
	status := http.StatusOK
	overall := "ok"
	if err := s.db.PingContext(c.Request.Context()); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, healthResponse{
		Status:    overall,
		Database:  dbStatus,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Current(),
	})
}
