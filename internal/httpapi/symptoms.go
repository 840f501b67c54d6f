package httpapi

import (
	"net/http"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"healthroute/internal/classifier"
	"healthroute/internal/models"
)

type classifyRequest struct {
	Symptoms          string   `json:"symptoms"`
	ClarifyingAnswers []string `json:"clarifyingAnswers,omitempty"`
	Stage1Cache       string   `json:"stage1Cache,omitempty"`
	Age               int      `json:"age,omitempty"`
	Duration          int      `json:"duration,omitempty"`
}

// handleClassify is the standalone classifier endpoint (spec §4.1, §6
// "POST /symptoms/classify"). By contract it never returns 5xx: a
// malformed body still yields a 200 fallback Assessment, same as an
// internal classifier failure would (spec §4.2).
func (s *Server) handleClassify(c *gin.Context) {
	body, err := readBody(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusOK, clientFallbackAssessment())
		return
	}

	var req classifyRequest
	if err := strictUnmarshal(body, &req); err != nil {
		log.Warnf("malformed /symptoms/classify body: %v", err)
		c.JSON(http.StatusOK, clientFallbackAssessment())
		return
	}

	assessment := s.classifier.Classify(c.Request.Context(), classifier.Request{
		SymptomText:       req.Symptoms,
		ClarifyingAnswers: req.ClarifyingAnswers,
		Stage1Cache:       req.Stage1Cache,
		Age:               req.Age,
		DurationDays:      req.Duration,
	})
	c.JSON(http.StatusOK, assessment)
}

func clientFallbackAssessment() models.Assessment {
	return models.Assessment{
		Severity:          3,
		SeverityLevel:     models.SeverityMild,
		Specialties:       []string{"General Medicine"},
		Reasoning:         "Request body could not be parsed; returning a conservative default.",
		RecommendedAction: "Consult General Medicine for further evaluation.",
		Disclaimer:        "This assessment is not a medical diagnosis. In a life-threatening emergency, call your local emergency number immediately.",
		Mode:              "client-fallback",
	}
}
