// Package stub is a deterministic, no-network aiclassifier.Client for
// tests: schema-valid output so the rest of the pipeline (round-trip,
// validation, fallthrough) is exercised without a live provider. The
// service binary does not use it; with ai_classifier_url unset it runs
// with no external client at all.
package stub

import (
	"context"
	"strings"

	"healthroute/internal/aiclassifier"
)

// Client always requests one round of clarification, then answers
// deterministically from the accumulated answers on round two.
type Client struct{}

func New() *Client { return &Client{} }

func (c *Client) Classify(ctx context.Context, req aiclassifier.Request) (aiclassifier.Result, error) {
	if len(req.ClarifyingAnswers) == 0 {
		return aiclassifier.Result{
			NeedsClarification: true,
			ClarifyingQuestions: []string{
				"How long have you had these symptoms?",
				"Is the pain constant or does it come and go?",
			},
		}, nil
	}

	severity := 4
	text := strings.ToLower(req.SymptomText)
	for _, ans := range req.ClarifyingAnswers {
		if strings.Contains(strings.ToLower(ans), "yes") {
			severity += 2
		}
	}
	if strings.Contains(text, "pain") {
		severity++
	}
	if severity > 10 {
		severity = 10
	}

	return aiclassifier.Result{
		Severity:           severity,
		Specialties:        []string{"General Medicine"},
		NeedsClarification: false,
		Reasoning:          "Stub classification from symptom text and clarifying answers.",
		RecommendedAction:  "Consult a general physician for further evaluation.",
	}, nil
}
