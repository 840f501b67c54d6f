// Package httpclient implements aiclassifier.Client against an external
// HTTP classification endpoint.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"healthroute/internal/aiclassifier"
)

// Client calls an external AI classifier over HTTP.
type Client struct {
	url    string
	client *http.Client
}

// New builds a Client bound to url with the given per-call timeout.
func New(url string, timeout time.Duration) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type classifyRequest struct {
	SymptomText       string   `json:"symptom_text"`
	ClarifyingAnswers []string `json:"clarifying_answers"`
	Stage1Cache       string   `json:"stage1_cache,omitempty"`
	Age               int      `json:"age,omitempty"`
	DurationDays      int      `json:"duration_days,omitempty"`
}

type classifyResponse struct {
	Severity            int      `json:"severity"`
	Specialties         []string `json:"specialties"`
	RequiresMaternity   bool     `json:"requires_maternity"`
	RequiresNICU        bool     `json:"requires_nicu"`
	RequiresTrauma      bool     `json:"requires_trauma"`
	NeedsClarification  bool     `json:"needs_clarification"`
	ClarifyingQuestions []string `json:"clarifying_questions"`
	Reasoning           string   `json:"reasoning"`
	RecommendedAction   string   `json:"recommended_action"`
	RedFlags            []string `json:"red_flags"`
}

// Classify implements aiclassifier.Client.
func (c *Client) Classify(ctx context.Context, req aiclassifier.Request) (aiclassifier.Result, error) {
	body, err := json.Marshal(classifyRequest{
		SymptomText:       req.SymptomText,
		ClarifyingAnswers: req.ClarifyingAnswers,
		Stage1Cache:       req.Stage1Cache,
		Age:               req.Age,
		DurationDays:      req.DurationDays,
	})
	if err != nil {
		return aiclassifier.Result{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return aiclassifier.Result{}, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return aiclassifier.Result{}, fmt.Errorf("call classifier: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return aiclassifier.Result{}, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return aiclassifier.Result{}, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var out classifyResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return aiclassifier.Result{}, fmt.Errorf("decode response: %w", err)
	}
	if !out.NeedsClarification && (out.Severity < 1 || out.Severity > 10) {
		return aiclassifier.Result{}, fmt.Errorf("malformed severity %d in classifier response", out.Severity)
	}

	return aiclassifier.Result{
		Severity:            out.Severity,
		Specialties:         out.Specialties,
		RequiresMaternity:   out.RequiresMaternity,
		RequiresNICU:        out.RequiresNICU,
		RequiresTrauma:      out.RequiresTrauma,
		NeedsClarification:  out.NeedsClarification,
		ClarifyingQuestions: out.ClarifyingQuestions,
		Reasoning:           out.Reasoning,
		RecommendedAction:   out.RecommendedAction,
		RedFlags:            out.RedFlags,
	}, nil
}
