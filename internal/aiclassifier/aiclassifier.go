// Package aiclassifier defines the seam between the symptom classifier and
// an optional external AI classification provider (spec §4.2 branch 2).
// The classifier package depends only on the Client interface, never on a
// concrete provider, so the provider can be swapped without touching
// classification logic.
package aiclassifier

import "context"

// Request is everything the external branch needs to produce or continue
// an assessment.
type Request struct {
	SymptomText       string
	ClarifyingAnswers []string
	Stage1Cache       string
	Age               int
	DurationDays      int
}

// Result is the external branch's raw answer, validated by the caller
// against the Assessment shape before use (spec §4.2).
type Result struct {
	Severity            int
	Specialties         []string
	RequiresMaternity   bool
	RequiresNICU        bool
	RequiresTrauma      bool
	NeedsClarification  bool
	ClarifyingQuestions []string
	Reasoning           string
	RecommendedAction   string
	RedFlags            []string
}

// Client abstracts an external AI classification provider.
type Client interface {
	// Classify forwards one round of the clarifying-question protocol and
	// returns the provider's answer, or an error if the call failed,
	// timed out, or the response could not be validated.
	Classify(ctx context.Context, req Request) (Result, error)
}
