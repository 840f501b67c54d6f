package classifier

import (
	"context"
	"testing"
	"time"

	"healthroute/internal/aiclassifier"
	"healthroute/internal/aiclassifier/stub"
	"healthroute/internal/models"
)

func newTestClassifier(t *testing.T, ai aiclassifier.Client) *Classifier {
	t.Helper()
	c, err := New(ai, "test-secret", 10*time.Minute)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestClassify_InstantEmergency(t *testing.T) {
	c := newTestClassifier(t, nil)
	a := c.Classify(context.Background(), Request{SymptomText: "I have chest pain and cannot breathe"})

	if a.Severity != 10 {
		t.Errorf("Severity = %d, want 10", a.Severity)
	}
	if a.SeverityLevel != models.SeverityEmergency {
		t.Errorf("SeverityLevel = %q, want emergency", a.SeverityLevel)
	}
	if !a.AutoEmergency {
		t.Error("AutoEmergency = false, want true")
	}
	if a.NeedsClarification {
		t.Error("NeedsClarification = true, want false")
	}
	want := map[string]bool{"chest pain": false, "cannot breathe": false}
	for _, kw := range a.DetectedKeywords {
		if _, ok := want[kw]; ok {
			want[kw] = true
		}
	}
	for kw, found := range want {
		if !found {
			t.Errorf("expected detected_keywords to contain %q, got %v", kw, a.DetectedKeywords)
		}
	}
}

func TestClassify_EmergencyMonotonicity(t *testing.T) {
	c := newTestClassifier(t, nil)
	kt, err := loadKeywordTable()
	if err != nil {
		t.Fatalf("loadKeywordTable() error = %v", err)
	}
	for _, term := range kt.EmergencyTerms {
		a := c.Classify(context.Background(), Request{SymptomText: "patient reports " + term + " since this morning"})
		if a.SeverityLevel != models.SeverityEmergency || !a.AutoEmergency {
			t.Errorf("term %q: severity_level=%v auto_emergency=%v, want emergency/true", term, a.SeverityLevel, a.AutoEmergency)
		}
	}
}

func TestClassify_RuleBasedFallback(t *testing.T) {
	c := newTestClassifier(t, nil)
	a := c.Classify(context.Background(), Request{SymptomText: "mild headache since yesterday"})

	if a.Mode != "client-fallback" {
		t.Errorf("Mode = %q, want client-fallback", a.Mode)
	}
	if a.NeedsClarification {
		t.Error("NeedsClarification = true, want false")
	}
	if a.SeverityLevel != models.SeverityMild {
		t.Errorf("SeverityLevel = %q, want mild", a.SeverityLevel)
	}
}

func TestClassify_RuleBasedHighSeverity(t *testing.T) {
	c := newTestClassifier(t, nil)
	a := c.Classify(context.Background(), Request{SymptomText: "severe dengue symptoms with high fever"})

	if a.Severity != 7 {
		t.Errorf("Severity = %d, want 7", a.Severity)
	}
	if a.SeverityLevel != models.SeverityHigh {
		t.Errorf("SeverityLevel = %q, want high", a.SeverityLevel)
	}
}

func TestClassify_Idempotent(t *testing.T) {
	c := newTestClassifier(t, nil)
	req := Request{SymptomText: "stomach pain and loose motion"}
	a1 := c.Classify(context.Background(), req)
	a2 := c.Classify(context.Background(), req)

	if a1.Severity != a2.Severity || a1.SeverityLevel != a2.SeverityLevel || a1.Specialties[0] != a2.Specialties[0] {
		t.Errorf("classification not idempotent: %+v vs %+v", a1, a2)
	}
}

type fakeAIClient struct {
	results []aiclassifier.Result
	err     error
}

func (f *fakeAIClient) Classify(ctx context.Context, req aiclassifier.Request) (aiclassifier.Result, error) {
	if f.err != nil {
		return aiclassifier.Result{}, f.err
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r, nil
}

func TestClassify_TwoRoundClarifyingFlow(t *testing.T) {
	ai := &fakeAIClient{results: []aiclassifier.Result{
		{NeedsClarification: true, ClarifyingQuestions: []string{"How many days?", "Is it constant?"}},
		{NeedsClarification: false, Severity: 5, Specialties: []string{"Gastroenterology"}},
	}}
	c := newTestClassifier(t, ai)

	round1 := c.Classify(context.Background(), Request{SymptomText: "stomach pain since 3 days"})
	if !round1.NeedsClarification {
		t.Fatal("round1.NeedsClarification = false, want true")
	}
	if n := len(round1.ClarifyingQuestions); n < 2 || n > 5 {
		t.Fatalf("round1 clarifying_questions len = %d, want 2-5", n)
	}
	if round1.Stage1Cache == "" {
		t.Fatal("round1.Stage1Cache is empty")
	}

	round2 := c.Classify(context.Background(), Request{
		SymptomText:       "stomach pain since 3 days",
		ClarifyingAnswers: []string{"yes", "no"},
		Stage1Cache:       round1.Stage1Cache,
	})
	if round2.NeedsClarification {
		t.Fatal("round2.NeedsClarification = true, want false")
	}
	if round2.Mode != "ai" {
		t.Errorf("round2.Mode = %q, want ai", round2.Mode)
	}
}

func TestClassify_TwoRoundFlowWithStubProvider(t *testing.T) {
	c := newTestClassifier(t, stub.New())

	round1 := c.Classify(context.Background(), Request{SymptomText: "stomach pain since 3 days"})
	if !round1.NeedsClarification {
		t.Fatal("round1.NeedsClarification = false, want true")
	}

	round2 := c.Classify(context.Background(), Request{
		SymptomText:       "stomach pain since 3 days",
		ClarifyingAnswers: []string{"yes", "Not provided"},
		Stage1Cache:       round1.Stage1Cache,
	})
	if round2.NeedsClarification {
		t.Fatal("round2.NeedsClarification = true, want false")
	}
	if round2.Severity < 1 || round2.Severity > 10 {
		t.Errorf("round2.Severity = %d, want 1-10", round2.Severity)
	}
	if round2.SeverityLevel != models.LevelForScore(round2.Severity) {
		t.Errorf("SeverityLevel = %q, not derived from severity %d", round2.SeverityLevel, round2.Severity)
	}
}

func TestClassify_AnswerCountMismatchFallsBack(t *testing.T) {
	c := newTestClassifier(t, stub.New())

	round1 := c.Classify(context.Background(), Request{SymptomText: "stomach pain since 3 days"})
	if !round1.NeedsClarification {
		t.Fatal("round1.NeedsClarification = false, want true")
	}

	round2 := c.Classify(context.Background(), Request{
		SymptomText:       "stomach pain since 3 days",
		ClarifyingAnswers: []string{"yes"}, // round 1 asked two questions
		Stage1Cache:       round1.Stage1Cache,
	})
	if round2.Mode != "client-fallback" {
		t.Errorf("Mode = %q, want client-fallback on answer count mismatch", round2.Mode)
	}
}

func TestClassify_ExternalFailureFallsThrough(t *testing.T) {
	ai := &fakeAIClient{err: context.DeadlineExceeded}
	c := newTestClassifier(t, ai)

	a := c.Classify(context.Background(), Request{SymptomText: "mild cough"})
	if a.Mode != "client-fallback" {
		t.Errorf("Mode = %q, want client-fallback", a.Mode)
	}
}
