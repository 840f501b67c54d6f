// Package classifier converts free-text clinical complaints (English,
// Hindi, or Hinglish) into an Assessment: a severity tier, recommended
// specialties, and an emergency flag (spec §4.2). It implements the
// three-branch protocol described there — instant emergency match,
// optional external AI delegation, and a deterministic rule-based
// fallback — and is total: every non-empty input produces a well-formed
// Assessment, never an error (P9).
package classifier

import (
	"context"
	"strings"
	"time"

	"github.com/apex/log"

	"healthroute/internal/aiclassifier"
	"healthroute/internal/models"
)

const disclaimer = "This assessment is not a medical diagnosis. In a life-threatening emergency, call your local emergency number immediately."

// Request is the classifier's input (spec §4.2).
type Request struct {
	SymptomText       string
	ClarifyingAnswers []string
	Stage1Cache       string
	Age               int
	DurationDays      int
}

// Classifier implements the three-branch symptom classification protocol.
type Classifier struct {
	keywords   keywordTable
	aiClient   aiclassifier.Client
	stageCache *stageCache
}

// New builds a Classifier. aiClient may be nil, in which case branch 2
// (external AI) is skipped entirely and branch 3 always decides.
func New(aiClient aiclassifier.Client, stageCacheSecret string, stageCacheTTL time.Duration) (*Classifier, error) {
	kt, err := loadKeywordTable()
	if err != nil {
		return nil, err
	}
	return &Classifier{
		keywords:   kt,
		aiClient:   aiClient,
		stageCache: newStageCache(stageCacheSecret, stageCacheTTL),
	}, nil
}

// Classify runs the three-branch protocol. It never returns an error;
// the worst case is a mild/General-Medicine Assessment with
// mode=client-fallback (spec §4.2 "Failure semantics").
func (c *Classifier) Classify(ctx context.Context, req Request) models.Assessment {
	text := strings.TrimSpace(req.SymptomText)

	if matches := matchAll(text, c.keywords.EmergencyTerms); len(matches) > 0 {
		return c.emergencyAssessment(matches)
	}

	if c.aiClient != nil {
		if assessment, ok := c.tryExternal(ctx, req, text); ok {
			return assessment
		}
	}

	return c.ruleBasedAssessment(text)
}

func (c *Classifier) emergencyAssessment(matches []string) models.Assessment {
	return models.Assessment{
		Severity:           10,
		SeverityLevel:      models.SeverityEmergency,
		Specialties:        []string{"Emergency Medicine"},
		AutoEmergency:      true,
		DetectedKeywords:   matches,
		RequiresMaternity:  matchAny(strings.Join(matches, " "), maternityTerms),
		RequiresTrauma:     matchAny(strings.Join(matches, " "), traumaTerms),
		NeedsClarification: false,
		Reasoning:          "Matched a known emergency term in the reported symptoms.",
		RecommendedAction:  "Seek emergency care immediately or call an ambulance.",
		RedFlags:           matches,
		Disclaimer:         disclaimer,
		Mode:               "instant-emergency",
	}
}

// tryExternal drives one round of the external AI branch. ok is false
// whenever the caller should fall through to the rule-based branch — on
// any network/timeout/schema error, or on an invalid/expired stage1_cache
// (spec §4.2 "If round 2 is not supplied within ... the cache is
// invalidated and the caller must restart" — restarting, from the
// classifier's total-function perspective, means falling back rather
// than surfacing an error).
func (c *Classifier) tryExternal(ctx context.Context, req Request, text string) (models.Assessment, bool) {
	if req.Stage1Cache != "" {
		questionCount, err := c.stageCache.validate(req.Stage1Cache, text)
		if err != nil {
			log.Warnf("stage1_cache rejected: %v", err)
			return models.Assessment{}, false
		}
		if len(req.ClarifyingAnswers) != questionCount {
			log.Warnf("stage1_cache expected %d clarifying answers, got %d", questionCount, len(req.ClarifyingAnswers))
			return models.Assessment{}, false
		}
	}

	result, err := c.aiClient.Classify(ctx, aiclassifier.Request{
		SymptomText:       text,
		ClarifyingAnswers: req.ClarifyingAnswers,
		Stage1Cache:       req.Stage1Cache,
		Age:               req.Age,
		DurationDays:      req.DurationDays,
	})
	if err != nil {
		log.Warnf("external classifier branch failed, falling back: %v", err)
		return models.Assessment{}, false
	}

	if result.NeedsClarification {
		n := len(result.ClarifyingQuestions)
		if n < 2 || n > 5 {
			log.Warnf("external classifier returned %d clarifying questions, expected 2-5", n)
			return models.Assessment{}, false
		}
		token, err := c.stageCache.issue(text, n)
		if err != nil {
			log.Warnf("failed to issue stage1_cache: %v", err)
			return models.Assessment{}, false
		}
		return models.Assessment{
			NeedsClarification:  true,
			ClarifyingQuestions: result.ClarifyingQuestions,
			Stage1Cache:         token,
			Disclaimer:          disclaimer,
			Mode:                "ai-clarifying",
		}, true
	}

	if result.Severity < 1 || result.Severity > 10 {
		log.Warnf("external classifier returned out-of-range severity %d", result.Severity)
		return models.Assessment{}, false
	}
	return models.Assessment{
		Severity:           result.Severity,
		SeverityLevel:      models.LevelForScore(result.Severity),
		Specialties:        result.Specialties,
		AutoEmergency:      false,
		RequiresMaternity:  result.RequiresMaternity,
		RequiresNICU:       result.RequiresNICU,
		RequiresTrauma:     result.RequiresTrauma,
		NeedsClarification: false,
		Reasoning:          result.Reasoning,
		RecommendedAction:  result.RecommendedAction,
		RedFlags:           result.RedFlags,
		Disclaimer:         disclaimer,
		Mode:               "ai",
	}, true
}

func (c *Classifier) ruleBasedAssessment(text string) models.Assessment {
	department := "General Medicine"
	for _, dept := range departmentOrder(c.keywords.DepartmentKeywords) {
		terms := c.keywords.DepartmentKeywords[dept]
		if len(terms) == 0 {
			continue
		}
		if matchAny(text, terms) {
			department = dept
			break
		}
	}

	severity := 3
	if matchAny(text, c.keywords.HighSeverityTerms) {
		severity = 7
	}

	return models.Assessment{
		Severity:           severity,
		SeverityLevel:      models.LevelForScore(severity),
		Specialties:        []string{department},
		AutoEmergency:      false,
		NeedsClarification: false,
		Reasoning:          "Matched against the local department and severity keyword tables.",
		RecommendedAction:  "Consult the recommended department for further evaluation.",
		Disclaimer:         disclaimer,
		Mode:               "client-fallback",
	}
}

// departmentOrder returns department names in a stable order so "first
// match wins" (spec §4.2) is deterministic regardless of map iteration.
func departmentOrder(table map[string][]string) []string {
	order := []string{
		"Cardiology", "Pulmonology", "Orthopedics", "Obstetrics & Gynecology",
		"Neurology", "Gastroenterology", "Dermatology", "ENT", "Pediatrics",
	}
	var result []string
	for _, d := range order {
		if _, ok := table[d]; ok {
			result = append(result, d)
		}
	}
	return result
}
