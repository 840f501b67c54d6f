package classifier

import (
	"embed"
	"encoding/json"
	"strings"
)

//go:embed data/keywords.json
var keywordFS embed.FS

// keywordTable is the data, not code, form of the three keyword lists
// spec §9 calls for: the source's instant-client and rule-based emergency
// lists are unioned here into a single authoritative list.
type keywordTable struct {
	EmergencyTerms     []string            `json:"emergency_terms"`
	DepartmentKeywords map[string][]string `json:"department_keywords"`
	HighSeverityTerms  []string            `json:"high_severity_terms"`
}

func loadKeywordTable() (keywordTable, error) {
	raw, err := keywordFS.ReadFile("data/keywords.json")
	if err != nil {
		return keywordTable{}, err
	}
	var kt keywordTable
	if err := json.Unmarshal(raw, &kt); err != nil {
		return keywordTable{}, err
	}
	return kt, nil
}

// matchAll returns every term in terms that occurs as a case-insensitive
// substring of text, in the order given in terms (false positives are
// preferred to false negatives, spec §4.2).
func matchAll(text string, terms []string) []string {
	lowered := strings.ToLower(text)
	var matches []string
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			matches = append(matches, term)
		}
	}
	return matches
}

func matchAny(text string, terms []string) bool {
	lowered := strings.ToLower(text)
	for _, term := range terms {
		if strings.Contains(lowered, strings.ToLower(term)) {
			return true
		}
	}
	return false
}

// traumaTerms and maternityTerms tag which emergency matches imply the
// capability flags in spec §3 (requires_maternity/requires_trauma).
var maternityTerms = []string{"prasav dard", "labor pain", "delivery pain", "baby coming", "bachcha aa raha hai"}
var traumaTerms = []string{"major accident", "deep wound", "gehra ghaav", "compound fracture", "haddi tooti hui bahar", "severe head injury", "sar mein chot", "severe burn", "jal gaya hai", "snake bite", "saanp ne kaata"}
