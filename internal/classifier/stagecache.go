package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// stageClaims is the payload carried by the stage1_cache continuation
// token between round 1 and round 2 of the clarifying-question protocol
// (spec §4.2). The token is opaque to callers; it is a signed JWT purely
// so the core stays stateless (no server-side session store) while still
// enforcing the retention window.
type stageClaims struct {
	SymptomHash string `json:"symptom_hash"`
	Questions   int    `json:"questions"`
	jwt.RegisteredClaims
}

// stageCache issues and validates stage1_cache tokens.
type stageCache struct {
	secret []byte
	ttl    time.Duration
}

func newStageCache(secret string, ttl time.Duration) *stageCache {
	return &stageCache{secret: []byte(secret), ttl: ttl}
}

func (s *stageCache) issue(symptomText string, questionCount int) (string, error) {
	claims := stageClaims{
		SymptomHash: hashSymptoms(symptomText),
		Questions:   questionCount,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// validate checks the token's signature, expiry, and that it was issued
// for this exact symptom text (round 2 resubmits the same text, per
// spec §4.2). Returns the number of clarifying questions round 1 asked.
func (s *stageCache) validate(token, symptomText string) (int, error) {
	if token == "" {
		return 0, errors.New("empty stage1_cache")
	}
	parsed, err := jwt.ParseWithClaims(token, &stageClaims{}, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return 0, errors.New("invalid or expired stage1_cache")
	}
	claims, ok := parsed.Claims.(*stageClaims)
	if !ok {
		return 0, errors.New("malformed stage1_cache claims")
	}
	if claims.SymptomHash != hashSymptoms(symptomText) {
		return 0, errors.New("stage1_cache does not match resubmitted symptoms")
	}
	return claims.Questions, nil
}

func hashSymptoms(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
