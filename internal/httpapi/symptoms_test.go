package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthroute/internal/models"
)

func TestHandleClassify_EmergencyKeyword(t *testing.T) {
	s, _ := newTestServer(t)

	w := doRequest(t, s.NewRouter(), http.MethodPost, "/symptoms/classify", classifyRequest{
		Symptoms: "I have chest pain and cannot breathe",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	var a models.Assessment
	require.NoError(t, decodeJSON(w.Body.Bytes(), &a))
	assert.Equal(t, 10, a.Severity)
	assert.Equal(t, models.SeverityEmergency, a.SeverityLevel)
	assert.True(t, a.AutoEmergency)
}

func TestHandleClassify_NeverReturns5xxOnMalformedBody(t *testing.T) {
	s, _ := newTestServer(t)

	req := newRawRequest(t, http.MethodPost, "/symptoms/classify", []byte("{not json"))
	w := recordRequest(s.NewRouter(), req)

	assert.Equal(t, http.StatusOK, w.Code)
	var a models.Assessment
	require.NoError(t, decodeJSON(w.Body.Bytes(), &a))
	assert.Equal(t, "client-fallback", a.Mode)
}
