package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHealth_DatabaseReachable(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectPing()

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, decodeJSON(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "ok", resp.Database)
	assert.Equal(t, "routing-service", resp.Version.Service)
	assert.NotEmpty(t, resp.Version.GoVersion)
}

func TestHandleHealth_DatabaseUnreachable(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectPing().WillReturnError(assert.AnError)

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
