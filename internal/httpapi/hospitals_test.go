package httpapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleHospitalsSearch_MissingLatLng(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s.NewRouter(), http.MethodGet, "/hospitals", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHospitalsSearch_ReturnsFacilities(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectQuery("SELECT").WillReturnRows(facilityRowsForHTTP(2))

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/hospitals?lat=12.9716&lng=77.5946&radius=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp hospitalsSearchResponse
	require.NoError(t, decodeJSON(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, float64(5), resp.Radius)
}

func TestHandleFuzzySearch_MissingQuery(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s.NewRouter(), http.MethodGet, "/hospitals/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleFuzzySearch_ReturnsTieredMatches(t *testing.T) {
	s, mock := newTestServer(t)

	rows := facilityRowsWithTier()
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/hospitals/search?q=City", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp fuzzySearchResponse
	require.NoError(t, decodeJSON(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "City Hospital", resp.Hospitals[0].Name)
}

func TestHandleStats_ReturnsCounts(t *testing.T) {
	s, mock := newTestServer(t)
	rows := mockStatsRows(100, 80, 10, 5, 30, 60)
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/hospitals/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
