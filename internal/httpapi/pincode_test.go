package httpapi

import (
	"net/http"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlePincode_InvalidFormat(t *testing.T) {
	s, _ := newTestServer(t)
	w := doRequest(t, s.NewRouter(), http.MethodGet, "/pincode/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlePincode_ResolvesViaLocalCentroid(t *testing.T) {
	s, mock := newTestServer(t)
	rows := sqlmock.NewRows([]string{"lat", "lng", "state", "district"}).
		AddRow(12.90, 77.50, "Karnataka", "Bengaluru Urban").
		AddRow(12.95, 77.55, "Karnataka", "Bengaluru Urban")
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/pincode/560001", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlePincode_NotFound(t *testing.T) {
	s, mock := newTestServer(t)
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"lat", "lng", "state", "district"}))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"state", "district"}))

	w := doRequest(t, s.NewRouter(), http.MethodGet, "/pincode/000000", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
