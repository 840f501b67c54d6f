package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func mockStatsRows(total, withCoords, emergency, ayush, government, qualityPassed int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"total", "with_coords", "emergency", "ayush", "government", "quality_passed"}).
		AddRow(total, withCoords, emergency, ayush, government, qualityPassed)
}

func facilityRowsWithTier() *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "name", "lat", "lng", "care_type", "category",
		"ayush_flag", "discipline", "specialties", "facilities_json", "emergency_available",
		"phone_emergency", "phone_ambulance", "phone_blood_bank", "phone_general",
		"total_beds", "postal_code", "district", "state", "address", "data_quality",
		"distance_km", "tier",
	})
	rows.AddRow("f1", "City Hospital", 12.97, 77.59, "Hospital", "gov hospital",
		false, nil, nil, nil, true,
		"100", "108", "", "", 50, "560001", "Bengaluru Urban", "Karnataka", "MG Road", 0.9, 0, 0)
	rows.AddRow("f2", "City Clinic Annex", 12.98, 77.60, "Clinic", "private",
		false, nil, nil, nil, false,
		"", "", "", "", 0, "560001", "Bengaluru Urban", "Karnataka", "Brigade Road", 0.7, 0, 1)
	return rows
}

func decodeJSON(body []byte, dst any) error {
	return json.Unmarshal(body, dst)
}

func newRawRequest(t *testing.T, method, path string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func recordRequest(engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
