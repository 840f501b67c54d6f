package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"healthroute/internal/config"
	"healthroute/internal/geocode"
	"healthroute/internal/models"
	"healthroute/internal/store"
)

type fakeGeocodeClient struct {
	results []geocode.Result
	err     error
	calls   int
}

func (f *fakeGeocodeClient) Geocode(ctx context.Context, query string) ([]geocode.Result, error) {
	f.calls++
	return f.results, f.err
}

func newTestResolver(t *testing.T, gc geocode.Client) (*Resolver, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	r := New(store.New(db, time.Second), gc, time.Second, config.IndiaBoundingBox, time.Minute)
	return r, mock
}

func TestResolve_ExternalGeocodeWins(t *testing.T) {
	gc := &fakeGeocodeClient{results: []geocode.Result{{Latitude: 12.9716, Longitude: 77.5946, Relevance: 0.9}}}
	r, _ := newTestResolver(t, gc)

	got, err := r.Resolve(context.Background(), "560001")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Provenance != models.ProvenanceExternalGeocode {
		t.Errorf("Provenance = %v, want external_geocode", got.Provenance)
	}
	if got.Latitude != 12.9716 || got.Longitude != 77.5946 {
		t.Errorf("coordinates = (%v, %v), want (12.9716, 77.5946)", got.Latitude, got.Longitude)
	}
}

func TestResolve_FallsThroughToLocalExactCentroid(t *testing.T) {
	gc := &fakeGeocodeClient{err: errors.New("geocoder unavailable")}
	r, mock := newTestResolver(t, gc)

	rows := sqlmock.NewRows([]string{"lat", "lng", "state", "district"}).
		AddRow(12.90, 77.50, "Karnataka", "Bengaluru Urban").
		AddRow(12.95, 77.55, "Karnataka", "Bengaluru Urban")
	mock.ExpectQuery("SELECT").WillReturnRows(rows)

	got, err := r.Resolve(context.Background(), "560001")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Provenance != models.ProvenanceLocalExactCentroid {
		t.Errorf("Provenance = %v, want local_exact_centroid", got.Provenance)
	}
	if got.FacilityCount != 2 {
		t.Errorf("FacilityCount = %d, want 2", got.FacilityCount)
	}
}

func TestResolve_FallsThroughToDistrictCentroid(t *testing.T) {
	r, mock := newTestResolver(t, nil)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"lat", "lng", "state", "district"})) // exact centroid: no rows
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"state", "district"}).AddRow("Karnataka", "Bengaluru Urban"))
	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"lat", "lng"}).AddRow(12.9, 77.5).AddRow(13.0, 77.6))

	got, err := r.Resolve(context.Background(), "560001")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got.Provenance != models.ProvenanceLocalDistrictCentroid {
		t.Errorf("Provenance = %v, want local_district_centroid", got.Provenance)
	}
	if got.District != "Bengaluru Urban" {
		t.Errorf("District = %q, want Bengaluru Urban", got.District)
	}
}

func TestResolve_AllStrategiesFailReturnsCodeNotFound(t *testing.T) {
	r, mock := newTestResolver(t, nil)

	mock.ExpectQuery("SELECT").WillReturnRows(sqlmock.NewRows([]string{"lat", "lng", "state", "district"}))
	mock.ExpectQuery("SELECT").WillReturnError(errors.New("no rows in result set"))

	_, err := r.Resolve(context.Background(), "000000")
	if err == nil {
		t.Fatal("Resolve() error = nil, want CodeNotFound")
	}
}

func TestResolve_CachesSuccessfulResolution(t *testing.T) {
	gc := &fakeGeocodeClient{results: []geocode.Result{{Latitude: 12.9716, Longitude: 77.5946}}}
	r, _ := newTestResolver(t, gc)

	if _, err := r.Resolve(context.Background(), "560001"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if _, err := r.Resolve(context.Background(), "560001"); err != nil {
		t.Fatalf("Resolve() second call error = %v", err)
	}
	if gc.calls != 1 {
		t.Errorf("geocode client called %d times, want 1 (second call should hit cache)", gc.calls)
	}
}
