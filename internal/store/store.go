package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/apex/log"

	"healthroute/internal/errs"
	"healthroute/internal/geoutil"
	"healthroute/internal/models"
)

// Store is the facility store adapter (spec §4.5). All spatial predicates
// are expressed as "within r metres of (lat,lng)" against the SPATIAL
// INDEX on facility_locations.location, so point-radius queries stay
// logarithmic in the facility count regardless of table size.
type Store struct {
	db             *sql.DB
	acquireTimeout time.Duration
}

// New builds a Store bounding every query by acquireTimeout (spec §5's
// pool-acquire backpressure limit, default 500ms). acquireTimeout <= 0
// disables the bound.
func New(db *sql.DB, acquireTimeout time.Duration) *Store {
	return &Store{db: db, acquireTimeout: acquireTimeout}
}

// bound returns a context capped at s.acquireTimeout, so a saturated pool
// fails fast with a 503 (spec §5/§7) rather than queuing indefinitely.
func (s *Store) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.acquireTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.acquireTimeout)
}

// classify maps a bounded-context deadline to ServiceUnavailable; any
// other query error is left for the caller to wrap with its own context.
func classify(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Wrap(errs.ServiceUnavailable, "database pool acquire timed out", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// RoutingResultCap and DiagnosticResultCap are the row caps spec §4.5
// requires for routing vs. diagnostic queries.
const (
	RoutingResultCap    = 20
	DiagnosticResultCap = 50
)

// Filters narrows a nearest_within query (spec §4.4's pass 1/pass 2 shapes).
type Filters struct {
	RadiusKM         float64
	QualityThreshold float64
	Specialty        string // empty = no specialty filter
	EmergencyOnly    bool   // strict pass-1 emergency_available filter
	EmergencyFirst   bool   // ORDER BY emergency_available DESC (pass-2 relaxed retains this)
	Limit            int    // desired row count, clamped to MaxCap
	MaxCap           int    // 0 defaults to RoutingResultCap (spec §4.5: 20 for routing, 50 for diagnostics)
}

const facilityColumns = `f.id, f.name, ST_Y(fl.location) AS lat, ST_X(fl.location) AS lng, f.care_type, f.category,
		f.ayush_flag, f.discipline, f.specialties, f.facilities_json, f.emergency_available,
		f.phone_emergency, f.phone_ambulance, f.phone_blood_bank, f.phone_general,
		f.total_beds, f.postal_code, f.district, f.state, f.address, f.data_quality`

// NearestWithin returns facilities within radius of (lat, lng) matching
// filters, ordered by ascending distance (or by emergency_available DESC
// then distance ASC when EmergencyFirst is set), with distance_km
// attached.
func (s *Store) NearestWithin(ctx context.Context, lat, lng float64, filters Filters) ([]models.Facility, error) {
	maxCap := filters.MaxCap
	if maxCap <= 0 {
		maxCap = RoutingResultCap
	}
	limit := filters.Limit
	if limit <= 0 || limit > maxCap {
		limit = maxCap
	}

	sqlStr := fmt.Sprintf(`SELECT %s,
			ST_Distance_Sphere(fl.location, ST_SRID(POINT(?, ?), 4326)) / 1000 AS distance_km
		FROM facilities f
		JOIN facility_locations fl ON fl.facility_id = f.id
		WHERE f.data_quality >= ?
			AND ST_Distance_Sphere(fl.location, ST_SRID(POINT(?, ?), 4326)) <= ?`, facilityColumns)

	params := []any{lng, lat, filters.QualityThreshold, lng, lat, filters.RadiusKM * 1000}

	if filters.EmergencyOnly {
		sqlStr += " AND f.emergency_available = 1"
	}
	if filters.Specialty != "" {
		sqlStr += " AND JSON_CONTAINS(f.specialties, JSON_QUOTE(?))"
		params = append(params, filters.Specialty)
	}

	if filters.EmergencyFirst {
		sqlStr += " ORDER BY f.emergency_available DESC, distance_km ASC, f.data_quality DESC, f.id ASC"
	} else {
		sqlStr += " ORDER BY distance_km ASC, f.data_quality DESC, f.id ASC"
	}
	sqlStr += " LIMIT ?"
	params = append(params, limit)

	qctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(qctx, sqlStr, params...)
	if err != nil {
		// Not every driver reports an expired context as
		// context.DeadlineExceeded; attach the bound's own error so
		// classify recognises the timeout.
		if errors.Is(qctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", qctx.Err(), err)
		}
		return nil, classify("nearest_within query", err)
	}
	defer rows.Close()

	var results []models.Facility
	for rows.Next() {
		f, _, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("scan facility row: %w", err)
		}
		// The SQL ST_Distance_Sphere value drives the radius filter and
		// ORDER BY (so the spatial index does the heavy lifting), but the
		// reported distance_km is recomputed server-side via Haversine for
		// ranking precision (spec §4.4).
		f.DistanceKM = geoutil.HaversineKM(lat, lng, f.Latitude, f.Longitude)
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("nearest_within rows", err)
	}
	return results, nil
}

func scanFacility(rows *sql.Rows) (models.Facility, float64, error) {
	var (
		f                                        models.Facility
		careType, category, postalCode           sql.NullString
		district, state, address                 sql.NullString
		phoneEmergency, phoneAmbulance           sql.NullString
		phoneBloodBank, phoneGeneral             sql.NullString
		totalBeds                                sql.NullInt64
		disciplineJSON, specialtiesJSON, facJSON sql.NullString
		distanceKM                               float64
	)
	if err := rows.Scan(
		&f.ID, &f.Name, &f.Latitude, &f.Longitude, &careType, &category,
		&f.AyushFlag, &disciplineJSON, &specialtiesJSON, &facJSON, &f.EmergencyAvailable,
		&phoneEmergency, &phoneAmbulance, &phoneBloodBank, &phoneGeneral,
		&totalBeds, &postalCode, &district, &state, &address, &f.DataQuality,
		&distanceKM,
	); err != nil {
		return models.Facility{}, 0, err
	}

	f.CareType = careType.String
	f.Category = category.String
	f.PostalCode = postalCode.String
	f.District = district.String
	f.State = state.String
	f.Address = address.String
	f.PhoneEmergency = phoneEmergency.String
	f.PhoneAmbulance = phoneAmbulance.String
	f.PhoneBloodBank = phoneBloodBank.String
	f.PhoneGeneral = phoneGeneral.String
	f.TotalBeds = int(totalBeds.Int64)
	f.Discipline = unmarshalStringSlice(disciplineJSON)
	f.Specialties = unmarshalStringSlice(specialtiesJSON)
	f.Facilities = unmarshalStringSlice(facJSON)

	return f, distanceKM, nil
}

func unmarshalStringSlice(ns sql.NullString) []string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(ns.String), &out); err != nil {
		log.Warnf("failed to unmarshal facility JSON array: %v", err)
		return nil
	}
	return out
}

// Stats reports aggregate counts over the facility table (spec §4.5).
type Stats struct {
	Total           int `json:"total"`
	WithCoordinates int `json:"with_coordinates"`
	Emergency       int `json:"emergency"`
	Ayush           int `json:"ayush"`
	Government      int `json:"government"`
	QualityPassed   int `json:"quality_passed"`
}

func (s *Store) Stats(ctx context.Context, qualityThreshold float64) (Stats, error) {
	var st Stats
	qctx, cancel := s.bound(ctx)
	defer cancel()
	row := s.db.QueryRowContext(qctx, `SELECT
		COUNT(*),
		COUNT(fl.facility_id),
		SUM(f.emergency_available),
		SUM(f.ayush_flag),
		SUM(f.category LIKE '%gov%' OR f.category LIKE '%public%'),
		SUM(f.data_quality >= ?)
		FROM facilities f
		LEFT JOIN facility_locations fl ON fl.facility_id = f.id`, qualityThreshold)

	var emergency, ayush, government, qualityPassed sql.NullInt64
	if err := row.Scan(&st.Total, &st.WithCoordinates, &emergency, &ayush, &government, &qualityPassed); err != nil {
		return Stats{}, classify("stats query", err)
	}
	st.Emergency = int(emergency.Int64)
	st.Ayush = int(ayush.Int64)
	st.Government = int(government.Int64)
	st.QualityPassed = int(qualityPassed.Int64)
	return st, nil
}

// Centroid is the result of aggregating facility coordinates for a
// postal code or district (spec §4.3 strategies 2/3).
type Centroid struct {
	Latitude  float64
	Longitude float64
	State     string
	District  string
	Count     int
}

// CentroidByPostalCode aggregates facilities sharing code into a median
// centroid (spec §4.3 strategy 2), excluding records for which the
// caller-supplied bbox predicate is false before aggregation.
func (s *Store) CentroidByPostalCode(ctx context.Context, code string, bbox func(lat, lng float64) bool) (*Centroid, error) {
	qctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(qctx, `SELECT ST_Y(fl.location), ST_X(fl.location), f.state, f.district
		FROM facilities f
		JOIN facility_locations fl ON fl.facility_id = f.id
		WHERE f.postal_code = ?`, code)
	if err != nil {
		return nil, classify("centroid_by_postal_code query", err)
	}
	defer rows.Close()

	var points []geoutil.Point
	var state, district string
	for rows.Next() {
		var lat, lng float64
		var st, dt sql.NullString
		if err := rows.Scan(&lat, &lng, &st, &dt); err != nil {
			return nil, fmt.Errorf("scan centroid row: %w", err)
		}
		if !bbox(lat, lng) {
			continue
		}
		points = append(points, geoutil.Point{Lat: lat, Lng: lng})
		if state == "" {
			state = st.String
		}
		if district == "" {
			district = dt.String
		}
	}
	if err := rows.Err(); err != nil {
		return nil, classify("centroid_by_postal_code rows", err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	c, _ := geoutil.MedianCentroid(points)
	return &Centroid{Latitude: c.Lat, Longitude: c.Lng, State: state, District: district, Count: len(points)}, nil
}

// CentroidByDistrict aggregates every facility in (state, district) into a
// median centroid (spec §4.3 strategy 3).
func (s *Store) CentroidByDistrict(ctx context.Context, state, district string) (*Centroid, error) {
	qctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(qctx, `SELECT ST_Y(fl.location), ST_X(fl.location)
		FROM facilities f
		JOIN facility_locations fl ON fl.facility_id = f.id
		WHERE f.state = ? AND f.district = ?`, state, district)
	if err != nil {
		return nil, classify("centroid_by_district query", err)
	}
	defer rows.Close()

	var points []geoutil.Point
	for rows.Next() {
		var lat, lng float64
		if err := rows.Scan(&lat, &lng); err != nil {
			return nil, fmt.Errorf("scan centroid row: %w", err)
		}
		points = append(points, geoutil.Point{Lat: lat, Lng: lng})
	}
	if err := rows.Err(); err != nil {
		return nil, classify("centroid_by_district rows", err)
	}
	if len(points) == 0 {
		return nil, nil
	}
	c, _ := geoutil.MedianCentroid(points)
	return &Centroid{Latitude: c.Lat, Longitude: c.Lng, State: state, District: district, Count: len(points)}, nil
}

// FindDistrictForPostalCode looks up the (state, district) of any
// facility sharing code, for resolver strategy 3 (spec §4.3).
func (s *Store) FindDistrictForPostalCode(ctx context.Context, code string) (state, district string, found bool, err error) {
	qctx, cancel := s.bound(ctx)
	defer cancel()
	row := s.db.QueryRowContext(qctx, `SELECT state, district FROM facilities
		WHERE postal_code = ? AND state != '' AND district != '' LIMIT 1`, code)
	var st, dt sql.NullString
	if err := row.Scan(&st, &dt); err != nil {
		if err == sql.ErrNoRows {
			return "", "", false, nil
		}
		return "", "", false, classify("find_district_for_postal_code query", err)
	}
	return st.String, dt.String, true, nil
}

// FuzzyNameSearch is diagnostic-only: exact > prefix > substring match,
// then name (spec §4.5).
func (s *Store) FuzzyNameSearch(ctx context.Context, q, state string) ([]models.Facility, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, nil
	}

	sqlStr := fmt.Sprintf(`SELECT %s, 0 AS distance_km,
		CASE
			WHEN f.name = ? THEN 0
			WHEN f.name LIKE ? THEN 1
			ELSE 2
		END AS tier
		FROM facilities f
		LEFT JOIN facility_locations fl ON fl.facility_id = f.id
		WHERE (f.name = ? OR f.name LIKE ? OR f.name LIKE ?)`, facilityColumns)
	params := []any{q, q + "%", q, q + "%", "%" + q + "%"}

	if state != "" {
		sqlStr += " AND f.state = ?"
		params = append(params, state)
	}
	sqlStr += " ORDER BY tier ASC, f.name ASC LIMIT ?"
	params = append(params, DiagnosticResultCap)

	qctx, cancel := s.bound(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(qctx, sqlStr, params...)
	if err != nil {
		return nil, classify("fuzzy_name_search query", err)
	}
	defer rows.Close()

	var results []models.Facility
	for rows.Next() {
		var tier int
		f, _, err := scanFacilityWithTier(rows, &tier)
		if err != nil {
			return nil, fmt.Errorf("scan fuzzy row: %w", err)
		}
		results = append(results, f)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("fuzzy_name_search rows", err)
	}
	return results, nil
}

func scanFacilityWithTier(rows *sql.Rows, tier *int) (models.Facility, float64, error) {
	var (
		f                                        models.Facility
		lat, lng                                 sql.NullFloat64 // NULL for facilities with no location row
		careType, category, postalCode           sql.NullString
		district, state, address                 sql.NullString
		phoneEmergency, phoneAmbulance           sql.NullString
		phoneBloodBank, phoneGeneral             sql.NullString
		totalBeds                                sql.NullInt64
		disciplineJSON, specialtiesJSON, facJSON sql.NullString
		distanceKM                               float64
	)
	if err := rows.Scan(
		&f.ID, &f.Name, &lat, &lng, &careType, &category,
		&f.AyushFlag, &disciplineJSON, &specialtiesJSON, &facJSON, &f.EmergencyAvailable,
		&phoneEmergency, &phoneAmbulance, &phoneBloodBank, &phoneGeneral,
		&totalBeds, &postalCode, &district, &state, &address, &f.DataQuality,
		&distanceKM, tier,
	); err != nil {
		return models.Facility{}, 0, err
	}

	f.Latitude = lat.Float64
	f.Longitude = lng.Float64
	f.CareType = careType.String
	f.Category = category.String
	f.PostalCode = postalCode.String
	f.District = district.String
	f.State = state.String
	f.Address = address.String
	f.PhoneEmergency = phoneEmergency.String
	f.PhoneAmbulance = phoneAmbulance.String
	f.PhoneBloodBank = phoneBloodBank.String
	f.PhoneGeneral = phoneGeneral.String
	f.TotalBeds = int(totalBeds.Int64)
	f.Discipline = unmarshalStringSlice(disciplineJSON)
	f.Specialties = unmarshalStringSlice(specialtiesJSON)
	f.Facilities = unmarshalStringSlice(facJSON)

	return f, distanceKM, nil
}
