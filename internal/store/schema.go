package store

import (
	"database/sql"
	"fmt"
)

// InitSchema creates the facility tables if they don't exist. Coordinates
// live in a separate facility_locations table, one row per facility that
// has a known location: MySQL requires SPATIAL INDEX columns to be
// NOT NULL, but facilities with no resolvable coordinates must still be
// valid rows, so those facilities simply have no row here and are
// excluded from every spatial query by the JOIN itself.
func InitSchema(db *sql.DB) error {
	facilitiesTableSQL := `
	CREATE TABLE IF NOT EXISTS facilities (
		id               VARCHAR(64) NOT NULL,
		name             VARCHAR(255) NOT NULL,
		care_type        VARCHAR(64),
		category         VARCHAR(128),
		ayush_flag       BOOL NOT NULL DEFAULT false,
		discipline       JSON,
		specialties      JSON,
		facilities_json  JSON,
		emergency_available BOOL NOT NULL DEFAULT false,
		phone_emergency  VARCHAR(32),
		phone_ambulance  VARCHAR(32),
		phone_blood_bank VARCHAR(32),
		phone_general    VARCHAR(32),
		total_beds       INT,
		postal_code      CHAR(6),
		district         VARCHAR(128),
		state            VARCHAR(128),
		address          VARCHAR(512),
		data_quality     DECIMAL(3,2) NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		INDEX postal_code_index (postal_code),
		INDEX district_index (state, district)
	)`

	if _, err := db.Exec(facilitiesTableSQL); err != nil {
		return fmt.Errorf("failed to create facilities table: %w", err)
	}

	locationsTableSQL := `
	CREATE TABLE IF NOT EXISTS facility_locations (
		facility_id VARCHAR(64) NOT NULL,
		location    POINT NOT NULL SRID 4326,
		PRIMARY KEY (facility_id),
		SPATIAL INDEX location_index (location),
		CONSTRAINT facility_locations_facility_fk FOREIGN KEY (facility_id)
			REFERENCES facilities (id) ON DELETE CASCADE
	)`

	if _, err := db.Exec(locationsTableSQL); err != nil {
		return fmt.Errorf("failed to create facility_locations table: %w", err)
	}
	return nil
}
