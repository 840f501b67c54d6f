// Package config loads the process-wide configuration for the routing
// service from environment variables, once, at startup.
package config

import (
	"os"
	"strconv"
)

// BoundingBox is a country-specific lat/lng admissibility rectangle.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// IndiaBoundingBox is the default country bounding box (spec §3).
var IndiaBoundingBox = BoundingBox{MinLat: 6.0, MaxLat: 37.5, MinLng: 68.0, MaxLng: 97.5}

// Contains reports whether (lat, lng) falls inside the box.
func (b BoundingBox) Contains(lat, lng float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lng >= b.MinLng && lng <= b.MaxLng
}

// Config holds all configuration for the routing service.
type Config struct {
	// Server
	ListenPort    int
	AllowedOrigin string
	LogLevel      string

	// Database
	DBDSN                string
	DBSSL                bool
	DBMaxOpenConns       int
	DBMaxIdleConns       int
	DBConnMaxLifetimeMin int
	DBPingMaxWaitSec     int
	PoolAcquireTimeoutMS int

	// Geocoding
	GeocodeBaseURL        string
	GeocodeProviderRegion string
	GeocodeIndexName      string
	GeocodeAPIKey         string
	GeocodeTimeoutMS      int

	// Country admissibility
	CountryBoundingBox BoundingBox

	// Facility store gates
	QualityThreshold float64

	// Severity router
	MinResultsBeforeRelax int
	MaxRadiusKM           float64

	// Symptom classifier
	AIClassifierURL       string
	AIClassifierTimeoutMS int
	StageCacheSecret      string
	StageCacheTTLMin      int

	// Postal code cache
	CacheTTLSeconds int

	// Overall request deadline
	RequestDeadlineMS int
}

// Load reads configuration from environment variables, applying the
// defaults from spec §4.6.
func Load() *Config {
	return &Config{
		ListenPort:    getIntEnv("LISTEN_PORT", 5000),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "http://localhost:3001"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DBDSN:                getEnv("DB_DSN", ""),
		DBSSL:                getBoolEnv("DB_SSL", false),
		DBMaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 10),
		DBConnMaxLifetimeMin: getIntEnv("DB_CONN_MAX_LIFETIME_MIN", 5),
		DBPingMaxWaitSec:     getIntEnv("DB_PING_MAX_WAIT_SEC", 60),
		PoolAcquireTimeoutMS: getIntEnv("POOL_ACQUIRE_TIMEOUT_MS", 500),

		GeocodeBaseURL:        getEnv("GEOCODE_BASE_URL", "https://places.geo.ap-south-1.amazonaws.com/v0"),
		GeocodeProviderRegion: getEnv("GEOCODE_PROVIDER_REGION", "ap-south-1"),
		GeocodeIndexName:      getEnv("GEOCODE_INDEX_NAME", ""),
		GeocodeAPIKey:         getEnv("GEOCODE_API_KEY", ""),
		GeocodeTimeoutMS:      getIntEnv("GEOCODE_TIMEOUT_MS", 2000),

		CountryBoundingBox: IndiaBoundingBox,

		QualityThreshold: getFloatEnv("QUALITY_THRESHOLD", 0.3),

		MinResultsBeforeRelax: getIntEnv("MIN_RESULTS_BEFORE_RELAX", 3),
		MaxRadiusKM:           getFloatEnv("MAX_RADIUS_KM", 20),

		AIClassifierURL:       getEnv("AI_CLASSIFIER_URL", ""),
		AIClassifierTimeoutMS: getIntEnv("AI_CLASSIFIER_TIMEOUT_MS", 8000),
		StageCacheSecret:      getEnv("STAGE_CACHE_SECRET", "insecure-dev-secret-change-me"),
		StageCacheTTLMin:      getIntEnv("STAGE_CACHE_TTL_MIN", 10),

		CacheTTLSeconds: getIntEnv("CACHE_TTL_S", 86400),

		RequestDeadlineMS: getIntEnv("REQUEST_DEADLINE_MS", 15000),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
