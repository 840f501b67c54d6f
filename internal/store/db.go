// Package store is the facility store adapter (spec §4.5): the only place
// in the service that knows about spatial SQL. It translates router and
// resolver queries into point-radius and centroid operations over a MySQL
// table indexed with a SPATIAL INDEX.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// PoolConfig configures the shared connection pool (spec §4.6, §5).
type PoolConfig struct {
	DSN                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	PingMaxWaitSec     int
}

// Connect opens the facility store connection pool, retrying the initial
// ping with exponential backoff up to PingMaxWaitSec.
func Connect(cfg PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open facility store: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetimeMin > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	}

	pingMaxWait := cfg.PingMaxWaitSec
	if pingMaxWait <= 0 {
		pingMaxWait = 60
	}
	deadline := time.Now().Add(time.Duration(pingMaxWait) * time.Second)
	waitInterval := time.Second
	for {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pingErr := db.PingContext(ctx)
		cancel()
		if pingErr == nil {
			break
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("facility store ping timeout after %ds: %w", pingMaxWait, pingErr)
		}
		time.Sleep(waitInterval)
		waitInterval *= 2
		if waitInterval > 30*time.Second {
			waitInterval = 30 * time.Second
		}
	}

	return db, nil
}
