// ./internal/state/db.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	psqlInfo := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	var err error
	DB, err = sql.Open("postgres", psqlInfo)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(25)
	DB.SetConnMaxLifetime(5 * time.Minute)

	err = DB.Ping()
	if err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Msg("Successfully connected to the PostgreSQL database!")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
	}
}

// TestDBConnection verifies the database is reachable.
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return DB.Ping()
}

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS ledger_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			reward_per_block NUMERIC(78, 0) NOT NULL,
			emergency_withdraw_fee_bps INTEGER NOT NULL,
			default_min_lock_seconds BIGINT NOT NULL,
			CONSTRAINT uq_ledger_parameters_config_version UNIQUE (config_name, version),
			CONSTRAINT ck_ledger_parameters_fee_bps CHECK (emergency_withdraw_fee_bps BETWEEN 0 AND 1000)
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_parameters_config_active ON ledger_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS ledger_events (
			event_id VARCHAR(36) PRIMARY KEY,
			event_type VARCHAR(50) NOT NULL,
			event_timestamp TIMESTAMPTZ NOT NULL,
			height BIGINT NOT NULL,
			pool_id BIGINT NOT NULL,
			account VARCHAR(255),
			amount NUMERIC(78, 0) NOT NULL,
			fee NUMERIC(78, 0) NOT NULL,
			attributes JSONB
		);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_pool_timestamp ON ledger_events(pool_id, event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_account ON ledger_events(account, event_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_ledger_events_type ON ledger_events(event_type, event_timestamp DESC);

		CREATE TABLE IF NOT EXISTS pool_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL,
			height BIGINT NOT NULL,
			pool_id BIGINT NOT NULL,
			total_staked NUMERIC(78, 0) NOT NULL,
			acc_reward_per_share NUMERIC(78, 0) NOT NULL,
			allocation_weight BIGINT NOT NULL,
			active_positions INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pool_snapshots_pool_timestamp ON pool_snapshots(pool_id, snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_pool_snapshots_cycle ON pool_snapshots(cycle_number DESC);
	`

	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info().Msg("Database schema ensured.")
	return nil
}
