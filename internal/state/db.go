// ./internal/state/db.go
package state

import (
	"context"
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

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
// Fixed-point 10^18 integers are stored as NUMERIC(78, 0), which covers the
// full 256-bit range without loss.
func EnsureSchema() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	schemaSQL := `
		CREATE TABLE IF NOT EXISTS engine_parameters (
			params_id SERIAL PRIMARY KEY,
			version INTEGER NOT NULL DEFAULT 1,
			config_name VARCHAR(255) NOT NULL DEFAULT 'default',
			is_active BOOLEAN NOT NULL DEFAULT FALSE,
			activated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			exp_taylor_terms INTEGER NOT NULL,
			swap_fee_bps INTEGER NOT NULL,
			max_price_ratio NUMERIC(78, 0) NOT NULL,
			min_liquidity NUMERIC(78, 0) NOT NULL,
			min_dwell_cycles INTEGER NOT NULL,
			score_deadband INTEGER NOT NULL,
			CONSTRAINT uq_engine_parameters_config_version UNIQUE (config_name, version)
		);
		CREATE INDEX IF NOT EXISTS idx_engine_parameters_config_active ON engine_parameters(config_name, is_active, activated_at DESC);

		CREATE TABLE IF NOT EXISTS pool_snapshots (
			snapshot_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pair VARCHAR(64) NOT NULL,
			reserve_x NUMERIC(78, 0) NOT NULL,
			reserve_y NUMERIC(78, 0) NOT NULL,
			total_shares NUMERIC(78, 0) NOT NULL,
			active_preset VARCHAR(32) NOT NULL,
			active_config JSONB NOT NULL,
			composite_score INTEGER
		);
		CREATE INDEX IF NOT EXISTS idx_pool_snapshots_pair_timestamp ON pool_snapshots(pair, snapshot_timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_pool_snapshots_cycle ON pool_snapshots(cycle_number DESC);

		CREATE TABLE IF NOT EXISTS pair_metrics (
			metrics_id SERIAL PRIMARY KEY,
			cycle_number INTEGER NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pair VARCHAR(64) NOT NULL,
			market_cap_usd NUMERIC(78, 0) NOT NULL,
			volume_24h_usd NUMERIC(78, 0) NOT NULL,
			holder_count BIGINT NOT NULL,
			age_seconds BIGINT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_pair_metrics_pair_fetched ON pair_metrics(pair, fetched_at DESC);

		CREATE TABLE IF NOT EXISTS quote_history (
			quote_id UUID PRIMARY KEY,
			quoted_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			pair VARCHAR(64) NOT NULL,
			token_in VARCHAR(8) NOT NULL,
			amount_in NUMERIC(78, 0) NOT NULL,
			amount_out NUMERIC(78, 0) NOT NULL,
			fee_amount NUMERIC(78, 0) NOT NULL,
			price_impact_bps NUMERIC(78, 0) NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_quote_history_pair_quoted ON quote_history(pair, quoted_at DESC);

		-- Cycle counter table for persistent global cycle tracking
		CREATE TABLE IF NOT EXISTS cycle_counter (
			id INTEGER PRIMARY KEY DEFAULT 1,
			current_cycle INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT single_row_check CHECK (id = 1)
		);

		-- Insert initial row if it doesn't exist
		INSERT INTO cycle_counter (id, current_cycle)
		VALUES (1, 0)
		ON CONFLICT (id) DO NOTHING;
	`
	_, err := DB.Exec(schemaSQL)
	if err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured.")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return fmt.Errorf("database connection is nil")
	}

	// Use a short timeout context for health checks
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}
