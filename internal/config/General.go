package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// AppConfig holds all application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// TelemetryBaseURL is the base URL of the market telemetry collector.
	TelemetryBaseURL string

	// WebPort is the port the JSON API listens on.
	WebPort string

	// CycleIntervalSeconds is the orchestrator cycle interval.
	CycleIntervalSeconds uint64

	// DBHost is the PostgreSQL host.
	DBHost string
	// DBPort is the PostgreSQL port.
	DBPort int
	// DBUser is the PostgreSQL user.
	DBUser string
	// DBPassword is the PostgreSQL password.
	DBPassword string
	// DBName is the PostgreSQL database name.
	DBName string
	// DBSSLMode is the PostgreSQL SSL mode ("disable", "require", ...).
	DBSSLMode string
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// All environment variables are required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	TelemetryBaseURL, err = getEnv("TELEMETRY_BASE_URL")
	if err != nil {
		return err
	}

	WebPort, err = getEnv("WEB_PORT")
	if err != nil {
		return err
	}

	CycleIntervalSeconds, err = getEnvAsUint64("CYCLE_INTERVAL_SECONDS")
	if err != nil {
		return err
	}
	if CycleIntervalSeconds == 0 {
		return errors.New("CYCLE_INTERVAL_SECONDS must be positive")
	}

	DBHost, err = getEnv("DB_HOST")
	if err != nil {
		return err
	}

	dbPort, err := getEnvAsUint64("DB_PORT")
	if err != nil {
		return err
	}
	DBPort = int(dbPort)

	DBUser, err = getEnv("DB_USER")
	if err != nil {
		return err
	}

	DBPassword, err = getEnv("DB_PASSWORD")
	if err != nil {
		return err
	}

	DBName, err = getEnv("DB_NAME")
	if err != nil {
		return err
	}

	DBSSLMode, err = getEnv("DB_SSLMODE")
	if err != nil {
		return err
	}

	log.Debug().
		Str("TelemetryBaseURL", TelemetryBaseURL).
		Str("WebPort", WebPort).
		Uint64("CycleIntervalSeconds", CycleIntervalSeconds).
		Str("DBHost", DBHost).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}
