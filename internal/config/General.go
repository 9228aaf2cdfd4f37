package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables. These are
// populated at startup by the LoadConfig function.
var (
	// OwnerAccount is the account permitted to call owner-gated ledger
	// operations (pool registration, policy changes, pause).
	OwnerAccount string

	// SweepIntervalSeconds is how often the service refreshes every pool's
	// accumulator and writes snapshots.
	SweepIntervalSeconds uint64

	// SimStartHeight seeds the simulated chain provider when no live chain
	// connection is configured.
	SimStartHeight uint64
)

// LoadConfig loads configuration from environment variables and sets the
// global config vars. All environment variables without a default are
// required and must be set.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	OwnerAccount, err = getEnv("SVM_OWNER_ACCOUNT")
	if err != nil {
		return err
	}

	SweepIntervalSeconds, err = getEnvAsUint64WithDefault("SVM_SWEEP_INTERVAL_SECONDS", 60)
	if err != nil {
		return err
	}

	SimStartHeight, err = getEnvAsUint64WithDefault("SVM_SIM_START_HEIGHT", 1)
	if err != nil {
		return err
	}

	log.Debug().
		Str("OwnerAccount", OwnerAccount).
		Uint64("SweepIntervalSeconds", SweepIntervalSeconds).
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

func getEnvAsUint64WithDefault(key string, fallback uint64) (uint64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback, nil
	}
	parsed, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be an unsigned integer")
	}
	return parsed, nil
}
