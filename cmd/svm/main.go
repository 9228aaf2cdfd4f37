package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/openyield-labs/svm/internal/chain"
	"github.com/openyield-labs/svm/internal/config"
	"github.com/openyield-labs/svm/internal/ledger"
	"github.com/openyield-labs/svm/internal/logger"
	"github.com/openyield-labs/svm/internal/state"
	"github.com/openyield-labs/svm/internal/svm"
	"github.com/openyield-labs/svm/internal/types"
	"github.com/openyield-labs/svm/internal/web"
)

// main is the entry point for the SVM service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("SVM Ledger Core Starting...")

	// Initialize Database Connection (audit log, snapshots, parameters)
	dbCfg := state.DBConfig{
		Host: os.Getenv("DB_HOST"), Port: mustAtoi(os.Getenv("DB_PORT"), 5432),
		User: os.Getenv("DB_USER"), Password: os.Getenv("DB_PASSWORD"),
		DBName: os.Getenv("DB_NAME"), SSLMode: os.Getenv("DB_SSLMODE"),
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Ledger Parameters
	params, err := state.LoadActiveLedgerParameters(svm.DEFAULT_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active ledger parameters, using defaults and saving.")
		defaultParams := config.DefaultLedgerParameters
		if _, err := state.SaveLedgerParameters(defaultParams, svm.DEFAULT_CONFIG_NAME, svm.DEFAULT_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default ledger parameters.")
		}
		params = &defaultParams
	}
	log.Info().Msg("Ledger parameters loaded successfully.")

	// --- 2. Chain Provider Initialization ---
	// The ledger consumes height, time, and transfers through this port. The
	// in-memory simulator backs local operation; a live adapter plugs in here
	// once one is configured for the target environment.
	provider := chain.NewSimulator(config.SimStartHeight, time.Now())
	log.Info().Uint64("startHeight", config.SimStartHeight).Msg("Chain simulator initialized")

	// --- 3. Ledger Initialization ---
	led, err := ledger.New(ledger.Config{
		Chain:      provider,
		Sink:       svm.StoreSink{},
		Owner:      types.Account(config.OwnerAccount),
		Parameters: *params,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create ledger")
	}

	// --- 4. Start Web Server ---
	webPort := os.Getenv("WEB_PORT")
	if webPort == "" {
		webPort = "8080"
	}

	webServer := web.NewWebServer(webPort, led)
	go func() {
		log.Info().Str("port", webPort).Str("url", "http://localhost:"+webPort).Msg("Starting SVM query API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 5. Create SVM Instance with Dependency Injection ---
	svmInstance, err := svm.NewSVM(svm.Config{
		Ledger:        led,
		Chain:         provider,
		ConfigName:    svm.DEFAULT_CONFIG_NAME,
		ConfigVersion: svm.DEFAULT_CONFIG_VERSION,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create SVM instance")
	}

	// --- 6. Start Sweep Loop ---
	interval := time.Duration(config.SweepIntervalSeconds) * time.Second
	log.Info().Str("interval", interval.String()).Msg("Starting SVM sweep loop")

	ctx := context.Background()
	svmInstance.RunLoop(ctx, interval)
}

// Helper to convert string to int with a default value
func mustAtoi(s string, defaultValue int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return i
}
