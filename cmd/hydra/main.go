package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/theaxiomverse/hydra/internal/config"
	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/engine"
	"github.com/theaxiomverse/hydra/internal/hydra"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/pool"
	"github.com/theaxiomverse/hydra/internal/state"
	"github.com/theaxiomverse/hydra/internal/telemetry"
	"github.com/theaxiomverse/hydra/internal/types"
	"github.com/theaxiomverse/hydra/internal/web"
)

// main is the entry point for the Hydra pricing service.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	logger.Initialize(os.Getenv("LOG_LEVEL"))
	log.Info().Msg("Hydra Pricing Engine Starting...")

	// Load configuration from environment variables
	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize Database Connection
	dbCfg := state.DBConfig{
		Host: config.DBHost, Port: config.DBPort,
		User: config.DBUser, Password: config.DBPassword,
		DBName: config.DBName, SSLMode: config.DBSSLMode,
	}
	if err := state.InitDB(dbCfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer state.CloseDB()
	if err := state.EnsureSchema(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ensure database schema")
	}

	// Load Engine Parameters
	engineParams, err := state.LoadActiveEngineParameters(hydra.DEFAULT_PARAMS_CONFIG_NAME)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load active engine parameters, using defaults and saving.")
		defaultParams := config.DefaultEngineParameters
		if _, err := state.SaveEngineParameters(defaultParams, hydra.DEFAULT_PARAMS_CONFIG_NAME, hydra.DEFAULT_PARAMS_CONFIG_VERSION, true); err != nil {
			log.Fatal().Err(err).Msg("Failed to save initial default engine parameters.")
		}
		engineParams = &defaultParams
	}
	log.Info().Msg("Engine parameters loaded successfully.")

	// --- 2. Core Component Initialization ---
	eng, err := engine.New(*engineParams)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create liquidity engine")
	}

	ledger, err := pool.NewLedger(eng, engineParams.SwapFeeBps)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create pool ledger")
	}

	bootstrapPools(ledger)

	telemetryClient, err := telemetry.NewClient(config.TelemetryBaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create telemetry client")
	}

	// --- Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, ledger, eng, hydra.DEFAULT_PARAMS_CONFIG_NAME)
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting Hydra API server")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed to start")
		}
	}()

	// --- 3. Create Hydra Instance with Dependency Injection ---
	log.Info().Msg("Creating Hydra instance with dependency injection...")

	hydraConfig := hydra.Config{
		Ledger:        ledger,
		Telemetry:     telemetryClient,
		Params:        *engineParams,
		ConfigName:    hydra.DEFAULT_PARAMS_CONFIG_NAME,
		ConfigVersion: hydra.DEFAULT_PARAMS_CONFIG_VERSION,
	}

	hydraInstance, err := hydra.New(hydraConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Hydra instance")
	}

	log.Info().Msg("Hydra instance created successfully")

	// --- 4. Start Main Loop with Graceful Shutdown ---
	interval := time.Duration(config.CycleIntervalSeconds) * time.Second
	log.Info().Str("interval", interval.String()).Msg("Starting Hydra main loop")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()
	}()

	hydraInstance.RunLoop(ctx, interval)
	log.Info().Msg("Hydra stopped")
}

// bootstrapPools seeds the development pool set, restoring reserves from
// the latest snapshot when one exists.
func bootstrapPools(ledger *pool.Ledger) {
	for _, bp := range config.BootstrapPools {
		reserveX, reserveY := bp.ReserveX, bp.ReserveY
		preset := bp.Preset

		if snap, err := state.LoadLatestPoolSnapshot(bp.Pair); err != nil {
			log.Error().Err(err).Str("pair", string(bp.Pair)).Msg("Snapshot lookup failed, seeding defaults")
		} else if snap != nil {
			reserveX, reserveY = snap.ReserveX, snap.ReserveY
			preset = snap.ActivePreset
			log.Info().Str("pair", string(bp.Pair)).Int("cycle", snap.CycleNumber).Msg("Restoring pool from snapshot")
		}

		cfg, err := curve.ByPreset(preset)
		if err != nil {
			log.Error().Err(err).Str("pair", string(bp.Pair)).Msg("Unknown preset in snapshot, using standard")
			cfg = curve.Standard()
			preset = types.PresetStandard
		}

		if _, err := ledger.InitPool(bp.Pair, reserveX, reserveY, cfg, preset); err != nil {
			log.Error().Err(err).Str("pair", string(bp.Pair)).Msg("Failed to bootstrap pool")
			continue
		}
		log.Info().Str("pair", string(bp.Pair)).Str("preset", string(preset)).Msg("Pool bootstrapped")
	}
}
