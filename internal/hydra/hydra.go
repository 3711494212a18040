package hydra

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theaxiomverse/hydra/internal/analyzer"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/planner"
	"github.com/theaxiomverse/hydra/internal/pool"
	"github.com/theaxiomverse/hydra/internal/state"
	"github.com/theaxiomverse/hydra/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMS_CONFIG_NAME    = "default_hydra_engine"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// MetricsSource supplies fresh market telemetry per pair each cycle.
type MetricsSource interface {
	FetchMarketMetrics(ctx context.Context, pair types.PairID) (types.MarketMetrics, error)
}

// Hydra is the adaptive-curve orchestrator: every cycle it pulls telemetry
// for each pool, runs the selector through the transition planner, applies
// planned config replacements to the ledger, and persists snapshots.
type Hydra struct {
	// Core dependencies
	logger    zerolog.Logger
	ledger    *pool.Ledger
	telemetry MetricsSource
	params    types.EngineParameters

	// Configuration
	configName    string
	configVersion int

	// Runtime state
	cycleCount int
	tracking   map[types.PairID]*poolTracking
}

// poolTracking carries the hysteresis state for one pool between cycles.
type poolTracking struct {
	cyclesHeld int
	lastScore  uint32
}

// Config holds the configuration for creating a new Hydra instance
type Config struct {
	Ledger        *pool.Ledger
	Telemetry     MetricsSource
	Params        types.EngineParameters
	ConfigName    string
	ConfigVersion int
}

// New creates a new Hydra instance with dependency injection
func New(cfg Config) (*Hydra, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("hydra configuration validation failed: %w", err)
	}

	h := &Hydra{
		logger:        logger.GetForComponent("hydra_core"),
		ledger:        cfg.Ledger,
		telemetry:     cfg.Telemetry,
		params:        cfg.Params,
		configName:    cfg.ConfigName,
		configVersion: cfg.ConfigVersion,
		cycleCount:    0,
		tracking:      make(map[types.PairID]*poolTracking),
	}

	h.logger.Info().
		Str("configName", h.configName).
		Int("configVersion", h.configVersion).
		Msg("Hydra instance created successfully with dependency injection")

	return h, nil
}

// validateConfig validates the Hydra configuration
func validateConfig(cfg Config) error {
	if cfg.Ledger == nil {
		return fmt.Errorf("pool ledger cannot be nil")
	}
	if cfg.Telemetry == nil {
		return fmt.Errorf("telemetry source cannot be nil")
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	if cfg.ConfigVersion <= 0 {
		return fmt.Errorf("config version must be positive")
	}
	if cfg.Params.MinDwellCycles < 0 {
		return fmt.Errorf("min dwell cycles cannot be negative")
	}
	if cfg.Params.ScoreDeadband > 100 {
		return fmt.Errorf("score deadband cannot exceed the score range")
	}
	return nil
}

// RunLoop starts the main Hydra loop with the specified interval
func (h *Hydra) RunLoop(ctx context.Context, interval time.Duration) {
	h.logger.Info().
		Dur("interval", interval).
		Msg("Starting Hydra main loop")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Run first cycle immediately
	h.cycleCount++
	h.logger.Info().Int("cycle", h.cycleCount).Msg("Initiating Hydra cycle")
	h.RunCycle(ctx)
	h.logger.Info().Int("cycle", h.cycleCount).Msg("Hydra cycle completed")

	// Continue with ticker
	for {
		select {
		case <-ctx.Done():
			h.logger.Info().Msg("Hydra loop stopped due to context cancellation")
			return
		case <-ticker.C:
			h.cycleCount++
			h.logger.Info().Int("cycle", h.cycleCount).Msg("Initiating Hydra cycle")
			h.RunCycle(ctx)
			h.logger.Info().Int("cycle", h.cycleCount).Msg("Hydra cycle completed")
		}
	}
}

// RunCycle executes one complete telemetry/selection/transition cycle
func (h *Hydra) RunCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Generate unique cycle ID for tracing logs across the entire cycle
	cycleID := uuid.New().String()
	cycleLogger := h.logger.With().Str("cycle_id", cycleID).Logger()

	cycleLogger.Info().Msg("--- Starting Hydra Cycle ---")

	cycleNumber := h.getCycleNumber()

	// --- Step 1: Pool Inventory ---
	pools := h.ledger.Pools()
	if len(pools) == 0 {
		cycleLogger.Info().Msg("No pools registered, nothing to do")
		return
	}
	cycleLogger.Info().Int("pools", len(pools)).Msg("Step 1: Pool inventory complete.")

	// --- Step 2: Telemetry Fetch ---
	cycleLogger.Info().Msg("Step 2: Fetching market telemetry...")
	metricsByPair := make(map[types.PairID]types.MarketMetrics, len(pools))
	for _, p := range pools {
		metrics, err := h.telemetry.FetchMarketMetrics(ctx, p.Pair)
		if err != nil {
			// A failed fetch freezes this pool on its current config for the
			// cycle rather than steering it on stale data.
			cycleLogger.Error().Err(err).Str("pair", string(p.Pair)).Msg("Telemetry fetch failed, pool held on current config")
			continue
		}
		metricsByPair[p.Pair] = metrics

		if err := state.SavePairMetrics(cycleNumber, p.Pair, metrics); err != nil {
			cycleLogger.Error().Err(err).Str("pair", string(p.Pair)).Msg("Failed to persist pair metrics")
		}
	}
	cycleLogger.Info().Int("fetched", len(metricsByPair)).Msg("Step 2: Telemetry fetch complete.")

	// --- Step 3: Transition Planning ---
	cycleLogger.Info().Msg("Step 3: Planning config transitions...")
	observations := make([]planner.PoolObservation, 0, len(metricsByPair))
	for _, p := range pools {
		metrics, ok := metricsByPair[p.Pair]
		if !ok {
			continue
		}
		track := h.trackingFor(p.Pair, p.ActivePreset)
		observations = append(observations, planner.PoolObservation{
			Pair:          p.Pair,
			CurrentPreset: p.ActivePreset,
			CyclesHeld:    track.cyclesHeld,
			LastScore:     track.lastScore,
			Metrics:       metrics,
		})
	}

	transitions, err := planner.PlanTransitions(observations, h.params.MinDwellCycles, h.params.ScoreDeadband)
	if err != nil {
		cycleLogger.Error().Err(err).Msg("Cycle aborted: Failed to plan transitions.")
		return
	}
	cycleLogger.Info().Int("planned", len(transitions)).Msg("Step 3: Transition planning complete.")

	// --- Step 4: Apply Transitions ---
	applied := 0
	transitioned := make(map[types.PairID]bool, len(transitions))
	for _, tr := range transitions {
		if err := h.ledger.SetActiveConfig(tr.Pair, tr.Config, tr.ToPreset); err != nil {
			cycleLogger.Error().Err(err).Str("pair", string(tr.Pair)).Msg("Failed to apply config transition")
			continue
		}
		h.tracking[tr.Pair] = &poolTracking{cyclesHeld: 0, lastScore: tr.Score}
		transitioned[tr.Pair] = true
		applied++

		cycleLogger.Info().
			Str("pair", string(tr.Pair)).
			Str("from", string(tr.FromPreset)).
			Str("to", string(tr.ToPreset)).
			Uint32("score", tr.Score).
			Msg("Config transition applied")
	}
	for pair := range metricsByPair {
		if !transitioned[pair] {
			h.tracking[pair].cyclesHeld++
		}
	}
	cycleLogger.Info().Int("applied", applied).Msg("Step 4: Transitions applied.")

	// --- Step 5: Persist Pool Snapshots ---
	cycleLogger.Info().Msg("Step 5: Persisting pool snapshots...")
	for _, p := range h.ledger.Pools() {
		score := 0
		if metrics, ok := metricsByPair[p.Pair]; ok {
			score = int(analyzer.CompositeScore(metrics))
		}
		snapshot := state.PoolSnapshot{
			CycleNumber:    cycleNumber,
			Timestamp:      time.Now(),
			Pair:           p.Pair,
			ReserveX:       p.ReserveX,
			ReserveY:       p.ReserveY,
			TotalShares:    p.TotalShares,
			ActivePreset:   p.ActivePreset,
			ActiveConfig:   p.ActiveConfig,
			CompositeScore: score,
		}
		if _, err := state.SavePoolSnapshot(snapshot); err != nil {
			cycleLogger.Error().Err(err).Str("pair", string(p.Pair)).Msg("Failed to save pool snapshot")
		}
	}

	cycleEndTime := time.Now()
	cycleLogger.Info().Str("cycleDuration", cycleEndTime.Sub(cycleStartTime).String()).Msg("Hydra Cycle Duration")

	cycleLogger.Info().Msg("--- Hydra Cycle Completed Successfully ---")
}

// trackingFor returns the hysteresis state for a pair. First-seen pools are
// seeded as if their active preset was applied long ago at the center of its
// score band, so a genuinely mismatched pool can transition on its first
// cycle while a well-placed one stays put.
func (h *Hydra) trackingFor(pair types.PairID, preset types.CurvePreset) *poolTracking {
	track, ok := h.tracking[pair]
	if !ok {
		track = &poolTracking{cyclesHeld: h.params.MinDwellCycles, lastScore: presetBaseline(preset)}
		h.tracking[pair] = track
	}
	return track
}

// presetBaseline is the center of a preset's composite-score band.
func presetBaseline(preset types.CurvePreset) uint32 {
	switch preset {
	case types.PresetStable:
		return analyzer.StableThreshold / 2
	case types.PresetVolatile:
		return (analyzer.StandardThreshold + 100) / 2
	default:
		return (analyzer.StableThreshold + analyzer.StandardThreshold) / 2
	}
}

// getCycleNumber increments and returns the persistent cycle counter from database
func (h *Hydra) getCycleNumber() int {
	cycleNumber, err := state.IncrementCycleNumber()
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to increment cycle number, using fallback")
		// Fallback to a simple counter if database fails
		return int(time.Now().Unix() % 1000000) // Use timestamp as fallback
	}
	return cycleNumber
}
