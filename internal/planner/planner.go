package planner

import (
	"errors"
	"fmt"
	"sort"

	"github.com/theaxiomverse/hydra/internal/analyzer"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/types"
)

// Error definitions for zero-tolerance error handling
var (
	ErrInvalidObservation = errors.New("pool observation contains invalid values")
	ErrInvalidHysteresis  = errors.New("hysteresis parameters are invalid")
)

// PoolObservation is one pool's state as seen at the start of a cycle:
// its active preset, how long it has held it, and the score that put it
// there, plus the fresh telemetry for this cycle.
type PoolObservation struct {
	Pair          types.PairID
	CurrentPreset types.CurvePreset
	CyclesHeld    int
	LastScore     uint32
	Metrics       types.MarketMetrics
}

// ConfigTransition is one planned wholesale config replacement.
type ConfigTransition struct {
	Pair       types.PairID
	FromPreset types.CurvePreset
	ToPreset   types.CurvePreset
	Config     types.CurveConfig
	Score      uint32
}

// PlanTransitions decides which pools change curve config this cycle. The
// adaptive selector proposes a preset per pool; a transition is planned only
// when the proposal differs from the active preset, the pool has dwelled at
// least minDwellCycles on its current config, and the composite score has
// moved by more than scoreDeadband since the config was applied. The
// hysteresis keeps pools from flapping between presets on telemetry noise.
func PlanTransitions(observations []PoolObservation, minDwellCycles int, scoreDeadband uint32) ([]ConfigTransition, error) {
	planLogger := logger.GetForComponent("transition_planner")

	if minDwellCycles < 0 {
		return nil, fmt.Errorf("%w: negative dwell cycles %d", ErrInvalidHysteresis, minDwellCycles)
	}
	if scoreDeadband > 100 {
		return nil, fmt.Errorf("%w: score deadband %d exceeds the score range", ErrInvalidHysteresis, scoreDeadband)
	}

	var transitions []ConfigTransition
	for _, obs := range observations {
		if obs.Pair == "" {
			return nil, fmt.Errorf("%w: empty pair id", ErrInvalidObservation)
		}
		if obs.CyclesHeld < 0 {
			return nil, fmt.Errorf("%w: negative cycles held for %s", ErrInvalidObservation, obs.Pair)
		}
		if obs.LastScore > 100 {
			return nil, fmt.Errorf("%w: last score %d out of range for %s", ErrInvalidObservation, obs.LastScore, obs.Pair)
		}

		score := analyzer.CompositeScore(obs.Metrics)
		cfg, proposed := analyzer.SelectCurveConfig(obs.Metrics)

		if proposed == obs.CurrentPreset {
			continue
		}

		if obs.CyclesHeld < minDwellCycles {
			planLogger.Debug().
				Str("pair", string(obs.Pair)).
				Str("proposed", string(proposed)).
				Int("cyclesHeld", obs.CyclesHeld).
				Int("minDwellCycles", minDwellCycles).
				Msg("Transition suppressed: dwell time not reached")
			continue
		}

		if scoreDelta(score, obs.LastScore) <= scoreDeadband {
			planLogger.Debug().
				Str("pair", string(obs.Pair)).
				Str("proposed", string(proposed)).
				Uint32("score", score).
				Uint32("lastScore", obs.LastScore).
				Uint32("deadband", scoreDeadband).
				Msg("Transition suppressed: score within deadband")
			continue
		}

		transitions = append(transitions, ConfigTransition{
			Pair:       obs.Pair,
			FromPreset: obs.CurrentPreset,
			ToPreset:   proposed,
			Config:     cfg,
			Score:      score,
		})

		planLogger.Info().
			Str("pair", string(obs.Pair)).
			Str("from", string(obs.CurrentPreset)).
			Str("to", string(proposed)).
			Uint32("score", score).
			Msg("Config transition planned")
	}

	sort.Slice(transitions, func(i, j int) bool { return transitions[i].Pair < transitions[j].Pair })

	planLogger.Info().
		Int("observed", len(observations)).
		Int("planned", len(transitions)).
		Msg("Transition planning complete")
	return transitions, nil
}

func scoreDelta(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}
