/*

This file contains the default engine parameters and the bootstrap pool set.

These parameters govern live pricing for every pool, so each value was
chosen for safety first: the bounds reject degenerate pools and absurd
ratios outright instead of producing a number that merely looks plausible.

*/

package config

import (
	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// DefaultEngineParameters provides the baseline engine parameters. These
// values are used if no active parameters are found in the database during
// initialization.
var DefaultEngineParameters = types.EngineParameters{
	ExpTaylorTerms: 6, // Maximum supported Taylor depth.
	// Rationale: six terms hold the exp approximation error well under one
	// basis point across the clamped input domain; fewer terms only make
	// sense on gas-constrained paths, which this service does not have.

	SwapFeeBps: 30, // 0.30% flat swap fee.
	// Rationale: the classic pair-pool fee tier. Low enough not to distort
	// the price-impact signal, high enough to make quote spam unprofitable.

	MaxPriceRatio: sdkmath.NewIntWithDecimal(1, 24), // Ratio envelope of 1e6.
	// Rationale: a million-to-one reserve imbalance is a broken pool, not a
	// market. Rejecting it early keeps the curve components in the domain
	// where their fixed-point error bounds were validated.

	MinLiquidity: sdkmath.NewInt(1_000), // Minimum viable pool size.
	// Rationale: below this the geometric mean is dominated by integer
	// truncation and share accounting degenerates.

	MinDwellCycles: 3, // Hold a new config for at least 3 cycles.
	ScoreDeadband:  5, // Ignore score drift of 5 points or less.
	// Rationale: together these stop preset flapping when a pair sits near
	// a band boundary; telemetry noise moves the composite score by a few
	// points cycle to cycle.
}

// BootstrapPool describes one pool seeded at startup when the ledger is
// empty.
type BootstrapPool struct {
	Pair     types.PairID
	ReserveX sdkmath.Int
	ReserveY sdkmath.Int
	Preset   types.CurvePreset
}

// BootstrapPools is the development seed set. Production deployments are
// expected to restore pools from snapshots instead.
var BootstrapPools = []BootstrapPool{
	{
		Pair:     "D4L/USDC",
		ReserveX: sdkmath.NewIntWithDecimal(1_000_000, 18),
		ReserveY: sdkmath.NewIntWithDecimal(1_000_000, 18),
		Preset:   types.PresetStandard,
	},
	{
		Pair:     "HYDRA/USDC",
		ReserveX: sdkmath.NewIntWithDecimal(500_000, 18),
		ReserveY: sdkmath.NewIntWithDecimal(750_000, 18),
		Preset:   types.PresetVolatile,
	},
}
