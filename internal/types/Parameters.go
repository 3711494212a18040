/*

This file defines the tunable engine parameters. They are persisted in the
database as a versioned record with an active flag (see internal/state) and
loaded once at startup; a parameter set is applied atomically, never edited
in place.

*/

package types

import (
	"cosmossdk.io/math"
)

// EngineParameters collects the global safety bounds and policy knobs of
// the pricing engine and its surrounding service.
type EngineParameters struct {
	// ExpTaylorTerms is the number of Taylor terms used by the bounded
	// exponential. Valid range [3, 6]; fewer terms is a deliberate
	// precision degradation under cost pressure.
	ExpTaylorTerms int `json:"exp_taylor_terms"`

	// SwapFeeBps is the flat fee applied by the pool ledger on quoted
	// swap output, in basis points (30 = 0.3%).
	SwapFeeBps uint32 `json:"swap_fee_bps"`

	// MaxPriceRatio is the sanctioned price-ratio envelope. Any price at
	// or above this bound aborts the pricing call.
	MaxPriceRatio math.Int `json:"max_price_ratio"`

	// MinLiquidity is the minimum viable pool size; pools whose geometric
	// mean liquidity falls below it cannot be priced.
	MinLiquidity math.Int `json:"min_liquidity"`

	// MinDwellCycles is the number of orchestrator cycles a pool must keep
	// its active preset before the planner will consider replacing it.
	MinDwellCycles int `json:"min_dwell_cycles"`

	// ScoreDeadband is the distance (in composite score points, 0-100) a
	// pool's score must sit beyond a preset threshold before the planner
	// schedules a transition. Damps config flapping at boundaries.
	ScoreDeadband uint32 `json:"score_deadband"`
}
