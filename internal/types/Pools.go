/*

This is a custom type for pools which contains the reserve state, share
accounting and active curve configuration for one trading pair. The ledger
in internal/pool is the only owner of PoolState; everything else receives
copies.

*/

package types

import (
	"time"

	"cosmossdk.io/math"
)

// PairID identifies a trading pair, e.g. "D4L/USDC".
type PairID string

// PoolState is the mutable per-pair ledger entry. ReserveX and ReserveY
// always move together under the ledger's per-pair write lock.
type PoolState struct {
	Pair         PairID      `json:"pair"`
	ReserveX     math.Int    `json:"reserve_x"`     // fixed-point, 10^18
	ReserveY     math.Int    `json:"reserve_y"`     // fixed-point, 10^18
	TotalShares  math.Int    `json:"total_shares"`  // fixed-point, 10^18
	ActiveConfig CurveConfig `json:"active_config"` // replaced wholesale, never mutated
	ActivePreset CurvePreset `json:"active_preset"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// SwapQuote is the result of quoting a swap against a reserve snapshot.
// The settlement layer must reject the quote if reserves changed since
// QuotedAt; staleness is the caller's responsibility.
type SwapQuote struct {
	QuoteID        string    `json:"quote_id"`
	Pair           PairID    `json:"pair"`
	TokenIn        string    `json:"token_in"` // "x" or "y"
	AmountIn       math.Int  `json:"amount_in"`
	AmountOut      math.Int  `json:"amount_out"` // net of fee
	FeeAmount      math.Int  `json:"fee_amount"`
	PriceImpactBps math.Int  `json:"price_impact_bps"`
	QuotedAt       time.Time `json:"quoted_at"`
}

// DepthPoint is one rung of a liquidity depth ladder: the quoted output and
// impact for a given input size against current reserves.
type DepthPoint struct {
	AmountIn       math.Int `json:"amount_in"`
	AmountOut      math.Int `json:"amount_out"`
	PriceImpactBps math.Int `json:"price_impact_bps"`
}
