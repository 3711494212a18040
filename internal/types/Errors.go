/*

This file defines the error taxonomy shared by the pricing engine and the
pool ledger. Every failure surfaces as (or wraps) one of these sentinels so
callers can match with errors.Is regardless of which layer detected it.

*/

package types

import "errors"

var (
	// ErrInvalidInput indicates a zero or degenerate argument (zero reserve,
	// zero price, nil amount) reached a pricing call.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidConfig indicates a curve configuration failed validation.
	// The engine refuses to compute against an unvalidated config.
	ErrInvalidConfig = errors.New("invalid curve configuration")

	// ErrPriceOutOfBounds indicates a price exceeded the sanctioned
	// price-ratio envelope (MaxPriceRatio).
	ErrPriceOutOfBounds = errors.New("price out of bounds")

	// ErrMathOverflow indicates a guarded fixed-point operation would have
	// exceeded the 256-bit range. The whole pricing call aborts.
	ErrMathOverflow = errors.New("fixed-point overflow")

	// ErrInsufficientLiquidity indicates a pool is below the minimum viable
	// liquidity floor, or a swap would drain more than a reserve holds.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrPoolNotFound indicates the requested trading pair has not been
	// initialized in the ledger.
	ErrPoolNotFound = errors.New("pool not found")
)
