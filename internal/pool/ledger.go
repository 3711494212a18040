/*

This file contains the pool ledger: the only stateful component of the
system. It owns one PoolState per trading pair and performs no curve math
itself; quoting delegates to the pricing engine and the ledger only shapes
inputs and outputs, applies the flat swap fee, and keeps the two reserves
moving atomically under a per-pair write lock.

Quotes are computed against a reserve snapshot under a read lock; rejecting
a quote whose reserves have since moved is the settlement layer's job.

*/

package pool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/types"
)

const (
	// TokenX and TokenY name the two sides of a pair in swap requests.
	TokenX = "x"
	TokenY = "y"

	bpsScale = 10_000
)

// PricingEngine is the pure pricing surface the ledger quotes against.
type PricingEngine interface {
	CalculatePrice(reserveX, reserveY sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, error)
	CalculateLiquidity(reserveX, reserveY, currentPrice, targetPrice sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, error)
	QuoteTrade(supply, deltaS sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, sdkmath.Int, error)
	MinLiquidity() sdkmath.Int
}

// Ledger maintains per-pair reserve state. Reads for quoting may run
// concurrently; every reserve mutation serializes on the pair's lock.
type Ledger struct {
	logger zerolog.Logger
	engine PricingEngine
	feeBps uint32

	mu    sync.RWMutex // guards the pools map itself
	pools map[types.PairID]*poolEntry
}

type poolEntry struct {
	mu    sync.RWMutex
	state types.PoolState
}

// NewLedger creates an empty ledger quoting against engine with a flat fee
// in basis points.
func NewLedger(engine PricingEngine, feeBps uint32) (*Ledger, error) {
	if engine == nil {
		return nil, fmt.Errorf("%w: nil pricing engine", types.ErrInvalidInput)
	}
	if feeBps >= bpsScale {
		return nil, fmt.Errorf("%w: fee %d bps would consume the whole output", types.ErrInvalidInput, feeBps)
	}
	return &Ledger{
		logger: logger.GetForComponent("pool_ledger"),
		engine: engine,
		feeBps: feeBps,
		pools:  make(map[types.PairID]*poolEntry),
	}, nil
}

// InitPool creates the ledger entry for a new trading pair. Initial shares
// are the geometric mean of the seeded reserves, which must clear the
// engine's minimum liquidity floor.
func (l *Ledger) InitPool(pair types.PairID, reserveX, reserveY sdkmath.Int, cfg types.CurveConfig, preset types.CurvePreset) (types.PoolState, error) {
	if pair == "" {
		return types.PoolState{}, fmt.Errorf("%w: empty pair id", types.ErrInvalidInput)
	}
	if reserveX.IsNil() || reserveY.IsNil() || !reserveX.IsPositive() || !reserveY.IsPositive() {
		return types.PoolState{}, fmt.Errorf("%w: reserves must be positive", types.ErrInvalidInput)
	}
	if err := curve.Validate(cfg); err != nil {
		return types.PoolState{}, err
	}

	product, err := fixedmath.CheckedMul(reserveX, reserveY)
	if err != nil {
		return types.PoolState{}, err
	}
	shares, err := fixedmath.Sqrt(product)
	if err != nil {
		return types.PoolState{}, err
	}
	if shares.LT(l.engine.MinLiquidity()) {
		return types.PoolState{}, fmt.Errorf("%w: initial liquidity %s below minimum %s",
			types.ErrInsufficientLiquidity, shares, l.engine.MinLiquidity())
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.pools[pair]; exists {
		return types.PoolState{}, fmt.Errorf("%w: pair %s already initialized", types.ErrInvalidInput, pair)
	}

	state := types.PoolState{
		Pair:         pair,
		ReserveX:     reserveX,
		ReserveY:     reserveY,
		TotalShares:  shares,
		ActiveConfig: cfg,
		ActivePreset: preset,
		UpdatedAt:    time.Now().UTC(),
	}
	l.pools[pair] = &poolEntry{state: state}

	l.logger.Info().
		Str("pair", string(pair)).
		Str("reserveX", reserveX.String()).
		Str("reserveY", reserveY.String()).
		Str("shares", shares.String()).
		Str("preset", string(preset)).
		Msg("Pool initialized")
	return state, nil
}

// Pool returns a copy of the pair's current state.
func (l *Ledger) Pool(pair types.PairID) (types.PoolState, error) {
	entry, err := l.entry(pair)
	if err != nil {
		return types.PoolState{}, err
	}
	entry.mu.RLock()
	defer entry.mu.RUnlock()
	return entry.state, nil
}

// Pools returns copies of all pool states, sorted by pair for stable
// iteration.
func (l *Ledger) Pools() []types.PoolState {
	l.mu.RLock()
	entries := make([]*poolEntry, 0, len(l.pools))
	for _, e := range l.pools {
		entries = append(entries, e)
	}
	l.mu.RUnlock()

	states := make([]types.PoolState, 0, len(entries))
	for _, e := range entries {
		e.mu.RLock()
		states = append(states, e.state)
		e.mu.RUnlock()
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Pair < states[j].Pair })
	return states
}

// SetActiveConfig replaces a pair's curve configuration wholesale. Partial
// updates are not representable.
func (l *Ledger) SetActiveConfig(pair types.PairID, cfg types.CurveConfig, preset types.CurvePreset) error {
	if err := curve.Validate(cfg); err != nil {
		return err
	}
	entry, err := l.entry(pair)
	if err != nil {
		return err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.state.ActiveConfig = cfg
	entry.state.ActivePreset = preset
	entry.state.UpdatedAt = time.Now().UTC()

	l.logger.Info().
		Str("pair", string(pair)).
		Str("preset", string(preset)).
		Msg("Active curve config replaced")
	return nil
}

// QuoteSwap quotes amountIn of tokenIn against the pair's current reserves
// and active config, then applies the flat fee to the gross output. The
// reserve snapshot is consistent under the pair's read lock.
func (l *Ledger) QuoteSwap(pair types.PairID, tokenIn string, amountIn sdkmath.Int) (types.SwapQuote, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return types.SwapQuote{}, fmt.Errorf("%w: swap amount must be positive", types.ErrInvalidInput)
	}
	entry, err := l.entry(pair)
	if err != nil {
		return types.SwapQuote{}, err
	}

	entry.mu.RLock()
	state := entry.state
	entry.mu.RUnlock()

	var supply, reserveOut sdkmath.Int
	switch tokenIn {
	case TokenX:
		supply, reserveOut = state.ReserveX, state.ReserveY
	case TokenY:
		supply, reserveOut = state.ReserveY, state.ReserveX
	default:
		return types.SwapQuote{}, fmt.Errorf("%w: token side %q", types.ErrInvalidInput, tokenIn)
	}

	gross, impactBps, err := l.engine.QuoteTrade(supply, amountIn, state.ActiveConfig)
	if err != nil {
		return types.SwapQuote{}, err
	}

	fee := gross.MulRaw(int64(l.feeBps)).QuoRaw(bpsScale)
	net := gross.Sub(fee)
	if net.GTE(reserveOut) {
		return types.SwapQuote{}, fmt.Errorf("%w: quoted output %s would drain reserve %s",
			types.ErrInsufficientLiquidity, net, reserveOut)
	}

	quote := types.SwapQuote{
		QuoteID:        uuid.New().String(),
		Pair:           pair,
		TokenIn:        tokenIn,
		AmountIn:       amountIn,
		AmountOut:      net,
		FeeAmount:      fee,
		PriceImpactBps: impactBps,
		QuotedAt:       time.Now().UTC(),
	}

	l.logger.Debug().
		Str("pair", string(pair)).
		Str("quoteID", quote.QuoteID).
		Str("amountIn", amountIn.String()).
		Str("amountOut", net.String()).
		Msg("Swap quoted")
	return quote, nil
}

// SettleSwap applies a settled swap to the reserves: the in-side grows by
// amountIn, the out-side shrinks by amountOut, both under one write lock
// so the reserves can never be observed half-moved.
func (l *Ledger) SettleSwap(pair types.PairID, tokenIn string, amountIn, amountOut sdkmath.Int) (types.PoolState, error) {
	if amountIn.IsNil() || amountOut.IsNil() || !amountIn.IsPositive() || !amountOut.IsPositive() {
		return types.PoolState{}, fmt.Errorf("%w: settlement amounts must be positive", types.ErrInvalidInput)
	}
	if tokenIn != TokenX && tokenIn != TokenY {
		return types.PoolState{}, fmt.Errorf("%w: token side %q", types.ErrInvalidInput, tokenIn)
	}
	entry, err := l.entry(pair)
	if err != nil {
		return types.PoolState{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	newX, newY := entry.state.ReserveX, entry.state.ReserveY
	if tokenIn == TokenX {
		newX = newX.Add(amountIn)
		newY = newY.Sub(amountOut)
	} else {
		newY = newY.Add(amountIn)
		newX = newX.Sub(amountOut)
	}
	if !newX.IsPositive() || !newY.IsPositive() {
		return types.PoolState{}, fmt.Errorf("%w: settlement would drain a reserve", types.ErrInsufficientLiquidity)
	}

	entry.state.ReserveX = newX
	entry.state.ReserveY = newY
	entry.state.UpdatedAt = time.Now().UTC()

	l.logger.Info().
		Str("pair", string(pair)).
		Str("tokenIn", tokenIn).
		Str("amountIn", amountIn.String()).
		Str("amountOut", amountOut.String()).
		Msg("Swap settled")
	return entry.state, nil
}

// Deposit adds liquidity in both tokens and mints shares in proportion to
// the smaller of the two contribution ratios (any excess on the other side
// is the depositor's cost, as in a classic pair pool).
func (l *Ledger) Deposit(pair types.PairID, amountX, amountY sdkmath.Int) (sdkmath.Int, error) {
	if amountX.IsNil() || amountY.IsNil() || !amountX.IsPositive() || !amountY.IsPositive() {
		return sdkmath.Int{}, fmt.Errorf("%w: deposit amounts must be positive", types.ErrInvalidInput)
	}
	entry, err := l.entry(pair)
	if err != nil {
		return sdkmath.Int{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	ratioX, err := fixedmath.MulDiv(amountX, fixedmath.Precision, entry.state.ReserveX)
	if err != nil {
		return sdkmath.Int{}, err
	}
	ratioY, err := fixedmath.MulDiv(amountY, fixedmath.Precision, entry.state.ReserveY)
	if err != nil {
		return sdkmath.Int{}, err
	}

	minted, err := fixedmath.MulDiv(entry.state.TotalShares, sdkmath.MinInt(ratioX, ratioY), fixedmath.Precision)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if minted.IsZero() {
		return sdkmath.Int{}, fmt.Errorf("%w: deposit too small to mint shares", types.ErrInvalidInput)
	}

	entry.state.ReserveX = entry.state.ReserveX.Add(amountX)
	entry.state.ReserveY = entry.state.ReserveY.Add(amountY)
	entry.state.TotalShares = entry.state.TotalShares.Add(minted)
	entry.state.UpdatedAt = time.Now().UTC()
	return minted, nil
}

// Withdraw burns shares and releases the proportional slice of both
// reserves atomically.
func (l *Ledger) Withdraw(pair types.PairID, shares sdkmath.Int) (amountX, amountY sdkmath.Int, err error) {
	if shares.IsNil() || !shares.IsPositive() {
		return sdkmath.Int{}, sdkmath.Int{}, fmt.Errorf("%w: share amount must be positive", types.ErrInvalidInput)
	}
	entry, err := l.entry(pair)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if shares.GTE(entry.state.TotalShares) {
		return sdkmath.Int{}, sdkmath.Int{}, fmt.Errorf("%w: cannot burn %s of %s total shares",
			types.ErrInsufficientLiquidity, shares, entry.state.TotalShares)
	}

	amountX, err = fixedmath.MulDiv(entry.state.ReserveX, shares, entry.state.TotalShares)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	amountY, err = fixedmath.MulDiv(entry.state.ReserveY, shares, entry.state.TotalShares)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}

	entry.state.ReserveX = entry.state.ReserveX.Sub(amountX)
	entry.state.ReserveY = entry.state.ReserveY.Sub(amountY)
	entry.state.TotalShares = entry.state.TotalShares.Sub(shares)
	entry.state.UpdatedAt = time.Now().UTC()
	return amountX, amountY, nil
}

// SharePrice is the deposit price of one share: the engine's effective
// liquidity at parity divided by outstanding shares.
func (l *Ledger) SharePrice(pair types.PairID) (sdkmath.Int, error) {
	entry, err := l.entry(pair)
	if err != nil {
		return sdkmath.Int{}, err
	}

	entry.mu.RLock()
	state := entry.state
	entry.mu.RUnlock()

	liquidity, err := l.engine.CalculateLiquidity(
		state.ReserveX, state.ReserveY,
		fixedmath.Precision, fixedmath.Precision,
		state.ActiveConfig,
	)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedmath.MulDiv(liquidity, fixedmath.Precision, state.TotalShares)
}

func (l *Ledger) entry(pair types.PairID) (*poolEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	entry, ok := l.pools[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrPoolNotFound, pair)
	}
	return entry, nil
}
