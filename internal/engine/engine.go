/*

This file contains the blended liquidity engine: the three curve components
are combined under the active configuration's weights into a single factor
that scales a raw price ratio (CalculatePrice) or throttles a geometric-mean
liquidity baseline (CalculateLiquidity). QuoteTrade integrates the price
over a supply interval to estimate swap output and slippage.

Every entry point validates its inputs and its configuration before any
math runs; a failure aborts the whole call with no partial result.

*/

package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/types"
)

const bpsScale = 10_000

// Engine evaluates the Hydra blend under fixed global safety bounds.
// Engines are immutable after construction and safe for concurrent use.
type Engine struct {
	logger        zerolog.Logger
	eval          curve.Evaluator
	maxPriceRatio sdkmath.Int
	minLiquidity  sdkmath.Int
}

// New builds an Engine from validated parameters.
func New(params types.EngineParameters) (*Engine, error) {
	eval, err := curve.NewEvaluator(params.ExpTaylorTerms)
	if err != nil {
		return nil, err
	}
	if params.MaxPriceRatio.IsNil() || !params.MaxPriceRatio.IsPositive() {
		return nil, fmt.Errorf("%w: max price ratio must be positive", types.ErrInvalidInput)
	}
	if params.MinLiquidity.IsNil() || params.MinLiquidity.IsNegative() {
		return nil, fmt.Errorf("%w: min liquidity cannot be negative", types.ErrInvalidInput)
	}

	return &Engine{
		logger:        logger.GetForComponent("liquidity_engine"),
		eval:          eval,
		maxPriceRatio: params.MaxPriceRatio,
		minLiquidity:  params.MinLiquidity,
	}, nil
}

// MaxPriceRatio returns the sanctioned price-ratio envelope.
func (e *Engine) MaxPriceRatio() sdkmath.Int { return e.maxPriceRatio }

// MinLiquidity returns the minimum viable pool size.
func (e *Engine) MinLiquidity() sdkmath.Int { return e.minLiquidity }

// CalculatePrice prices reserveX against reserveY under cfg: the raw ratio
// x/y scaled by the blended factor evaluated at the ratio's deviation from
// parity. A balanced pool therefore prices at exactly the raw ratio.
func (e *Engine) CalculatePrice(reserveX, reserveY sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, error) {
	if err := requirePositive(reserveX, reserveY); err != nil {
		return sdkmath.Int{}, err
	}
	if err := curve.Validate(cfg); err != nil {
		return sdkmath.Int{}, err
	}

	priceRatio, err := fixedmath.MulDiv(reserveX, fixedmath.Precision, reserveY)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if priceRatio.GTE(e.maxPriceRatio) {
		return sdkmath.Int{}, fmt.Errorf("%w: price ratio %s exceeds %s",
			types.ErrPriceOutOfBounds, priceRatio, e.maxPriceRatio)
	}

	combined, err := e.combinedFactor(parityDeviation(priceRatio), cfg)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedmath.MulDiv(priceRatio, combined, fixedmath.Precision)
}

// CalculateLiquidity reports the effective liquidity of a pool given how
// far the current price sits from the target price. The blend can only
// throttle liquidity below the geometric-mean baseline sqrt(x*y), never
// amplify it.
func (e *Engine) CalculateLiquidity(reserveX, reserveY, currentPrice, targetPrice sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, error) {
	if err := requirePositive(reserveX, reserveY, currentPrice, targetPrice); err != nil {
		return sdkmath.Int{}, err
	}
	if currentPrice.GTE(e.maxPriceRatio) || targetPrice.GTE(e.maxPriceRatio) {
		return sdkmath.Int{}, fmt.Errorf("%w: price exceeds %s", types.ErrPriceOutOfBounds, e.maxPriceRatio)
	}
	if err := curve.Validate(cfg); err != nil {
		return sdkmath.Int{}, err
	}

	product, err := fixedmath.CheckedMul(reserveX, reserveY)
	if err != nil {
		return sdkmath.Int{}, err
	}
	baseLiquidity, err := fixedmath.Sqrt(product)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if baseLiquidity.LT(e.minLiquidity) {
		return sdkmath.Int{}, fmt.Errorf("%w: base liquidity %s below minimum %s",
			types.ErrInsufficientLiquidity, baseLiquidity, e.minLiquidity)
	}

	priceRatio, err := fixedmath.MulDiv(currentPrice, fixedmath.Precision, targetPrice)
	if err != nil {
		return sdkmath.Int{}, err
	}

	combined, err := e.combinedFactor(parityDeviation(priceRatio), cfg)
	if err != nil {
		return sdkmath.Int{}, err
	}

	throttled, err := fixedmath.MulDiv(baseLiquidity, combined, fixedmath.Precision)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return sdkmath.MinInt(baseLiquidity, throttled), nil
}

// QuoteTrade estimates the output of adding deltaS to supply by averaging
// the engine price at both endpoints of the interval (trapezoid rule) and
// reports slippage as the deviation of that average from the initial price,
// in basis points. A zero-size trade quotes to (0, 0).
func (e *Engine) QuoteTrade(supply, deltaS sdkmath.Int, cfg types.CurveConfig) (expected sdkmath.Int, priceImpactBps sdkmath.Int, err error) {
	if supply.IsNil() || deltaS.IsNil() || deltaS.IsNegative() {
		return sdkmath.Int{}, sdkmath.Int{}, types.ErrInvalidInput
	}
	if deltaS.IsZero() {
		if err := curve.Validate(cfg); err != nil {
			return sdkmath.Int{}, sdkmath.Int{}, err
		}
		return sdkmath.ZeroInt(), sdkmath.ZeroInt(), nil
	}
	if !supply.IsPositive() {
		return sdkmath.Int{}, sdkmath.Int{}, fmt.Errorf("%w: zero supply", types.ErrInvalidInput)
	}

	initialPrice, err := e.CalculatePrice(supply, supply, cfg)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	if initialPrice.IsZero() {
		// Degenerate initial price would poison the slippage divisor.
		return sdkmath.Int{}, sdkmath.Int{}, fmt.Errorf("%w: zero initial price", types.ErrInvalidInput)
	}

	endSupply, err := fixedmath.CheckedAdd(supply, deltaS)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	finalPrice, err := e.CalculatePrice(endSupply, supply, cfg)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}

	sum, err := fixedmath.CheckedAdd(initialPrice, finalPrice)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	avgPrice := sum.QuoRaw(2)

	expected, err = fixedmath.MulDiv(deltaS, avgPrice, fixedmath.Precision)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}

	deviation := avgPrice.Sub(initialPrice).Abs()
	priceImpactBps, err = fixedmath.MulDiv(deviation, sdkmath.NewInt(bpsScale), initialPrice)
	if err != nil {
		return sdkmath.Int{}, sdkmath.Int{}, err
	}
	return expected, priceImpactBps, nil
}

// combinedFactor evaluates the three components at the parity deviation and
// folds them under the config weights: sum(component_i * weight_i) / P.
func (e *Engine) combinedFactor(delta sdkmath.Int, cfg types.CurveConfig) (sdkmath.Int, error) {
	sig, err := e.eval.Sigmoid(delta, cfg.SigmoidSteepness)
	if err != nil {
		return sdkmath.Int{}, err
	}
	gau, err := e.eval.Gaussian(delta, cfg.GaussianWidth)
	if err != nil {
		return sdkmath.Int{}, err
	}
	rat, err := e.eval.Rational(delta, cfg.RationalPower)
	if err != nil {
		return sdkmath.Int{}, err
	}

	combined := sdkmath.ZeroInt()
	for _, part := range []struct {
		value  sdkmath.Int
		weight sdkmath.Int
	}{
		{sig, cfg.SigmoidWeight},
		{gau, cfg.GaussianWeight},
		{rat, cfg.RationalWeight},
	} {
		weighted, err := fixedmath.MulDiv(part.value, part.weight, fixedmath.Precision)
		if err != nil {
			return sdkmath.Int{}, err
		}
		combined, err = fixedmath.CheckedAdd(combined, weighted)
		if err != nil {
			return sdkmath.Int{}, err
		}
	}
	return combined, nil
}

// parityDeviation returns |ratio - PRECISION|: how far a price ratio sits
// from 1.0.
func parityDeviation(ratio sdkmath.Int) sdkmath.Int {
	return ratio.Sub(fixedmath.Precision).Abs()
}

func requirePositive(values ...sdkmath.Int) error {
	for _, v := range values {
		if v.IsNil() || !v.IsPositive() {
			return fmt.Errorf("%w: zero or negative argument", types.ErrInvalidInput)
		}
	}
	return nil
}
