package engine

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/types"
)

func testParams() types.EngineParameters {
	return types.EngineParameters{
		ExpTaylorTerms: 6,
		SwapFeeBps:     30,
		MaxPriceRatio:  sdkmath.NewIntWithDecimal(1, 24), // ratio of 1e6
		MinLiquidity:   sdkmath.NewInt(1_000),
		MinDwellCycles: 3,
		ScoreDeadband:  5,
	}
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(testParams())
	require.NoError(t, err)
	return e
}

func TestNewRejectsBadParameters(t *testing.T) {
	p := testParams()
	p.ExpTaylorTerms = 9
	_, err := New(p)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	p = testParams()
	p.MaxPriceRatio = sdkmath.ZeroInt()
	_, err = New(p)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestCalculatePriceBalancedPool(t *testing.T) {
	e := newEngine(t)
	r := sdkmath.NewIntWithDecimal(1000, 18)

	price, err := e.CalculatePrice(r, r, curve.Standard())
	require.NoError(t, err)

	// Symmetric reserves sit at parity; the blend leaves the raw ratio
	// untouched, so the price is exactly 1.0.
	assert.Equal(t, fixedmath.Precision, price)
}

func TestCalculatePriceSkewedPoolIsDamped(t *testing.T) {
	e := newEngine(t)
	x := sdkmath.NewIntWithDecimal(1100, 18)
	y := sdkmath.NewIntWithDecimal(1000, 18)

	price, err := e.CalculatePrice(x, y, curve.Standard())
	require.NoError(t, err)

	rawRatio := sdkmath.NewIntWithDecimal(11, 17) // 1.1
	assert.True(t, price.IsPositive())
	assert.True(t, price.LT(rawRatio), "blend must damp the raw ratio off parity, got %s", price)
}

func TestCalculatePriceRejections(t *testing.T) {
	e := newEngine(t)
	r := sdkmath.NewIntWithDecimal(1000, 18)

	_, err := e.CalculatePrice(sdkmath.ZeroInt(), r, curve.Standard())
	require.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = e.CalculatePrice(r, sdkmath.ZeroInt(), curve.Standard())
	require.ErrorIs(t, err, types.ErrInvalidInput)

	bad := curve.Standard()
	bad.SigmoidWeight = bad.SigmoidWeight.AddRaw(1)
	_, err = e.CalculatePrice(r, r, bad)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	// Ratio envelope: 1e7 : 1 exceeds the 1e6 bound.
	huge := sdkmath.NewIntWithDecimal(10_000_000, 18)
	one := sdkmath.NewIntWithDecimal(1, 18)
	_, err = e.CalculatePrice(huge, one, curve.Standard())
	require.ErrorIs(t, err, types.ErrPriceOutOfBounds)
}

func TestCalculateLiquidityNeverAmplified(t *testing.T) {
	e := newEngine(t)
	x := sdkmath.NewIntWithDecimal(1000, 18)
	y := sdkmath.NewIntWithDecimal(4000, 18)
	price := fixedmath.Precision

	base, err := fixedmath.Sqrt(x.Mul(y))
	require.NoError(t, err)

	for _, cfg := range []types.CurveConfig{curve.Stable(), curve.Standard(), curve.Volatile()} {
		liq, err := e.CalculateLiquidity(x, y, price, price, cfg)
		require.NoError(t, err)
		assert.True(t, liq.LTE(base), "liquidity %s must not exceed baseline %s", liq, base)
		// Zero price delta: the blend passes the baseline through intact.
		assert.Equal(t, base, liq)
	}
}

func TestCalculateLiquidityThrottledOffTarget(t *testing.T) {
	e := newEngine(t)
	x := sdkmath.NewIntWithDecimal(1000, 18)
	y := sdkmath.NewIntWithDecimal(1000, 18)

	base, err := fixedmath.Sqrt(x.Mul(y))
	require.NoError(t, err)

	current := sdkmath.NewIntWithDecimal(15, 17) // 1.5
	target := fixedmath.Precision

	liq, err := e.CalculateLiquidity(x, y, current, target, curve.Standard())
	require.NoError(t, err)
	assert.True(t, liq.LT(base), "off-target price must throttle liquidity, got %s vs base %s", liq, base)
	assert.True(t, liq.IsPositive())
}

func TestCalculateLiquidityRejections(t *testing.T) {
	e := newEngine(t)
	r := sdkmath.NewIntWithDecimal(1000, 18)
	p := fixedmath.Precision

	_, err := e.CalculateLiquidity(sdkmath.ZeroInt(), r, p, p, curve.Standard())
	require.ErrorIs(t, err, types.ErrInvalidInput)

	_, err = e.CalculateLiquidity(r, r, sdkmath.ZeroInt(), p, curve.Standard())
	require.ErrorIs(t, err, types.ErrInvalidInput)

	over := sdkmath.NewIntWithDecimal(2, 24)
	_, err = e.CalculateLiquidity(r, r, over, p, curve.Standard())
	require.ErrorIs(t, err, types.ErrPriceOutOfBounds)

	bad := curve.Standard()
	bad.RationalWeight = bad.RationalWeight.SubRaw(1)
	_, err = e.CalculateLiquidity(r, r, p, p, bad)
	require.ErrorIs(t, err, types.ErrInvalidConfig)

	// 100 x 100 raw units: sqrt is 100, below the 1000 floor.
	tiny := sdkmath.NewInt(100)
	_, err = e.CalculateLiquidity(tiny, tiny, p, p, curve.Standard())
	require.ErrorIs(t, err, types.ErrInsufficientLiquidity)
}

func TestQuoteTradeZeroSize(t *testing.T) {
	e := newEngine(t)
	supply := sdkmath.NewIntWithDecimal(1000, 18)

	expected, impact, err := e.QuoteTrade(supply, sdkmath.ZeroInt(), curve.Standard())
	require.NoError(t, err)
	assert.True(t, expected.IsZero())
	assert.True(t, impact.IsZero())
}

func TestQuoteTradeRejectsZeroSupply(t *testing.T) {
	e := newEngine(t)
	_, _, err := e.QuoteTrade(sdkmath.ZeroInt(), sdkmath.NewIntWithDecimal(1, 18), curve.Standard())
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestQuoteTradeDeterministic(t *testing.T) {
	e := newEngine(t)
	supply := sdkmath.NewIntWithDecimal(1000, 18)
	deltaS := sdkmath.NewIntWithDecimal(50, 18)

	firstOut, firstImpact, err := e.QuoteTrade(supply, deltaS, curve.Standard())
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		out, impact, err := e.QuoteTrade(supply, deltaS, curve.Standard())
		require.NoError(t, err)
		assert.Equal(t, firstOut, out)
		assert.Equal(t, firstImpact, impact)
	}
}

func TestQuoteTradeExpectedAmount(t *testing.T) {
	e := newEngine(t)
	supply := sdkmath.NewIntWithDecimal(1000, 18)
	deltaS := sdkmath.NewIntWithDecimal(100, 18)

	expected, impact, err := e.QuoteTrade(supply, deltaS, curve.Standard())
	require.NoError(t, err)

	// Off-parity pricing damps the average below the initial 1.0 price, so
	// the expected amount lands below deltaS and impact is positive.
	assert.True(t, expected.IsPositive())
	assert.True(t, expected.LT(deltaS))
	assert.True(t, impact.IsPositive())
	assert.True(t, impact.LT(sdkmath.NewInt(10_000)))
}

func TestDepthProfile(t *testing.T) {
	e := newEngine(t)
	reserve := sdkmath.NewIntWithDecimal(1000, 18)

	points, err := e.DepthProfile(reserve, curve.Standard(), 10)
	require.NoError(t, err)
	require.Len(t, points, 10)

	prevIn := sdkmath.ZeroInt()
	for _, pt := range points {
		assert.True(t, pt.AmountIn.GT(prevIn), "ladder rungs must grow")
		assert.True(t, pt.AmountOut.IsPositive())
		assert.False(t, pt.PriceImpactBps.IsNegative())
		prevIn = pt.AmountIn
	}

	_, err = e.DepthProfile(reserve, curve.Standard(), 0)
	require.ErrorIs(t, err, types.ErrInvalidInput)
	_, err = e.DepthProfile(sdkmath.ZeroInt(), curve.Standard(), 5)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}
