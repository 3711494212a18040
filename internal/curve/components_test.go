package curve

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/types"
)

func newEvaluator(t *testing.T) Evaluator {
	t.Helper()
	e, err := NewEvaluator(fixedmath.MaxExpTerms)
	require.NoError(t, err)
	return e
}

func TestComponentsAtZeroInput(t *testing.T) {
	e := newEvaluator(t)

	got, err := e.Sigmoid(sdkmath.ZeroInt(), 15)
	require.NoError(t, err)
	assert.Equal(t, fixedmath.Precision, got)

	got, err = e.Gaussian(sdkmath.ZeroInt(), sdkmath.NewIntWithDecimal(2, 17))
	require.NoError(t, err)
	assert.Equal(t, fixedmath.Precision, got)

	got, err = e.Rational(sdkmath.ZeroInt(), 4)
	require.NoError(t, err)
	assert.Equal(t, fixedmath.Precision, got)
}

func TestComponentEdgeParameters(t *testing.T) {
	e := newEvaluator(t)
	x := fixedmath.Precision

	got, err := e.Sigmoid(x, 0)
	require.NoError(t, err)
	assert.Equal(t, fixedmath.HalfPrecision, got, "zero steepness flattens to 0.5")

	got, err = e.Gaussian(x, sdkmath.ZeroInt())
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "zero width collapses the bell")

	got, err = e.Rational(x, 0)
	require.NoError(t, err)
	assert.Equal(t, fixedmath.Precision, got, "zero power is the identity")
}

func TestComponentsBoundedToPrecision(t *testing.T) {
	e := newEvaluator(t)

	inputs := []sdkmath.Int{
		sdkmath.ZeroInt(),
		sdkmath.NewIntWithDecimal(1, 15), // 0.001
		fixedmath.HalfPrecision,
		fixedmath.Precision,
		sdkmath.NewIntWithDecimal(10, 18),
		sdkmath.NewIntWithDecimal(1, 24), // 1e6
	}

	for _, x := range inputs {
		sig, err := e.Sigmoid(x, 18)
		require.NoError(t, err)
		assert.True(t, !sig.IsNegative() && sig.LTE(fixedmath.Precision), "sigmoid(%s) = %s", x, sig)

		gau, err := e.Gaussian(x, sdkmath.NewIntWithDecimal(2, 17))
		require.NoError(t, err)
		assert.True(t, !gau.IsNegative() && gau.LTE(fixedmath.Precision), "gaussian(%s) = %s", x, gau)

		rat, err := e.Rational(x, 5)
		require.NoError(t, err)
		assert.True(t, !rat.IsNegative() && rat.LTE(fixedmath.Precision), "rational(%s) = %s", x, rat)
	}
}

func TestRationalOverflowDegradesToZero(t *testing.T) {
	e := newEvaluator(t)

	// (1e6)^32 in fixed point blows far past 256 bits; policy says return
	// zero, never an error.
	huge := sdkmath.NewIntWithDecimal(1, 24)
	got, err := e.Rational(huge, 32)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestRationalAtParity(t *testing.T) {
	e := newEvaluator(t)

	// 1^p = 1, so rational(1.0, p) = P^2/(2P) = P/2 for any p > 0.
	got, err := e.Rational(fixedmath.Precision, 4)
	require.NoError(t, err)
	assert.Equal(t, fixedmath.HalfPrecision, got)
}

func TestValidatePresets(t *testing.T) {
	for _, p := range []types.CurvePreset{types.PresetStable, types.PresetStandard, types.PresetVolatile} {
		cfg, err := ByPreset(p)
		require.NoError(t, err)
		assert.NoError(t, Validate(cfg), "preset %s", p)
	}

	_, err := ByPreset(types.CurvePreset("aggressive"))
	require.ErrorIs(t, err, types.ErrInvalidConfig)
}

func TestValidateRejectsOutOfBounds(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.CurveConfig)
	}{
		{"steepness too low", func(c *types.CurveConfig) { c.SigmoidSteepness = 9 }},
		{"steepness too high", func(c *types.CurveConfig) { c.SigmoidSteepness = 26 }},
		{"width too narrow", func(c *types.CurveConfig) { c.GaussianWidth = sdkmath.NewIntWithDecimal(9, 15) }},
		{"width too wide", func(c *types.CurveConfig) { c.GaussianWidth = sdkmath.NewIntWithDecimal(4, 17) }},
		{"power zero", func(c *types.CurveConfig) { c.RationalPower = 0 }},
		{"power too high", func(c *types.CurveConfig) { c.RationalPower = 33 }},
		{"weight sum off by one up", func(c *types.CurveConfig) { c.SigmoidWeight = c.SigmoidWeight.AddRaw(1) }},
		{"weight sum off by one down", func(c *types.CurveConfig) { c.RationalWeight = c.RationalWeight.SubRaw(1) }},
		{"nil weight", func(c *types.CurveConfig) { c.GaussianWeight = sdkmath.Int{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Standard()
			tc.mutate(&cfg)
			err := Validate(cfg)
			require.ErrorIs(t, err, types.ErrInvalidConfig)
			assert.False(t, IsValid(cfg))
		})
	}
}
