package fixedmath

import (
	"math/big"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theaxiomverse/hydra/internal/types"
)

func intFromBig(t *testing.T, s string) sdkmath.Int {
	t.Helper()
	v, ok := sdkmath.NewIntFromString(s)
	require.True(t, ok, "bad literal %s", s)
	return v
}

func TestCheckedMulOverflow(t *testing.T) {
	big255 := sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))

	_, err := CheckedMul(big255, big255)
	require.ErrorIs(t, err, types.ErrMathOverflow)

	got, err := CheckedMul(sdkmath.NewInt(3), sdkmath.NewInt(7))
	require.NoError(t, err)
	assert.Equal(t, int64(21), got.Int64())
}

func TestCheckedDivByZero(t *testing.T) {
	_, err := CheckedDiv(Precision, sdkmath.ZeroInt())
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestMulDivRescales(t *testing.T) {
	// 2.0 * 3.0 / 1.0 in fixed point.
	two := Precision.MulRaw(2)
	three := Precision.MulRaw(3)
	got, err := MulDiv(two, three, Precision)
	require.NoError(t, err)
	assert.Equal(t, Precision.MulRaw(6), got)
}

func TestSqrt(t *testing.T) {
	cases := []struct {
		name  string
		input sdkmath.Int
	}{
		{"zero", sdkmath.ZeroInt()},
		{"one", sdkmath.OneInt()},
		{"one fixed point", Precision},
		{"2^200", sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root, err := Sqrt(tc.input)
			require.NoError(t, err)

			// root^2 <= input < (root+1)^2
			sq := new(big.Int).Mul(root.BigInt(), root.BigInt())
			assert.LessOrEqual(t, sq.Cmp(tc.input.BigInt()), 0)
			if !tc.input.IsZero() {
				next := root.AddRaw(1)
				nextSq := new(big.Int).Mul(next.BigInt(), next.BigInt())
				assert.Greater(t, nextSq.Cmp(tc.input.BigInt()), 0)
			}
		})
	}

	_, err := Sqrt(sdkmath.NewInt(-1))
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestSqrtOfReserveProductStaysOnScale(t *testing.T) {
	// sqrt(1000e18 * 1000e18) = 1000e18
	r := sdkmath.NewIntWithDecimal(1000, 18)
	prod, err := CheckedMul(r, r)
	require.NoError(t, err)
	root, err := Sqrt(prod)
	require.NoError(t, err)
	assert.Equal(t, r, root)
}

func TestExpBasics(t *testing.T) {
	got, err := Exp(sdkmath.ZeroInt(), 6)
	require.NoError(t, err)
	assert.Equal(t, Precision, got, "exp(0) must be exactly 1.0")

	// exp(1) with six Taylor terms: 1+1+1/2+1/6+1/24+1/120+1/720 = 2.71805...
	got, err = Exp(Precision, 6)
	require.NoError(t, err)
	assert.Equal(t, intFromBig(t, "2718055555555555553"), got)
}

func TestExpNegativeIsInverse(t *testing.T) {
	pos, err := Exp(Precision, 6)
	require.NoError(t, err)
	neg, err := Exp(Precision.Neg(), 6)
	require.NoError(t, err)

	// exp(-1) * exp(1) ~= 1.0 within truncation error.
	prod, err := MulDiv(pos, neg, Precision)
	require.NoError(t, err)
	diff := prod.Sub(Precision).Abs()
	assert.True(t, diff.LT(sdkmath.NewIntWithDecimal(1, 15)), "got %s", prod)
}

func TestExpSaturation(t *testing.T) {
	below := sdkmath.NewIntWithDecimal(-42, 18)
	got, err := Exp(below, 6)
	require.NoError(t, err)
	assert.True(t, got.IsZero(), "exp below negative bound decays to zero")

	above := sdkmath.NewIntWithDecimal(51, 18)
	got, err = Exp(above, 6)
	require.NoError(t, err)
	assert.Equal(t, MaxUint128(), got, "exp above positive bound saturates")
}

func TestExpTermBounds(t *testing.T) {
	for _, terms := range []int{2, 7} {
		_, err := Exp(Precision, terms)
		require.ErrorIs(t, err, types.ErrInvalidInput)
	}
	for terms := MinExpTerms; terms <= MaxExpTerms; terms++ {
		_, err := Exp(Precision, terms)
		require.NoError(t, err)
	}
}

func TestPow(t *testing.T) {
	got, err := Pow(Precision.MulRaw(2), 0)
	require.NoError(t, err)
	assert.Equal(t, Precision, got, "pow(x, 0) = 1.0")

	got, err = Pow(Precision.MulRaw(2), 10)
	require.NoError(t, err)
	assert.Equal(t, Precision.MulRaw(1024), got)

	// 0.5^2 = 0.25
	got, err = Pow(HalfPrecision, 2)
	require.NoError(t, err)
	assert.Equal(t, sdkmath.NewIntWithDecimal(25, 16), got)

	_, err = Pow(Precision, MaxPowExponent+1)
	require.ErrorIs(t, err, types.ErrInvalidInput)
}

func TestPowOverflow(t *testing.T) {
	huge := sdkmath.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 250))
	_, err := Pow(huge, 2)
	require.ErrorIs(t, err, types.ErrMathOverflow)
}
