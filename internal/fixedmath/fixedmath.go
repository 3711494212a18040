/*

This file contains the guarded fixed-point primitives used by every curve
computation. All values are unsigned integers scaled by 10^18 (PRECISION)
and all arithmetic that could exceed the 256-bit range is checked before
the result is materialized. No floating point anywhere: the deterministic
and lossy-degradation behaviors of the engine depend on exact integer
semantics.

*/

package fixedmath

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// Decimals is the number of decimal places in the fixed-point representation.
const Decimals = 18

// MaxPowExponent is the deliberate cost bound on Pow; callers must reject
// larger exponents before evaluation.
const MaxPowExponent = 32

var (
	// Precision is the fixed-point scale, 10^18. A value of Precision
	// represents 1.0.
	Precision = sdkmath.NewIntWithDecimal(1, Decimals)

	// HalfPrecision represents 0.5.
	HalfPrecision = sdkmath.NewIntWithDecimal(5, Decimals-1)

	// maxUint128 is the large-but-bounded sentinel Exp saturates to above
	// its positive bound: 2^128 - 1.
	maxUint128 = sdkmath.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))
)

// CheckedMul multiplies two fixed-point integers, failing with
// ErrMathOverflow if the raw product would exceed 256 bits. Note the result
// carries a doubled scale; divide by Precision (or use MulDiv) to rescale.
func CheckedMul(a, b sdkmath.Int) (sdkmath.Int, error) {
	if a.IsNil() || b.IsNil() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	prod := new(big.Int).Mul(a.BigInt(), b.BigInt())
	if prod.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, types.ErrMathOverflow
	}
	return sdkmath.NewIntFromBigInt(prod), nil
}

// CheckedAdd adds two fixed-point integers with the same overflow guard.
func CheckedAdd(a, b sdkmath.Int) (sdkmath.Int, error) {
	if a.IsNil() || b.IsNil() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	sum := new(big.Int).Add(a.BigInt(), b.BigInt())
	if sum.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, types.ErrMathOverflow
	}
	return sdkmath.NewIntFromBigInt(sum), nil
}

// CheckedDiv divides a by b, failing with ErrInvalidInput on a zero
// divisor. Division itself cannot overflow.
func CheckedDiv(a, b sdkmath.Int) (sdkmath.Int, error) {
	if a.IsNil() || b.IsNil() || b.IsZero() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	return sdkmath.NewIntFromBigInt(new(big.Int).Quo(a.BigInt(), b.BigInt())), nil
}

// MulDiv computes a*b/den with the overflow guard applied to the
// intermediate product. This is the workhorse for rescaling fixed-point
// products back to a single Precision scale.
func MulDiv(a, b, den sdkmath.Int) (sdkmath.Int, error) {
	prod, err := CheckedMul(a, b)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return CheckedDiv(prod, den)
}

// MaxUint128 returns the saturation sentinel used by Exp.
func MaxUint128() sdkmath.Int {
	return maxUint128
}
