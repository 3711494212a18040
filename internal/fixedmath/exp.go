package fixedmath

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// Exp domain bounds, scaled by Precision. Inputs below the negative bound
// decay to zero; inputs above the positive bound saturate to 2^128 - 1.
// Both are documented lossy degradations, not errors.
var (
	expMinInput = sdkmath.NewIntWithDecimal(-41, Decimals)
	expMaxInput = sdkmath.NewIntWithDecimal(50, Decimals)
)

const (
	// MinExpTerms and MaxExpTerms bound the truncated Taylor series.
	// Fewer terms is an intentional precision degradation under cost
	// pressure; more than six buys nothing the blend can observe.
	MinExpTerms = 3
	MaxExpTerms = 6
)

// Exp evaluates e^x for a signed fixed-point x using a truncated Taylor
// series with the given number of terms. Negative inputs are computed as
// the multiplicative inverse of Exp(-x), scaled by Precision^2.
func Exp(x sdkmath.Int, terms int) (sdkmath.Int, error) {
	if x.IsNil() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if terms < MinExpTerms || terms > MaxExpTerms {
		return sdkmath.Int{}, fmt.Errorf("%w: exp terms %d outside [%d, %d]", types.ErrInvalidInput, terms, MinExpTerms, MaxExpTerms)
	}

	if x.LT(expMinInput) {
		return sdkmath.ZeroInt(), nil
	}
	if x.GT(expMaxInput) {
		return MaxUint128(), nil
	}

	if x.IsNegative() {
		pos, err := expTaylor(x.Neg(), terms)
		if err != nil {
			return sdkmath.Int{}, err
		}
		if pos.IsZero() {
			// Unreachable inside the bounded domain; guard anyway so a
			// division by zero can never surface.
			return sdkmath.ZeroInt(), nil
		}
		sq, err := CheckedMul(Precision, Precision)
		if err != nil {
			return sdkmath.Int{}, err
		}
		return CheckedDiv(sq, pos)
	}

	return expTaylor(x, terms)
}

// expTaylor sums 1 + x + x^2/2! + ... + x^n/n! in fixed point for x >= 0.
func expTaylor(x sdkmath.Int, terms int) (sdkmath.Int, error) {
	sum := Precision
	term := Precision

	for i := 1; i <= terms; i++ {
		num, err := CheckedMul(term, x)
		if err != nil {
			return sdkmath.Int{}, err
		}
		den, err := CheckedMul(Precision, sdkmath.NewInt(int64(i)))
		if err != nil {
			return sdkmath.Int{}, err
		}
		term, err = CheckedDiv(num, den)
		if err != nil {
			return sdkmath.Int{}, err
		}
		sum, err = CheckedAdd(sum, term)
		if err != nil {
			return sdkmath.Int{}, err
		}
	}
	return sum, nil
}
