package fixedmath

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// Pow raises a fixed-point base to an integer exponent by binary
// exponentiation. Pow(x, 0) = Precision. Exponents above MaxPowExponent
// are a deliberate cost bound and are rejected, not evaluated. Any
// intermediate product that would exceed 256 bits fails with
// ErrMathOverflow; the rational component maps that failure to a lossy
// zero, other callers abort.
func Pow(base sdkmath.Int, exponent uint32) (sdkmath.Int, error) {
	if base.IsNil() || base.IsNegative() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if exponent > MaxPowExponent {
		return sdkmath.Int{}, fmt.Errorf("%w: pow exponent %d exceeds %d", types.ErrInvalidInput, exponent, MaxPowExponent)
	}
	if exponent == 0 {
		return Precision, nil
	}

	result := Precision
	cur := base
	exp := exponent

	for exp > 0 {
		if exp&1 == 1 {
			r, err := MulDiv(result, cur, Precision)
			if err != nil {
				return sdkmath.Int{}, err
			}
			result = r
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		c, err := MulDiv(cur, cur, Precision)
		if err != nil {
			return sdkmath.Int{}, err
		}
		cur = c
	}
	return result, nil
}
