/*

This file contains the three pure curve components of the Hydra blend:
sigmoid, gaussian and rational. Each maps a normalized fixed-point input to
[0, PRECISION] using one shape parameter. The components never observe pool
state; the engine feeds them the deviation of a price ratio from parity.

*/

package curve

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/types"
)

// Evaluator evaluates the curve components with a fixed Taylor depth for
// the bounded exponential. Evaluators are immutable and safe for
// concurrent use.
type Evaluator struct {
	expTerms int
}

// NewEvaluator returns an Evaluator using the given number of exponential
// Taylor terms (valid range [3, 6]).
func NewEvaluator(expTerms int) (Evaluator, error) {
	if expTerms < fixedmath.MinExpTerms || expTerms > fixedmath.MaxExpTerms {
		return Evaluator{}, fmt.Errorf("%w: exp taylor terms %d outside [%d, %d]",
			types.ErrInvalidConfig, expTerms, fixedmath.MinExpTerms, fixedmath.MaxExpTerms)
	}
	return Evaluator{expTerms: expTerms}, nil
}

// Sigmoid computes PRECISION^2 / (PRECISION + exp(-steepness*x/PRECISION)).
// Edge cases: x == 0 yields PRECISION, steepness == 0 yields PRECISION/2.
func (e Evaluator) Sigmoid(x sdkmath.Int, steepness uint32) (sdkmath.Int, error) {
	if x.IsNil() || x.IsNegative() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if x.IsZero() {
		return fixedmath.Precision, nil
	}
	if steepness == 0 {
		return fixedmath.HalfPrecision, nil
	}

	// Guard x*steepness before dividing back to scale.
	scaled, err := fixedmath.CheckedMul(x, sdkmath.NewIntFromUint64(uint64(steepness)))
	if err != nil {
		return sdkmath.Int{}, err
	}

	expVal, err := fixedmath.Exp(scaled.Neg(), e.expTerms)
	if err != nil {
		return sdkmath.Int{}, err
	}

	den, err := fixedmath.CheckedAdd(fixedmath.Precision, expVal)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedmath.MulDiv(fixedmath.Precision, fixedmath.Precision, den)
}

// Gaussian computes exp(-(x/width)^2). Edge cases: x == 0 yields PRECISION,
// width == 0 yields 0 (an infinitely narrow bell).
func (e Evaluator) Gaussian(x sdkmath.Int, width sdkmath.Int) (sdkmath.Int, error) {
	if x.IsNil() || width.IsNil() || x.IsNegative() || width.IsNegative() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if x.IsZero() {
		return fixedmath.Precision, nil
	}
	if width.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	// (x/width)^2 with explicit guards on x^2 and x^2/width^2.
	x2, err := fixedmath.CheckedMul(x, x)
	if err != nil {
		return sdkmath.Int{}, err
	}
	w2, err := fixedmath.CheckedMul(width, width)
	if err != nil {
		return sdkmath.Int{}, err
	}
	ratio, err := fixedmath.MulDiv(x2, fixedmath.Precision, w2)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedmath.Exp(ratio.Neg(), e.expTerms)
}

// Rational computes PRECISION^2 / (PRECISION + x^power). Edge cases: x == 0
// or power == 0 yields PRECISION. If x^power would overflow, Rational
// returns 0 instead of failing: a deliberate lossy degradation policy, not
// an error.
func (e Evaluator) Rational(x sdkmath.Int, power uint32) (sdkmath.Int, error) {
	if x.IsNil() || x.IsNegative() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if x.IsZero() || power == 0 {
		return fixedmath.Precision, nil
	}

	xp, err := fixedmath.Pow(x, power)
	if err != nil {
		if errors.Is(err, types.ErrMathOverflow) {
			return sdkmath.ZeroInt(), nil
		}
		return sdkmath.Int{}, err
	}

	den, err := fixedmath.CheckedAdd(fixedmath.Precision, xp)
	if err != nil {
		if errors.Is(err, types.ErrMathOverflow) {
			return sdkmath.ZeroInt(), nil
		}
		return sdkmath.Int{}, err
	}
	return fixedmath.MulDiv(fixedmath.Precision, fixedmath.Precision, den)
}
