package curve

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/fixedmath"
	"github.com/theaxiomverse/hydra/internal/types"
)

// Parameter bounds for a valid curve configuration. A config outside these
// bounds can silently produce degenerate prices, so the engine refuses to
// compute against anything that fails Validate.
var (
	minSigmoidSteepness = uint32(10)
	maxSigmoidSteepness = uint32(25)
	minGaussianWidth    = sdkmath.NewIntWithDecimal(1, 16) // 0.01
	maxGaussianWidth    = sdkmath.NewIntWithDecimal(3, 17) // 0.30
	minRationalPower    = uint32(1)
	maxRationalPower    = uint32(fixedmath.MaxPowExponent)
)

// Validate checks the shape-parameter bounds and that the three blend
// weights sum to exactly one PRECISION, with no tolerance. A nil weight is
// invalid.
func Validate(cfg types.CurveConfig) error {
	if cfg.SigmoidWeight.IsNil() || cfg.GaussianWeight.IsNil() || cfg.RationalWeight.IsNil() || cfg.GaussianWidth.IsNil() {
		return fmt.Errorf("%w: nil field", types.ErrInvalidConfig)
	}
	if cfg.SigmoidSteepness < minSigmoidSteepness || cfg.SigmoidSteepness > maxSigmoidSteepness {
		return fmt.Errorf("%w: sigmoid steepness %d outside [%d, %d]",
			types.ErrInvalidConfig, cfg.SigmoidSteepness, minSigmoidSteepness, maxSigmoidSteepness)
	}
	if cfg.GaussianWidth.LT(minGaussianWidth) || cfg.GaussianWidth.GT(maxGaussianWidth) {
		return fmt.Errorf("%w: gaussian width %s outside [%s, %s]",
			types.ErrInvalidConfig, cfg.GaussianWidth, minGaussianWidth, maxGaussianWidth)
	}
	if cfg.RationalPower < minRationalPower || cfg.RationalPower > maxRationalPower {
		return fmt.Errorf("%w: rational power %d outside [%d, %d]",
			types.ErrInvalidConfig, cfg.RationalPower, minRationalPower, maxRationalPower)
	}
	if cfg.SigmoidWeight.IsNegative() || cfg.GaussianWeight.IsNegative() || cfg.RationalWeight.IsNegative() {
		return fmt.Errorf("%w: negative weight", types.ErrInvalidConfig)
	}

	sum := cfg.SigmoidWeight.Add(cfg.GaussianWeight).Add(cfg.RationalWeight)
	if !sum.Equal(fixedmath.Precision) {
		return fmt.Errorf("%w: weights sum to %s, want exactly %s",
			types.ErrInvalidConfig, sum, fixedmath.Precision)
	}
	return nil
}

// IsValid reports whether cfg passes Validate.
func IsValid(cfg types.CurveConfig) bool {
	return Validate(cfg) == nil
}
