package curve

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// The three sanctioned curve shapes. Constructors return fresh copies so a
// caller can never mutate a shared preset through the math.Int pointers.

// Stable: tight bell, steep sigmoid, gentle rational tail. For deep,
// settled pairs.
func Stable() types.CurveConfig {
	return types.CurveConfig{
		SigmoidSteepness: 18,
		SigmoidWeight:    sdkmath.NewIntWithDecimal(6, 17), // 0.6
		GaussianWidth:    sdkmath.NewIntWithDecimal(15, 16), // 0.15
		GaussianWeight:   sdkmath.NewIntWithDecimal(3, 17), // 0.3
		RationalPower:    3,
		RationalWeight:   sdkmath.NewIntWithDecimal(1, 17), // 0.1
	}
}

// Standard: the default shape for ordinary pairs.
func Standard() types.CurveConfig {
	return types.CurveConfig{
		SigmoidSteepness: 15,
		SigmoidWeight:    sdkmath.NewIntWithDecimal(5, 17), // 0.5
		GaussianWidth:    sdkmath.NewIntWithDecimal(2, 17), // 0.2
		GaussianWeight:   sdkmath.NewIntWithDecimal(3, 17), // 0.3
		RationalPower:    4,
		RationalWeight:   sdkmath.NewIntWithDecimal(2, 17), // 0.2
	}
}

// Volatile: wide bell and heavier tails for young or thin pairs.
func Volatile() types.CurveConfig {
	return types.CurveConfig{
		SigmoidSteepness: 12,
		SigmoidWeight:    sdkmath.NewIntWithDecimal(4, 17), // 0.4
		GaussianWidth:    sdkmath.NewIntWithDecimal(25, 16), // 0.25
		GaussianWeight:   sdkmath.NewIntWithDecimal(4, 17), // 0.4
		RationalPower:    5,
		RationalWeight:   sdkmath.NewIntWithDecimal(2, 17), // 0.2
	}
}

// ByPreset resolves a preset name to its configuration.
func ByPreset(p types.CurvePreset) (types.CurveConfig, error) {
	switch p {
	case types.PresetStable:
		return Stable(), nil
	case types.PresetStandard:
		return Standard(), nil
	case types.PresetVolatile:
		return Volatile(), nil
	default:
		return types.CurveConfig{}, fmt.Errorf("%w: unknown preset %q", types.ErrInvalidConfig, p)
	}
}
