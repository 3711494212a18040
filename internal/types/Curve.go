/*

This file defines the blended curve configuration and the market telemetry
inputs consumed by the adaptive selector. A CurveConfig is immutable once
attached to a pricing call: it is constructed by a preset or by the selector
and replaced wholesale, never field-by-field.

*/

package types

import (
	"cosmossdk.io/math"
)

// CurvePreset names one of the three sanctioned curve shapes, or marks a
// config produced by the adaptive selector.
type CurvePreset string

const (
	PresetStable   CurvePreset = "stable"
	PresetStandard CurvePreset = "standard"
	PresetVolatile CurvePreset = "volatile"
)

// CurveConfig holds the shape parameters and blend weights of the three
// curve components. All fixed-point fields are scaled by 10^18; the three
// weights must sum to exactly one PRECISION.
type CurveConfig struct {
	SigmoidSteepness uint32   `json:"sigmoid_steepness"` // valid range [10, 25]
	SigmoidWeight    math.Int `json:"sigmoid_weight"`
	GaussianWidth    math.Int `json:"gaussian_width"` // valid range [1e16, 3e17]
	GaussianWeight   math.Int `json:"gaussian_weight"`
	RationalPower    uint32   `json:"rational_power"` // valid range [1, 32]
	RationalWeight   math.Int `json:"rational_weight"`
}

// MarketMetrics is the read-only telemetry snapshot for one trading pair.
// It is owned by the external telemetry collaborator; the engine never
// stores it, only maps it to a CurveConfig.
type MarketMetrics struct {
	MarketCapUSD math.Int `json:"market_cap_usd"` // fixed-point, 10^18
	Volume24hUSD math.Int `json:"volume_24h_usd"` // fixed-point, 10^18
	HolderCount  uint64   `json:"holder_count"`
	AgeSeconds   uint64   `json:"age_seconds"`
}
