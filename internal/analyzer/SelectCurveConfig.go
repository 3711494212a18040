/*

This file contains the adaptive curve selector: a pure, total mapping from
live market telemetry to one of the three sanctioned curve presets. All
scores are integer percentages (0-100); there is no floating point and no
failure path, so the selector can run on every telemetry tick without
guarding.

*/

package analyzer

import (
	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/logger"
	"github.com/theaxiomverse/hydra/internal/types"
)

var selectorLogger = logger.GetForComponent("curve_selector")

// Composite score thresholds. Below StableThreshold the pair is considered
// settled; at or above StandardThreshold it is considered volatile.
const (
	StableThreshold   = 30
	StandardThreshold = 70
)

const secondsPerDay = 86_400

// VolumeToMarketCapRatio returns min(100, volume24h * 100 / marketCap).
// A zero market cap is treated as maximal turnover (100) rather than a
// division by zero: a pair with no measurable cap is the riskiest case.
func VolumeToMarketCapRatio(m types.MarketMetrics) uint32 {
	if m.MarketCapUSD.IsNil() || m.Volume24hUSD.IsNil() {
		return 100
	}
	if m.MarketCapUSD.IsZero() || m.MarketCapUSD.IsNegative() {
		return 100
	}
	if m.Volume24hUSD.IsNegative() {
		return 0
	}

	ratio := m.Volume24hUSD.MulRaw(100).Quo(m.MarketCapUSD)
	if ratio.GT(sdkmath.NewInt(100)) {
		return 100
	}
	return uint32(ratio.Int64())
}

// HolderConcentrationScore is an inverse step function of holder count:
// the fewer the holders, the more concentrated (and riskier) the pair.
func HolderConcentrationScore(holderCount uint64) uint32 {
	switch {
	case holderCount < 10:
		return 100
	case holderCount < 100:
		return 80
	case holderCount < 1_000:
		return 60
	case holderCount < 10_000:
		return 40
	case holderCount < 100_000:
		return 20
	default:
		return 10
	}
}

// AgeFactor is a monotonically decreasing step function of token age in
// days. Young tokens score high; anything past six months scores 10.
func AgeFactor(ageSeconds uint64) uint32 {
	days := ageSeconds / secondsPerDay
	switch {
	case days < 1:
		return 100
	case days < 7:
		return 80
	case days < 30:
		return 60
	case days < 90:
		return 40
	case days < 180:
		return 20
	default:
		return 10
	}
}

// VolatilityScore blends turnover and holder concentration 60/40.
func VolatilityScore(m types.MarketMetrics) uint32 {
	return (60*VolumeToMarketCapRatio(m) + 40*HolderConcentrationScore(m.HolderCount)) / 100
}

// CompositeScore blends volatility and age 70/30 into the final 0-100
// score the preset thresholds are applied to.
func CompositeScore(m types.MarketMetrics) uint32 {
	return (70*VolatilityScore(m) + 30*AgeFactor(m.AgeSeconds)) / 100
}

// SelectCurveConfig maps telemetry to a preset and its configuration.
// Pure and total over the declared input domain.
func SelectCurveConfig(m types.MarketMetrics) (types.CurveConfig, types.CurvePreset) {
	score := CompositeScore(m)

	var preset types.CurvePreset
	switch {
	case score < StableThreshold:
		preset = types.PresetStable
	case score < StandardThreshold:
		preset = types.PresetStandard
	default:
		preset = types.PresetVolatile
	}

	cfg, err := curve.ByPreset(preset)
	if err != nil {
		// Unreachable: preset is one of the three constants.
		selectorLogger.Error().Err(err).Str("preset", string(preset)).Msg("Preset resolution failed")
		cfg = curve.Standard()
		preset = types.PresetStandard
	}

	selectorLogger.Debug().
		Uint32("score", score).
		Str("preset", string(preset)).
		Uint64("holders", m.HolderCount).
		Msg("Adaptive curve selection complete")

	return cfg, preset
}
