package analyzer

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/types"
)

func usd(n int64) sdkmath.Int {
	return sdkmath.NewIntWithDecimal(n, 18)
}

func TestVolumeRatioZeroMarketCap(t *testing.T) {
	m := types.MarketMetrics{
		MarketCapUSD: sdkmath.ZeroInt(),
		Volume24hUSD: usd(1_000_000),
	}
	// Division-by-zero guard: zero market cap is maximal turnover.
	assert.Equal(t, uint32(100), VolumeToMarketCapRatio(m))

	m.MarketCapUSD = sdkmath.Int{}
	assert.Equal(t, uint32(100), VolumeToMarketCapRatio(m))
}

func TestVolumeRatioCappedAt100(t *testing.T) {
	m := types.MarketMetrics{
		MarketCapUSD: usd(1_000),
		Volume24hUSD: usd(50_000),
	}
	assert.Equal(t, uint32(100), VolumeToMarketCapRatio(m))

	m.Volume24hUSD = usd(250)
	assert.Equal(t, uint32(25), VolumeToMarketCapRatio(m))
}

func TestHolderConcentrationSteps(t *testing.T) {
	cases := []struct {
		holders uint64
		want    uint32
	}{
		{0, 100}, {9, 100}, {10, 80}, {99, 80}, {100, 60},
		{999, 60}, {1_000, 40}, {9_999, 40}, {10_000, 20},
		{99_999, 20}, {100_000, 10}, {5_000_000, 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, HolderConcentrationScore(tc.holders), "holders=%d", tc.holders)
	}
}

func TestAgeFactorMonotoneDecreasing(t *testing.T) {
	ages := []uint64{0, 86_400, 7 * 86_400, 30 * 86_400, 90 * 86_400, 180 * 86_400, 365 * 86_400}
	prev := uint32(101)
	for _, age := range ages {
		f := AgeFactor(age)
		assert.LessOrEqual(t, f, prev, "age=%d", age)
		prev = f
	}
	assert.Equal(t, uint32(100), AgeFactor(0))
	assert.Equal(t, uint32(10), AgeFactor(400*86_400))
}

func TestSelectCurveConfigBands(t *testing.T) {
	cases := []struct {
		name   string
		m      types.MarketMetrics
		preset types.CurvePreset
	}{
		{
			// Old, widely held, barely traded: deep stable territory.
			name: "settled pair",
			m: types.MarketMetrics{
				MarketCapUSD: usd(100_000_000),
				Volume24hUSD: usd(1_000_000),
				HolderCount:  500_000,
				AgeSeconds:   365 * 86_400,
			},
			preset: types.PresetStable,
		},
		{
			// Moderate turnover, mid-size holder base, a few months old.
			name: "ordinary pair",
			m: types.MarketMetrics{
				MarketCapUSD: usd(10_000_000),
				Volume24hUSD: usd(5_000_000),
				HolderCount:  5_000,
				AgeSeconds:   100 * 86_400,
			},
			preset: types.PresetStandard,
		},
		{
			// Day-old token, ten wallets, no measurable cap.
			name: "fresh launch",
			m: types.MarketMetrics{
				MarketCapUSD: sdkmath.ZeroInt(),
				Volume24hUSD: usd(50_000),
				HolderCount:  8,
				AgeSeconds:   3_600,
			},
			preset: types.PresetVolatile,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg, preset := SelectCurveConfig(tc.m)
			assert.Equal(t, tc.preset, preset)
			require.NoError(t, curve.Validate(cfg))

			want, err := curve.ByPreset(tc.preset)
			require.NoError(t, err)
			assert.Equal(t, want, cfg)
		})
	}
}

func TestCompositeScoreDeterministic(t *testing.T) {
	m := types.MarketMetrics{
		MarketCapUSD: usd(2_000_000),
		Volume24hUSD: usd(500_000),
		HolderCount:  1_500,
		AgeSeconds:   45 * 86_400,
	}
	first := CompositeScore(m)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, CompositeScore(m))
	}
}
