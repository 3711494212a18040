package hydra

import (
	"context"
	"errors"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theaxiomverse/hydra/internal/curve"
	"github.com/theaxiomverse/hydra/internal/engine"
	"github.com/theaxiomverse/hydra/internal/pool"
	"github.com/theaxiomverse/hydra/internal/types"
)

type stubTelemetry struct {
	metrics map[types.PairID]types.MarketMetrics
	err     error
}

func (s *stubTelemetry) FetchMarketMetrics(_ context.Context, pair types.PairID) (types.MarketMetrics, error) {
	if s.err != nil {
		return types.MarketMetrics{}, s.err
	}
	m, ok := s.metrics[pair]
	if !ok {
		return types.MarketMetrics{}, errors.New("no metrics for pair")
	}
	return m, nil
}

func testParams() types.EngineParameters {
	return types.EngineParameters{
		ExpTaylorTerms: 6,
		SwapFeeBps:     30,
		MaxPriceRatio:  sdkmath.NewIntWithDecimal(1, 24),
		MinLiquidity:   sdkmath.NewInt(1_000),
		MinDwellCycles: 3,
		ScoreDeadband:  5,
	}
}

func testLedger(t *testing.T) *pool.Ledger {
	t.Helper()
	eng, err := engine.New(testParams())
	require.NoError(t, err)
	l, err := pool.NewLedger(eng, 30)
	require.NoError(t, err)

	r := sdkmath.NewIntWithDecimal(1000, 18)
	_, err = l.InitPool("D4L/USDC", r, r, curve.Standard(), types.PresetStandard)
	require.NoError(t, err)
	return l
}

// freshLaunchMetrics scores 100 on the composite scale.
func freshLaunchMetrics() types.MarketMetrics {
	return types.MarketMetrics{
		MarketCapUSD: sdkmath.ZeroInt(),
		Volume24hUSD: sdkmath.NewIntWithDecimal(50_000, 18),
		HolderCount:  8,
		AgeSeconds:   3_600,
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	ledger := testLedger(t)
	telemetry := &stubTelemetry{}

	_, err := New(Config{Ledger: nil, Telemetry: telemetry, Params: testParams(), ConfigName: "test", ConfigVersion: 1})
	require.Error(t, err)

	_, err = New(Config{Ledger: ledger, Telemetry: nil, Params: testParams(), ConfigName: "test", ConfigVersion: 1})
	require.Error(t, err)

	_, err = New(Config{Ledger: ledger, Telemetry: telemetry, Params: testParams(), ConfigName: "", ConfigVersion: 1})
	require.Error(t, err)

	_, err = New(Config{Ledger: ledger, Telemetry: telemetry, Params: testParams(), ConfigName: "test", ConfigVersion: 0})
	require.Error(t, err)
}

func TestRunCycleAppliesTransition(t *testing.T) {
	ledger := testLedger(t)
	telemetry := &stubTelemetry{metrics: map[types.PairID]types.MarketMetrics{
		"D4L/USDC": freshLaunchMetrics(),
	}}

	h, err := New(Config{
		Ledger:        ledger,
		Telemetry:     telemetry,
		Params:        testParams(),
		ConfigName:    "test",
		ConfigVersion: 1,
	})
	require.NoError(t, err)

	// A standard pool whose telemetry scores 100 is mismatched: the first
	// cycle moves it onto the volatile preset.
	h.RunCycle(context.Background())

	state, err := ledger.Pool("D4L/USDC")
	require.NoError(t, err)
	assert.Equal(t, types.PresetVolatile, state.ActivePreset)
	assert.Equal(t, curve.Volatile().SigmoidSteepness, state.ActiveConfig.SigmoidSteepness)

	// The next cycle sees matching preset and score: no further change.
	h.RunCycle(context.Background())
	state, err = ledger.Pool("D4L/USDC")
	require.NoError(t, err)
	assert.Equal(t, types.PresetVolatile, state.ActivePreset)
}

func TestRunCycleHoldsConfigOnTelemetryFailure(t *testing.T) {
	ledger := testLedger(t)
	telemetry := &stubTelemetry{err: errors.New("collector unreachable")}

	h, err := New(Config{
		Ledger:        ledger,
		Telemetry:     telemetry,
		Params:        testParams(),
		ConfigName:    "test",
		ConfigVersion: 1,
	})
	require.NoError(t, err)

	h.RunCycle(context.Background())

	state, err := ledger.Pool("D4L/USDC")
	require.NoError(t, err)
	assert.Equal(t, types.PresetStandard, state.ActivePreset, "failed telemetry must freeze the active config")
}
