package engine

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// MaxDepthSteps bounds the depth ladder so a single API call stays cheap.
const MaxDepthSteps = 50

// DepthProfile quotes a ladder of trade sizes against the in-side reserve,
// one rung per percent of reserve up to steps percent. It reports how
// output and price impact scale with size, which is the engine's view of
// liquidity depth for a pair.
func (e *Engine) DepthProfile(reserveIn sdkmath.Int, cfg types.CurveConfig, steps int) ([]types.DepthPoint, error) {
	if reserveIn.IsNil() || !reserveIn.IsPositive() {
		return nil, fmt.Errorf("%w: zero reserve", types.ErrInvalidInput)
	}
	if steps <= 0 || steps > MaxDepthSteps {
		return nil, fmt.Errorf("%w: depth steps %d outside [1, %d]", types.ErrInvalidInput, steps, MaxDepthSteps)
	}

	points := make([]types.DepthPoint, 0, steps)
	for i := 1; i <= steps; i++ {
		amountIn := reserveIn.MulRaw(int64(i)).QuoRaw(100)
		if amountIn.IsZero() {
			continue
		}
		amountOut, impactBps, err := e.QuoteTrade(reserveIn, amountIn, cfg)
		if err != nil {
			return nil, fmt.Errorf("depth rung %d%%: %w", i, err)
		}
		points = append(points, types.DepthPoint{
			AmountIn:       amountIn,
			AmountOut:      amountOut,
			PriceImpactBps: impactBps,
		})
	}
	return points, nil
}
