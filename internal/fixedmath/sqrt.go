package fixedmath

import (
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/theaxiomverse/hydra/internal/types"
)

// Sqrt computes the integer square root of v by Newton's method, seeded
// with a bit-length estimate so the descent starts at or above the true
// root. Sqrt(0) = 0. Negative inputs are rejected: the fixed-point domain
// is unsigned.
//
// Passing the raw product of two 10^18-scaled reserves yields a result on
// the same 10^18 scale, which is how the engine derives its geometric-mean
// base liquidity.
func Sqrt(v sdkmath.Int) (sdkmath.Int, error) {
	if v.IsNil() || v.IsNegative() {
		return sdkmath.Int{}, types.ErrInvalidInput
	}
	if v.IsZero() {
		return sdkmath.ZeroInt(), nil
	}

	x := v.BigInt()
	if x.Cmp(big.NewInt(1)) == 0 {
		return sdkmath.OneInt(), nil
	}

	// Seed with 2^ceil(bitlen/2) >= sqrt(x); Newton then descends
	// monotonically until the iterate stops shrinking.
	z := new(big.Int).Lsh(big.NewInt(1), uint(x.BitLen()+1)/2)
	for {
		next := new(big.Int).Quo(x, z)
		next.Add(next, z)
		next.Rsh(next, 1)
		if next.Cmp(z) >= 0 {
			return sdkmath.NewIntFromBigInt(z), nil
		}
		z = next
	}
}
