// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math"
	"math/big"
	mathrand "math/rand/v2"
)

func RandInt() int {
	return mathrand.Int() //#nosec G404
}

func RandIntN(n int) int {
	return mathrand.N(n) //#nosec G404
}

// RandBigIntRange returns a random integer in [lo, hi].
func RandBigIntRange(lo, hi *big.Int) *big.Int {
	span := new(big.Int).Sub(hi, lo)
	if span.Sign() <= 0 {
		return new(big.Int).Set(lo)
	}
	span.Add(span, big.NewInt(1))
	if !span.IsInt64() {
		span.SetInt64(math.MaxInt64)
	}
	return new(big.Int).Add(lo, big.NewInt(mathrand.Int64N(span.Int64()))) //#nosec G404
}
