// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math/big"
)

// Time constants.
const (
	SecondsPerDay uint64 = 24 * 60 * 60
)

// Gas costs of the storage primitives used by built-in contracts.
// Values follow the ethereum yellow paper so receipts stay comparable.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	GetBalanceGas  uint64 = 400

	LogGas      uint64 = 375
	LogTopicGas uint64 = 375
	LogDataGas  uint64 = 8
)

// Defaults of the staking ledger, used by the dev genesis.
var (
	DefaultMinStake       = big.NewInt(1000)
	DefaultMaxStake       = big.NewInt(1_000_000)
	DefaultStakeDurations = []uint32{30, 60, 90}
)

// DaysToSeconds converts a lock duration in days to seconds.
func DaysToSeconds(days uint32) uint64 {
	return uint64(days) * SecondsPerDay
}
