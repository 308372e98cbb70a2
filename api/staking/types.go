// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/thor"
)

type Config struct {
	Asset       thor.Address          `json:"asset"`
	MinAmount   *math.HexOrDecimal256 `json:"minAmount"`
	MaxAmount   *math.HexOrDecimal256 `json:"maxAmount"`
	Durations   []uint32              `json:"durations"`
	TotalStaked *math.HexOrDecimal256 `json:"totalStaked"`
}

type Position struct {
	Index       uint64                `json:"index"`
	Amount      *math.HexOrDecimal256 `json:"amount"`
	Duration    uint32                `json:"duration"`
	StakedAt    uint64                `json:"stakedAt"`
	ExpiresAt   uint64                `json:"expiresAt"`
	WithdrawnAt uint64                `json:"withdrawnAt"`
	Status      string                `json:"status"`
}

func convertPosition(index uint64, p *staking.Position, now uint64) *Position {
	return &Position{
		Index:       index,
		Amount:      (*math.HexOrDecimal256)(p.Amount),
		Duration:    p.Duration(),
		StakedAt:    p.StakedAt,
		ExpiresAt:   p.ExpiresAt,
		WithdrawnAt: p.WithdrawnAt,
		Status:      p.Status(now).String(),
	}
}

func convertPositions(positions []*staking.Position, now uint64) []*Position {
	out := make([]*Position, 0, len(positions))
	for i, p := range positions {
		out = append(out, convertPosition(uint64(i), p, now))
	}
	return out
}

type OwnerPositions struct {
	Owner     thor.Address `json:"owner"`
	Positions []*Position  `json:"positions"`
}

type Allowed struct {
	Allowed bool `json:"allowed"`
}

type StakeRequest struct {
	Caller   *thor.Address         `json:"caller"`
	Amount   *math.HexOrDecimal256 `json:"amount"`
	Duration uint32                `json:"duration"`
}

type StakeResult struct {
	Index   uint64         `json:"index"`
	Receipt *utils.Receipt `json:"receipt"`
}

type WithdrawEntry struct {
	Owner *thor.Address `json:"owner"`
	Index uint64        `json:"index"`
}

type WithdrawRequest struct {
	Caller   *thor.Address    `json:"caller"`
	Requests []*WithdrawEntry `json:"requests"`
}
