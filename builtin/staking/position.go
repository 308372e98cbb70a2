// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/binary"
	"math/big"

	"github.com/vechain/lockstake/thor"
)

// Status of a position at a given time.
type Status uint8

const (
	StatusActive Status = iota
	StatusExpired
	StatusWithdrawn
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusWithdrawn:
		return "withdrawn"
	default:
		return "unknown"
	}
}

// Position is a single deposit. Positions are never removed, a withdrawal only
// sets WithdrawnAt.
type Position struct {
	Amount      *big.Int
	StakedAt    uint64
	ExpiresAt   uint64
	WithdrawnAt uint64 // zero while outstanding
}

// Duration returns the lock length in days.
func (p *Position) Duration() uint32 {
	return uint32((p.ExpiresAt - p.StakedAt) / thor.SecondsPerDay)
}

func (p *Position) IsWithdrawn() bool {
	return p.WithdrawnAt != 0
}

func (p *Position) Status(now uint64) Status {
	switch {
	case p.IsWithdrawn():
		return StatusWithdrawn
	case now < p.ExpiresAt:
		return StatusActive
	default:
		return StatusExpired
	}
}

// OwnerPositions is the full ledger of one owner.
type OwnerPositions struct {
	Owner     thor.Address
	Positions []*Position
}

// WithdrawRequest identifies one position to release.
type WithdrawRequest struct {
	Owner thor.Address
	Index uint64
}

// duration in days, the key type of the allowed durations set.
type duration uint32

func (d duration) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(d))
	return b[:]
}
