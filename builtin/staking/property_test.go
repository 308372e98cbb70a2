// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/thor"
)

type opKind uint8

const (
	opStake opKind = iota
	opWithdraw
	opAdvance
	opKinds
)

type withdrawPick struct {
	Staker uint8
	Index  uint8
}

type ledgerOp struct {
	Kind     uint8
	Staker   uint8
	Amount   uint32
	Duration uint8
	Days     uint8
	Requests []withdrawPick
}

var fuzzDurations = []uint32{30, 60, 90, 45}

// shortBatches keeps withdraw batches small enough to succeed now and then.
func shortBatches(op *ledgerOp, c fuzz.Continue) {
	c.FuzzNoCustom(op)
	if len(op.Requests) > 3 {
		op.Requests = op.Requests[:1+c.Intn(3)]
	}
}

type propertyRun struct {
	l         *testLedger
	stakers   []thor.Address
	now       uint64
	withdrawn map[WithdrawRequest]uint64
	counts    map[thor.Address]uint64
}

func newPropertyRun(t *testing.T, feeBps uint64) *propertyRun {
	l := newTestLedger(t, withFee(feeBps))
	run := &propertyRun{
		l:         l,
		now:       start,
		withdrawn: make(map[WithdrawRequest]uint64),
		counts:    make(map[thor.Address]uint64),
	}
	for range 4 {
		run.stakers = append(run.stakers, l.newStaker(1_000_000_000))
	}
	return run
}

func (r *propertyRun) apply(t *testing.T, op *ledgerOp) {
	var err error
	switch opKind(op.Kind) % opKinds {
	case opStake:
		staker := r.stakers[int(op.Staker)%len(r.stakers)]
		amount := big.NewInt(int64(op.Amount % 1_200_000))
		_, err = r.l.staking.Stake(staker, amount, fuzzDurations[int(op.Duration)%len(fuzzDurations)], r.now)
	case opWithdraw:
		requests := make([]WithdrawRequest, 0, len(op.Requests))
		for _, pick := range op.Requests {
			requests = append(requests, WithdrawRequest{
				Owner: r.stakers[int(pick.Staker)%len(r.stakers)],
				Index: uint64(pick.Index % 8),
			})
		}
		err = r.l.staking.Withdraw(requests, r.now)
	case opAdvance:
		r.now += uint64(op.Days%100) * day
	}
	if err != nil {
		require.True(t, reverts.IsRevertErr(err), "unexpected failure: %v", err)
	}
	r.check(t)
}

// check asserts conservation, one-shot withdrawal and append-only positions.
func (r *propertyRun) check(t *testing.T) {
	r.l.checkConservation()

	for _, owner := range r.stakers {
		positions, err := r.l.staking.PositionsOf(owner)
		require.NoError(t, err)
		require.GreaterOrEqual(t, uint64(len(positions)), r.counts[owner])
		r.counts[owner] = uint64(len(positions))

		for i, p := range positions {
			require.Equal(t, p.ExpiresAt, p.StakedAt+thor.DaysToSeconds(p.Duration()))
			key := WithdrawRequest{owner, uint64(i)}
			if at, ok := r.withdrawn[key]; ok {
				require.Equal(t, at, p.WithdrawnAt, "withdrawal mark must never change")
			} else if p.IsWithdrawn() {
				require.GreaterOrEqual(t, p.WithdrawnAt, p.ExpiresAt)
				r.withdrawn[key] = p.WithdrawnAt
			}
		}
	}

	owners, err := r.l.staking.AllOwners()
	require.NoError(t, err)
	for _, owner := range owners {
		require.NotZero(t, r.counts[owner], "owners must have positions")
	}
}

func TestConservationRandomized(t *testing.T) {
	for seed := int64(1); seed <= 8; seed++ {
		var ops []ledgerOp
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(20, 60).Funcs(shortBatches).Fuzz(&ops)

		for _, fee := range []uint64{0, 250} {
			run := newPropertyRun(t, fee)
			for i := range ops {
				run.apply(t, &ops[i])
			}
		}
	}
}

func FuzzLedgerConservation(f *testing.F) {
	f.Add([]byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	f.Add([]byte("stake then withdraw after the lock expired"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var ops []ledgerOp
		fuzz.NewFromGoFuzz(data).NilChance(0).NumElements(1, 30).Funcs(shortBatches).Fuzz(&ops)

		run := newPropertyRun(t, uint64(len(data)%3)*100)
		for i := range ops {
			run.apply(t, &ops[i])
		}
	})
}
