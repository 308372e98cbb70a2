// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/builtin/gascharger"
	"github.com/vechain/lockstake/builtin/token"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/test/datagen"
	"github.com/vechain/lockstake/thor"
)

const (
	day   = thor.SecondsPerDay
	start = uint64(1_700_000_000)
)

type notification struct {
	unstaked bool
	owner    thor.Address
	index    uint64
	position Position
}

// recordingHost collects notifications and rolls them back together with the state.
type recordingHost struct {
	state         *state.State
	notifications []notification
	checkpoints   map[int]int
}

func (h *recordingHost) OnStaked(owner thor.Address, index uint64, p *Position) error {
	h.notifications = append(h.notifications, notification{false, owner, index, *p})
	return nil
}

func (h *recordingHost) OnUnstaked(owner thor.Address, index uint64, p *Position) error {
	h.notifications = append(h.notifications, notification{true, owner, index, *p})
	return nil
}

func (h *recordingHost) NewCheckpoint() int {
	rev := h.state.NewCheckpoint()
	h.checkpoints[rev] = len(h.notifications)
	return rev
}

func (h *recordingHost) RevertTo(rev int) {
	h.state.RevertTo(rev)
	h.notifications = h.notifications[:h.checkpoints[rev]]
}

// assetFunc adapts a token.Caller, letting tests hook into the transfers.
type assetFunc struct {
	inner        Asset
	transferFrom func(from, to thor.Address, amount *big.Int) error
	transfer     func(to thor.Address, amount *big.Int) error
}

func (a *assetFunc) BalanceOf(addr thor.Address) (*big.Int, error) {
	return a.inner.BalanceOf(addr)
}

func (a *assetFunc) TransferFrom(from, to thor.Address, amount *big.Int) error {
	if a.transferFrom != nil {
		return a.transferFrom(from, to, amount)
	}
	return a.inner.TransferFrom(from, to, amount)
}

func (a *assetFunc) Transfer(to thor.Address, amount *big.Int) error {
	if a.transfer != nil {
		return a.transfer(to, amount)
	}
	return a.inner.Transfer(to, amount)
}

type testLedger struct {
	t       *testing.T
	state   *state.State
	token   *token.Token
	asset   *assetFunc
	host    *recordingHost
	charger *gascharger.Charger
	staking *Staking
}

type ledgerOption func(*Config, *token.Config)

func withFee(bps uint64) ledgerOption {
	return func(_ *Config, tc *token.Config) { tc.FeeBps = bps }
}

func withDurations(days ...uint64) ledgerOption {
	return func(c *Config, _ *token.Config) { c.Durations = days }
}

// newTestLedger builds a ledger with min 1000, max 1,000,000 and durations {30, 60, 90}.
func newTestLedger(t *testing.T, opts ...ledgerOption) *testLedger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.NewStater(db).NewState()
	stakingAddr := thor.BytesToAddress([]byte("staking"))

	tokenCfg := token.Config{Name: "Stake Token", Symbol: "STK"}
	cfg := &Config{
		Min:       thor.DefaultMinStake,
		Max:       thor.DefaultMaxStake,
		Durations: []uint64{30, 60, 90},
	}
	for _, opt := range opts {
		opt(cfg, &tokenCfg)
	}

	tk := token.New(thor.BytesToAddress([]byte("token")), st, nil, nil)
	require.NoError(t, tk.Initialize(tokenCfg))
	cfg.Asset = tk.Address()

	asset := &assetFunc{inner: tk.As(stakingAddr)}
	host := &recordingHost{state: st, checkpoints: make(map[int]int)}
	charger := gascharger.New()
	s := New(stakingAddr, st, &Host{Asset: asset, Events: host, Journal: host}, charger)
	require.NoError(t, s.Initialize(cfg))

	return &testLedger{
		t:       t,
		state:   st,
		token:   tk,
		asset:   asset,
		host:    host,
		charger: charger,
		staking: s,
	}
}

// newStaker funds a fresh address and approves the ledger for the whole amount.
func (l *testLedger) newStaker(funds int64) thor.Address {
	addr := datagen.RandAddress()
	l.fund(addr, funds)
	return addr
}

func (l *testLedger) fund(addr thor.Address, funds int64) {
	require.NoError(l.t, l.token.Mint(addr, big.NewInt(funds)))
	allowance, err := l.token.Allowance(addr, l.staking.Address())
	require.NoError(l.t, err)
	require.NoError(l.t, l.token.Approve(addr, l.staking.Address(), allowance.Add(allowance, big.NewInt(funds))))
}

func (l *testLedger) balance(addr thor.Address) int64 {
	bal, err := l.token.BalanceOf(addr)
	require.NoError(l.t, err)
	return bal.Int64()
}

func (l *testLedger) ledgerBalance() int64 {
	return l.balance(l.staking.Address())
}

func (l *testLedger) position(owner thor.Address, index uint64) *Position {
	p, err := l.staking.Position(owner, index)
	require.NoError(l.t, err)
	return p
}

// outstanding sums the amounts of all positions not yet withdrawn.
func (l *testLedger) outstanding() *big.Int {
	all, err := l.staking.AllPositions()
	require.NoError(l.t, err)
	sum := new(big.Int)
	for _, op := range all {
		for _, p := range op.Positions {
			if !p.IsWithdrawn() {
				sum.Add(sum, p.Amount)
			}
		}
	}
	return sum
}

// checkConservation asserts the outstanding principal is exactly what the ledger holds.
func (l *testLedger) checkConservation() {
	outstanding := l.outstanding()
	require.Equal(l.t, outstanding.Int64(), l.ledgerBalance(), "outstanding principal must equal ledger balance")
	total, err := l.staking.TotalStaked()
	require.NoError(l.t, err)
	require.Equal(l.t, 0, total.Cmp(outstanding), "total staked must equal outstanding principal")
}
