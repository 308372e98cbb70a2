// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/builtin/token"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/test/datagen"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
	"github.com/vechain/lockstake/xenv"
)

const start = uint64(1_700_000_000)

type fixture struct {
	state *state.State
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	f := &fixture{state: state.NewStater(db).NewState()}
	env := f.env(thor.Address{}, start)
	require.NoError(t, builtin.Token.Native(env).Initialize(token.Config{Name: "Lock Token", Symbol: "LCK"}))
	require.NoError(t, builtin.Staking.Native(env).Initialize(&staking.Config{
		Asset:     builtin.Token.Address,
		Min:       big.NewInt(1000),
		Max:       big.NewInt(1_000_000),
		Durations: []uint64{30, 60, 90},
	}))
	return f
}

func (f *fixture) env(caller thor.Address, now uint64) *xenv.Environment {
	return xenv.New(
		f.state,
		&xenv.BlockContext{Number: 1, Time: now},
		&xenv.TransactionContext{ID: datagen.RandomHash(), Origin: caller},
		caller,
		nil,
	)
}

func (f *fixture) call(t *testing.T, env *xenv.Environment, to thor.Address, method string, args ...any) ([]byte, error) {
	contract := builtin.Staking.MustMethod
	if to == builtin.Token.Address {
		contract = builtin.Token.MustMethod
	}
	input, err := contract(method).EncodeInput(args...)
	require.NoError(t, err)
	return builtin.Call(env, to, input, false)
}

func (f *fixture) stake(t *testing.T, owner thor.Address, amount int64, days uint32) *xenv.Environment {
	require.NoError(t, builtin.Token.Native(f.env(thor.Address{}, start)).Mint(owner, big.NewInt(amount)))
	env := f.env(owner, start)
	_, err := f.call(t, env, builtin.Token.Address, "approve", common.Address(builtin.Staking.Address), big.NewInt(amount))
	require.NoError(t, err)
	_, err = f.call(t, env, builtin.Staking.Address, "stake", big.NewInt(amount), days)
	require.NoError(t, err)
	return env
}

func findEvent(events tx.Events, id thor.Bytes32) *tx.Event {
	for _, ev := range events {
		if ev.Topics[0] == id {
			return ev
		}
	}
	return nil
}

type positionData struct {
	Amount      *big.Int
	Duration    uint32
	StakedAt    uint64
	ExpiresAt   uint64
	WithdrawnAt uint64
}

func TestContracts(t *testing.T) {
	assert.Equal(t, thor.BytesToAddress([]byte("Staking")), builtin.Staking.Address)
	assert.Equal(t, thor.BytesToAddress([]byte("Token")), builtin.Token.Address)
	assert.True(t, builtin.IsContract(builtin.Staking.Address))
	assert.False(t, builtin.IsContract(datagen.RandAddress()))

	id := builtin.Staking.MustMethod("stake").ID()
	m, found := builtin.FindMethod(builtin.Staking.Address, id[:])
	require.True(t, found)
	assert.Equal(t, "stake", m.Name())
	_, found = builtin.FindMethod(builtin.Token.Address, id[:])
	assert.False(t, found)

	assert.Panics(t, func() { builtin.Staking.MustMethod("mint") })
}

func TestStakeCall(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	env := f.stake(t, alice, 5000, 30)

	ev := findEvent(env.Events(), builtin.Staking.MustEvent("Staked").ID())
	require.NotNil(t, ev)
	assert.Equal(t, builtin.Staking.Address, ev.Address)
	require.Len(t, ev.Topics, 3)
	assert.Equal(t, thor.BytesToBytes32(alice.Bytes()), ev.Topics[1])
	assert.Equal(t, thor.Bytes32{}, ev.Topics[2])

	var data positionData
	require.NoError(t, builtin.Staking.MustEvent("Staked").Decode(ev.Data, &data))
	assert.Equal(t, big.NewInt(5000), data.Amount)
	assert.Equal(t, uint32(30), data.Duration)
	assert.Equal(t, start, data.StakedAt)
	assert.Equal(t, start+30*thor.SecondsPerDay, data.ExpiresAt)
	assert.Zero(t, data.WithdrawnAt)

	assert.NotNil(t, findEvent(env.Events(), builtin.Token.MustEvent("Transfer").ID()))
	assert.NotNil(t, findEvent(env.Events(), builtin.Token.MustEvent("Approval").ID()))
	assert.NotZero(t, env.Charger().TotalGas())
}

func TestStakeCallInvalidDuration(t *testing.T) {
	f := newFixture(t)
	env := f.env(datagen.RandAddress(), start)

	_, err := f.call(t, env, builtin.Staking.Address, "stake", big.NewInt(5000), uint32(45))
	assert.True(t, errors.Is(err, reverts.ErrInvalidDuration))
	assert.Empty(t, env.Events())
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	f.stake(t, alice, 5000, 30)
	f.stake(t, alice, 2000, 90)
	env := f.env(datagen.RandAddress(), start)

	view := func(method string, v any, args ...any) {
		m := builtin.Staking.MustMethod(method)
		require.True(t, m.Const(), method)
		input, err := m.EncodeInput(args...)
		require.NoError(t, err)
		out, err := builtin.Call(env, builtin.Staking.Address, input, true)
		require.NoError(t, err)
		require.NoError(t, m.DecodeOutput(out, v))
	}

	var allowed bool
	view("isAllowedDuration", &allowed, uint32(60))
	assert.True(t, allowed)
	view("isAllowedDuration", &allowed, uint32(45))
	assert.False(t, allowed)

	var durations []uint32
	view("allowedDurations", &durations)
	assert.Equal(t, []uint32{30, 60, 90}, durations)

	var count *big.Int
	view("positionCount", &count, common.Address(alice))
	assert.Equal(t, big.NewInt(2), count)

	var p positionData
	view("getPosition", &p, common.Address(alice), big.NewInt(1))
	assert.Equal(t, big.NewInt(2000), p.Amount)
	assert.Equal(t, uint32(90), p.Duration)

	var positions struct {
		Amounts     []*big.Int
		StakedAt    []uint64
		ExpiresAt   []uint64
		WithdrawnAt []uint64
	}
	view("positionsOf", &positions, common.Address(alice))
	assert.Equal(t, []*big.Int{big.NewInt(5000), big.NewInt(2000)}, positions.Amounts)
	assert.Equal(t, []uint64{0, 0}, positions.WithdrawnAt)

	var owners []common.Address
	view("allOwners", &owners)
	assert.Equal(t, []common.Address{common.Address(alice)}, owners)

	var cfg struct {
		Asset     common.Address
		MinAmount *big.Int
		MaxAmount *big.Int
	}
	view("config", &cfg)
	assert.Equal(t, common.Address(builtin.Token.Address), cfg.Asset)
	assert.Equal(t, big.NewInt(1000), cfg.MinAmount)

	var total *big.Int
	view("totalStaked", &total)
	assert.Equal(t, big.NewInt(7000), total)

	input, err := builtin.Staking.MustMethod("getPosition").EncodeInput(common.Address(alice), big.NewInt(2))
	require.NoError(t, err)
	_, err = builtin.Call(env, builtin.Staking.Address, input, true)
	assert.True(t, errors.Is(err, reverts.ErrIndexOutOfRange))
}

func TestWithdrawCall(t *testing.T) {
	f := newFixture(t)
	alice := datagen.RandAddress()
	bob := datagen.RandAddress()
	f.stake(t, alice, 5000, 30)
	f.stake(t, bob, 3000, 60)

	owners := []common.Address{common.Address(alice), common.Address(bob)}
	indices := []*big.Int{big.NewInt(0), big.NewInt(0)}

	// bob's position is still locked, the whole batch fails
	env := f.env(datagen.RandAddress(), start+30*thor.SecondsPerDay)
	_, err := f.call(t, env, builtin.Staking.Address, "withdraw", owners, indices)
	assert.True(t, errors.Is(err, reverts.ErrNotYetExpired))
	assert.Empty(t, env.Events())

	_, err = f.call(t, env, builtin.Staking.Address, "withdraw", owners, indices[:1])
	assert.Equal(t, "builtin: arguments length mismatch", err.Error())

	env = f.env(datagen.RandAddress(), start+60*thor.SecondsPerDay)
	_, err = f.call(t, env, builtin.Staking.Address, "withdraw", owners, indices)
	require.NoError(t, err)

	unstaked := builtin.Staking.MustEvent("Unstaked").ID()
	var got []thor.Bytes32
	for _, ev := range env.Events() {
		if ev.Topics[0] == unstaked {
			got = append(got, ev.Topics[1])
		}
	}
	assert.Equal(t, []thor.Bytes32{thor.BytesToBytes32(alice.Bytes()), thor.BytesToBytes32(bob.Bytes())}, got)

	bal, err := builtin.Token.WithState(f.state).BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(5000), bal)

	_, err = f.call(t, env, builtin.Staking.Address, "withdraw", owners[:1], indices[:1])
	assert.True(t, errors.Is(err, reverts.ErrAlreadyWithdrawn))
}

func TestCallErrors(t *testing.T) {
	f := newFixture(t)
	env := f.env(datagen.RandAddress(), start)

	_, err := builtin.Call(env, builtin.Staking.Address, []byte{1, 2}, false)
	assert.True(t, reverts.IsRevertErr(err))

	_, err = builtin.Call(env, builtin.Staking.Address, []byte{1, 2, 3, 4}, false)
	assert.EqualError(t, err, "builtin: method not found")

	input, err := builtin.Staking.MustMethod("stake").EncodeInput(big.NewInt(5000), uint32(30))
	require.NoError(t, err)
	_, err = builtin.Call(env, builtin.Staking.Address, input, true)
	assert.EqualError(t, err, "builtin: write protection")

	// truncated arguments
	_, err = builtin.Call(env, builtin.Staking.Address, input[:20], false)
	assert.True(t, reverts.IsRevertErr(err))
}

func TestReceive(t *testing.T) {
	f := newFixture(t)
	env := f.env(datagen.RandAddress(), start)

	err := builtin.Receive(env, builtin.Staking.Address, big.NewInt(1))
	assert.True(t, errors.Is(err, reverts.ErrNativeTransferRejected))
	assert.Error(t, builtin.Receive(env, builtin.Token.Address, big.NewInt(1)))
	assert.NoError(t, builtin.Receive(env, datagen.RandAddress(), big.NewInt(1)))
}
