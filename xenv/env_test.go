// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv_test

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/abi"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/test/datagen"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

const eventABI = `[{"type":"event","name":"Ping","anonymous":false,"inputs":[
	{"name":"from","type":"address","indexed":true},
	{"name":"value","type":"uint256","indexed":false}]}]`

func newEnv(t *testing.T) (*xenv.Environment, *abi.Event) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	a, err := abi.New([]byte(eventABI))
	require.NoError(t, err)
	ev, ok := a.EventByName("Ping")
	require.True(t, ok)

	env := xenv.New(
		state.NewStater(db).NewState(),
		&xenv.BlockContext{Number: 1, Time: 100},
		&xenv.TransactionContext{ID: datagen.RandomHash(), Origin: datagen.RandAddress()},
		datagen.RandAddress(),
		nil,
	)
	return env, ev
}

func TestLog(t *testing.T) {
	env, ev := newEnv(t)
	addr := datagen.RandAddress()
	from := thor.BytesToBytes32(env.Caller().Bytes())

	require.NoError(t, env.Log(ev, addr, []thor.Bytes32{from}, big.NewInt(10)))

	require.Len(t, env.Events(), 1)
	logged := env.Events()[0]
	assert.Equal(t, addr, logged.Address)
	assert.Equal(t, []thor.Bytes32{ev.ID(), from}, logged.Topics)
	assert.Len(t, logged.Data, 32)
	assert.Equal(t, thor.LogGas+2*thor.LogTopicGas+32*thor.LogDataGas, env.Charger().TotalGas())

	assert.Error(t, env.Log(ev, addr, nil, "not a number"))
	assert.Len(t, env.Events(), 1)
}

func TestWithCaller(t *testing.T) {
	env, ev := newEnv(t)
	other := datagen.RandAddress()

	sub := env.WithCaller(other)
	assert.Equal(t, other, sub.Caller())
	assert.NotEqual(t, other, env.Caller())
	assert.Same(t, env.State(), sub.State())

	require.NoError(t, sub.Log(ev, other, nil, big.NewInt(1)))
	sub.Transfer(other, env.Caller(), big.NewInt(5))
	assert.Len(t, env.Events(), 1)
	assert.Len(t, env.Transfers(), 1)
	assert.Equal(t, sub.Charger().TotalGas(), env.Charger().TotalGas())
}

func TestCheckpoint(t *testing.T) {
	env, ev := newEnv(t)
	addr := datagen.RandAddress()

	require.NoError(t, env.Log(ev, addr, nil, big.NewInt(1)))
	require.NoError(t, env.State().SetBalance(addr, big.NewInt(1)))

	outer := env.NewCheckpoint()
	env.Transfer(addr, env.Caller(), big.NewInt(1))
	require.NoError(t, env.State().SetBalance(addr, big.NewInt(2)))

	inner := env.NewCheckpoint()
	require.NoError(t, env.Log(ev, addr, nil, big.NewInt(2)))
	require.NoError(t, env.State().SetBalance(addr, big.NewInt(3)))

	env.RevertTo(inner)
	assert.Len(t, env.Events(), 1)
	assert.Len(t, env.Transfers(), 1)
	bal, err := env.State().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2), bal)

	env.RevertTo(outer)
	assert.Len(t, env.Events(), 1)
	assert.Empty(t, env.Transfers())
	bal, err = env.State().GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), bal)

	// checkpoints can be taken again after a revert
	again := env.NewCheckpoint()
	require.NoError(t, env.Log(ev, addr, nil, big.NewInt(3)))
	env.RevertTo(again)
	assert.Len(t, env.Events(), 1)
}
