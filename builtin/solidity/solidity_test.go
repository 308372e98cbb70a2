// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/builtin/gascharger"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/test/datagen"
	"github.com/vechain/lockstake/thor"
)

type TestStruct struct {
	Field1 uint64
	Field2 uint64
	Addr1  thor.Address
	Bytes1 thor.Bytes32
}

type key string

func (k key) Bytes() []byte { return []byte(k) }

// newTestContext returns a fresh Context over an in-memory state and its charger.
func newTestContext(t *testing.T) (*Context, *gascharger.Charger) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	charger := gascharger.New()
	st := state.NewStater(db).NewState()
	return NewContext(thor.Address{1}, st, charger.Charge), charger
}

func resetCharger(ctx *Context) *gascharger.Charger {
	charger := gascharger.New()
	ctx.charger = charger.Charge
	return charger
}

func newRandomStruct() *TestStruct {
	return &TestStruct{
		Field1: 100,
		Field2: 200,
		Addr1:  datagen.RandAddress(),
		Bytes1: datagen.RandomHash(),
	}
}

func TestMapping_StructPointer(t *testing.T) {
	ctx, charger := newTestContext(t)
	mapping := NewMapping[thor.Bytes32, *TestStruct](ctx, thor.Bytes32{1})
	k := datagen.RandomHash()
	value := newRandomStruct()

	t.Run("set new value charges SstoreSetGas per word", func(t *testing.T) {
		require.NoError(t, mapping.Set(k, value))
		assert.Equal(t, 2*thor.SstoreSetGas, charger.TotalGas())
	})

	t.Run("get existing value charges SloadGas per word", func(t *testing.T) {
		charger := resetCharger(ctx)
		got, err := mapping.Get(k)
		require.NoError(t, err)
		assert.Equal(t, value, got)
		assert.Equal(t, 2*thor.SloadGas, charger.TotalGas())
	})

	t.Run("overwrite charges SstoreResetGas", func(t *testing.T) {
		charger := resetCharger(ctx)
		require.NoError(t, mapping.Set(k, newRandomStruct()))
		assert.Equal(t, 2*thor.SstoreResetGas, charger.TotalGas())
	})

	t.Run("set nil clears storage for free", func(t *testing.T) {
		charger := resetCharger(ctx)
		require.NoError(t, mapping.Set(k, nil))
		assert.Zero(t, charger.TotalGas())

		got, err := mapping.Get(k)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("get empty key charges one SloadGas", func(t *testing.T) {
		charger := resetCharger(ctx)
		got, err := mapping.Get(datagen.RandomHash())
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Equal(t, thor.SloadGas, charger.TotalGas())
	})
}

func TestMapping_DistinctBases(t *testing.T) {
	ctx, _ := newTestContext(t)
	m1 := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{1})
	m2 := NewMapping[thor.Address, uint64](ctx, thor.Bytes32{2})
	addr := datagen.RandAddress()

	require.NoError(t, m1.Set(addr, 7))
	v, err := m2.Get(addr)
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = m1.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), v)
}

func TestValue(t *testing.T) {
	ctx, _ := newTestContext(t)
	v := NewValue[*big.Int](ctx, thor.BytesToBytes32([]byte("value")))

	got, err := v.Get()
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, v.Set(big.NewInt(42)))
	got, err = v.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), got)
}

func TestUint256(t *testing.T) {
	ctx, charger := newTestContext(t)
	u := NewUint256(ctx, thor.BytesToBytes32([]byte("total")))

	require.NoError(t, u.Add(big.NewInt(100)))
	require.NoError(t, u.Sub(big.NewInt(30)))

	got, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(70), got)
	assert.Equal(t, 3*thor.SloadGas+thor.SstoreSetGas+thor.SstoreResetGas, charger.TotalGas())

	assert.ErrorIs(t, u.Sub(big.NewInt(71)), errUint256Range)
	assert.ErrorIs(t, u.Set(new(big.Int).Lsh(big.NewInt(1), 256)), errUint256Range)
}

func TestArray(t *testing.T) {
	ctx, _ := newTestContext(t)
	arr := NewArray[*TestStruct](ctx, thor.BytesToBytes32([]byte("array")))

	length, err := arr.Len()
	require.NoError(t, err)
	assert.Zero(t, length)

	_, err = arr.Get(0)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	items := []*TestStruct{newRandomStruct(), newRandomStruct(), newRandomStruct()}
	for i, item := range items {
		idx, err := arr.Push(item)
		require.NoError(t, err)
		assert.Equal(t, uint64(i), idx)
	}

	got, err := arr.Get(1)
	require.NoError(t, err)
	assert.Equal(t, items[1], got)

	updated := newRandomStruct()
	require.NoError(t, arr.Set(1, updated))
	assert.ErrorIs(t, arr.Set(3, updated), ErrOutOfBounds)

	all, err := arr.All()
	require.NoError(t, err)
	assert.Equal(t, []*TestStruct{items[0], updated, items[2]}, all)
}

func TestSet(t *testing.T) {
	ctx, _ := newTestContext(t)
	set := NewSet[key](ctx, thor.BytesToBytes32([]byte("set")))

	for _, k := range []key{"b", "a", "b", "c", "a"} {
		_, err := set.Add(k)
		require.NoError(t, err)
	}

	added, err := set.Add("a")
	require.NoError(t, err)
	assert.False(t, added)

	added, err = set.Add("d")
	require.NoError(t, err)
	assert.True(t, added)

	values, err := set.Values()
	require.NoError(t, err)
	assert.Equal(t, []key{"b", "a", "c", "d"}, values)

	length, err := set.Len()
	require.NoError(t, err)
	assert.Equal(t, uint64(4), length)

	first, err := set.At(0)
	require.NoError(t, err)
	assert.Equal(t, key("b"), first)

	ok, err := set.Contains("z")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckpointRevert(t *testing.T) {
	ctx, _ := newTestContext(t)
	arr := NewArray[uint64](ctx, thor.BytesToBytes32([]byte("array")))

	_, err := arr.Push(1)
	require.NoError(t, err)

	chk := ctx.State().NewCheckpoint()
	_, err = arr.Push(2)
	require.NoError(t, err)
	ctx.State().RevertTo(chk)

	all, err := arr.All()
	require.NoError(t, err)
	assert.Equal(t, []uint64{1}, all)
}
