// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package lvldb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/kv"
)

func stores(t *testing.T) []*LevelDB {
	disk, err := New(filepath.Join(t.TempDir(), "db"), Options{16, 16})
	require.NoError(t, err)
	t.Cleanup(func() { disk.Close() })

	mem, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { mem.Close() })

	return []*LevelDB{disk, mem}
}

func TestLevelDB(t *testing.T) {
	var (
		key        = []byte("123")
		value      = []byte("456")
		inValidKey = []byte("abc")
	)

	for _, db := range stores(t) {
		require.NoError(t, db.Put(key, value))

		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)

		has, err := db.Has(key)
		require.NoError(t, err)
		assert.True(t, has)

		has, err = db.Has(inValidKey)
		require.NoError(t, err)
		assert.False(t, has)

		require.NoError(t, db.Delete(key))
		_, err = db.Get(key)
		assert.True(t, db.IsNotFound(err))
	}
}

func TestLevelDBBatch(t *testing.T) {
	for _, db := range stores(t) {
		batch := db.NewBatch()
		require.NoError(t, batch.Put([]byte("a"), []byte("1")))
		require.NoError(t, batch.Put([]byte("b"), []byte("2")))
		require.NoError(t, batch.Delete([]byte("a")))
		assert.Equal(t, 3, batch.Len())

		_, err := db.Get([]byte("b"))
		assert.True(t, db.IsNotFound(err), "nothing visible before write")

		require.NoError(t, batch.Write())
		got, err := db.Get([]byte("b"))
		require.NoError(t, err)
		assert.Equal(t, []byte("2"), got)

		_, err = db.Get([]byte("a"))
		assert.True(t, db.IsNotFound(err))
	}
}

func TestBucketIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("other"), []byte("x")))

	store := kv.Bucket("s/").NewStore(db)
	batch := store.NewBatch()
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, batch.Put([]byte(k), []byte(k+k)))
	}
	require.NoError(t, batch.Write())

	pairs, err := kv.Collect(store.Iterate(kv.Range{}))
	require.NoError(t, err)
	require.Len(t, pairs, 3)
	for i, k := range []string{"a", "b", "c"} {
		assert.Equal(t, k, string(pairs[i].Key))
		assert.Equal(t, k+k, string(pairs[i].Value))
	}

	pairs, err = kv.Collect(store.Iterate(kv.Range{Start: []byte("b")}))
	require.NoError(t, err)
	assert.Len(t, pairs, 2)
}
