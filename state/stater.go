// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/vechain/lockstake/cache"
	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/thor"
)

const (
	accountBucket = kv.Bucket("a")
	storageBucket = kv.Bucket("s")
	metaBucket    = kv.Bucket("m")

	rootKey = "root"

	readCacheSize = 16384
)

// Stater is the state creator. It owns the store and a read cache of committed
// values shared by every State it creates.
type Stater struct {
	store    kv.Store
	accounts kv.Store
	storages kv.Store
	meta     kv.Store
	cache    *cache.LRU[string, []byte]
}

// NewStater create a new stater.
func NewStater(store kv.Store) *Stater {
	c, _ := cache.NewLRU[string, []byte](readCacheSize)
	return &Stater{
		store:    store,
		accounts: accountBucket.NewStore(store),
		storages: storageBucket.NewStore(store),
		meta:     metaBucket.NewStore(store),
		cache:    c,
	}
}

// NewState create a new state object over the last committed data.
func (s *Stater) NewState() *State {
	return newState(s)
}

// Root returns the root of the last commit, zero if nothing was ever committed.
func (s *Stater) Root() (thor.Bytes32, error) {
	data, err := s.meta.Get([]byte(rootKey))
	if err != nil {
		if s.meta.IsNotFound(err) {
			return thor.Bytes32{}, nil
		}
		return thor.Bytes32{}, &Error{err}
	}
	return thor.BytesToBytes32(data), nil
}

// CacheStats returns hit and miss counts of the read cache.
func (s *Stater) CacheStats() (hit, miss int64) {
	return s.cache.Stats()
}

func (s *Stater) read(target string, store kv.Store, key []byte) ([]byte, error) {
	ck := target + string(key)
	if v, ok := s.cache.Get(ck); ok {
		metricStateRead().AddWithLabel(1, map[string]string{"target": target, "cache": "hit"})
		return v, nil
	}
	metricStateRead().AddWithLabel(1, map[string]string{"target": target, "cache": "miss"})

	v, err := store.Get(key)
	if err != nil {
		if !store.IsNotFound(err) {
			return nil, err
		}
		v = nil
	}
	s.cache.Add(ck, v)
	return v, nil
}

func (s *Stater) loadAccount(addr thor.Address) (*Account, error) {
	data, err := s.read("account", s.accounts, addr[:])
	if err != nil {
		return nil, err
	}
	return decodeAccount(data)
}

func (s *Stater) loadStorage(addr thor.Address, key thor.Bytes32) ([]byte, error) {
	return s.read("storage", s.storages, storageKey{addr: addr, key: key}.bytes())
}
