// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/lockstake/thor"
)

// Set is an enumerable set kept in insertion order. Members are never removed.
type Set[K Key] struct {
	items *Array[K]
	index *Mapping[K, uint64] // position in items plus one, zero when absent
}

func NewSet[K Key](context *Context, pos thor.Bytes32) *Set[K] {
	return &Set[K]{
		items: NewArray[K](context, pos),
		index: NewMapping[K, uint64](context, thor.Blake2b(pos.Bytes(), []byte("index"))),
	}
}

func (s *Set[K]) Contains(key K) (bool, error) {
	idx, err := s.index.Get(key)
	if err != nil {
		return false, err
	}
	return idx != 0, nil
}

// Add inserts key and reports whether it was absent.
func (s *Set[K]) Add(key K) (bool, error) {
	exists, err := s.Contains(key)
	if err != nil || exists {
		return false, err
	}
	idx, err := s.items.Push(key)
	if err != nil {
		return false, err
	}
	if err := s.index.Set(key, idx+1); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Set[K]) Len() (uint64, error) {
	return s.items.Len()
}

func (s *Set[K]) At(index uint64) (K, error) {
	return s.items.Get(index)
}

// Values returns the members in insertion order.
func (s *Set[K]) Values() ([]K, error) {
	return s.items.All()
}
