// Copyright (c) 2019 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/lockstake/kv"
	"github.com/vechain/lockstake/thor"
)

type change struct {
	target string
	key    []byte
	value  []byte // nil means delete
}

// Stage abstracts changes on the world state.
type Stage struct {
	stater  *Stater
	root    thor.Bytes32
	changes []change
}

func newStage(stater *Stater, parent thor.Bytes32, accounts map[thor.Address]*Account, storage map[storageKey]rlp.RawValue) (*Stage, error) {
	changes := make([]change, 0, len(accounts)+len(storage))
	for addr, acc := range accounts {
		data, err := encodeAccount(acc)
		if err != nil {
			return nil, &Error{err}
		}
		changes = append(changes, change{"account", bytes.Clone(addr[:]), data})
	}
	for key, raw := range storage {
		var value []byte
		if len(raw) > 0 {
			value = raw
		}
		changes = append(changes, change{"storage", key.bytes(), value})
	}

	slices.SortFunc(changes, func(a, b change) int {
		if a.target != b.target {
			return bytes.Compare([]byte(a.target), []byte(b.target))
		}
		return bytes.Compare(a.key, b.key)
	})

	// the root chains the parent root with every change, so equal roots mean equal histories
	root := parent
	if len(changes) > 0 {
		root = thor.Blake2bFn(func(w io.Writer) {
			w.Write(parent[:])
			for _, c := range changes {
				w.Write([]byte(c.target))
				w.Write(c.key)
				w.Write(c.value)
			}
		})
	}

	return &Stage{
		stater:  stater,
		root:    root,
		changes: changes,
	}, nil
}

// Hash returns the root the state will have after commit.
func (s *Stage) Hash() thor.Bytes32 {
	return s.root
}

// Len returns the number of changed entries.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Commit writes all changes and the new root in one atomic batch.
func (s *Stage) Commit() (thor.Bytes32, error) {
	if len(s.changes) == 0 {
		return s.root, nil
	}

	batch := s.stater.store.NewBatch()
	putters := map[string]kv.Putter{
		"account": accountBucket.NewPutter(batch),
		"storage": storageBucket.NewPutter(batch),
	}
	for _, c := range s.changes {
		var err error
		if len(c.value) == 0 {
			err = putters[c.target].Delete(c.key)
		} else {
			err = putters[c.target].Put(c.key, c.value)
		}
		if err != nil {
			return thor.Bytes32{}, &Error{err}
		}
	}
	if err := metaBucket.NewPutter(batch).Put([]byte(rootKey), s.root[:]); err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	if err := batch.Write(); err != nil {
		return thor.Bytes32{}, &Error{err}
	}

	// refresh the read cache with what is now on disk
	for _, c := range s.changes {
		s.stater.cache.Add(c.target+string(c.key), c.value)
		metricStateChanges().AddWithLabel(1, map[string]string{"target": c.target})
	}
	return s.root, nil
}
