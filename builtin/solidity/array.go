// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"encoding/binary"
	"errors"

	"github.com/vechain/lockstake/thor"
)

// ErrOutOfBounds is returned when an array index is not below its length.
var ErrOutOfBounds = errors.New("array index out of bounds")

// Array is a dynamic array in storage. The length lives at basePos and
// element i at blake2b(basePos, i).
type Array[V any] struct {
	context *Context
	basePos thor.Bytes32
	length  *Value[uint64]
}

func NewArray[V any](context *Context, pos thor.Bytes32) *Array[V] {
	return &Array[V]{
		context: context,
		basePos: pos,
		length:  NewValue[uint64](context, pos),
	}
}

func (a *Array[V]) position(index uint64) thor.Bytes32 {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], index)
	return thor.Blake2b(a.basePos.Bytes(), b[:])
}

func (a *Array[V]) Len() (uint64, error) {
	return a.length.Get()
}

func (a *Array[V]) Get(index uint64) (V, error) {
	length, err := a.Len()
	if err != nil {
		var zero V
		return zero, err
	}
	if index >= length {
		var zero V
		return zero, ErrOutOfBounds
	}
	return load[V](a.context, a.position(index))
}

// Set overwrites an existing element.
func (a *Array[V]) Set(index uint64, value V) error {
	length, err := a.Len()
	if err != nil {
		return err
	}
	if index >= length {
		return ErrOutOfBounds
	}
	return store(a.context, a.position(index), value)
}

// Push appends value and returns its index.
func (a *Array[V]) Push(value V) (uint64, error) {
	length, err := a.Len()
	if err != nil {
		return 0, err
	}
	if err := store(a.context, a.position(length), value); err != nil {
		return 0, err
	}
	if err := a.length.Set(length + 1); err != nil {
		return 0, err
	}
	return length, nil
}

// All returns every element in index order.
func (a *Array[V]) All() ([]V, error) {
	length, err := a.Len()
	if err != nil {
		return nil, err
	}
	out := make([]V, 0, length)
	for i := range length {
		v, err := load[V](a.context, a.position(i))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
