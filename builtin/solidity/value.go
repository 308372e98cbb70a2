// Copyright (c) 2026 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"reflect"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/lockstake/thor"
)

// load decodes the rlp value stored at pos. An empty slot yields the zero value of V.
func load[V any](ctx *Context, pos thor.Bytes32) (value V, err error) {
	err = ctx.state.DecodeStorage(ctx.address, pos, func(raw []byte) error {
		ctx.UseGas(toWordSize(len(raw)) * thor.SloadGas)
		if len(raw) == 0 {
			return nil
		}
		return rlp.DecodeBytes(raw, &value)
	})
	return
}

// store rlp encodes value at pos. Zero values clear the slot for free.
func store[V any](ctx *Context, pos thor.Bytes32, value V) error {
	if isZero(value) {
		ctx.state.SetRawStorage(ctx.address, pos, nil)
		return nil
	}
	prior, err := ctx.state.GetRawStorage(ctx.address, pos)
	if err != nil {
		return err
	}
	return ctx.state.EncodeStorage(ctx.address, pos, func() ([]byte, error) {
		raw, err := rlp.EncodeToBytes(value)
		if err != nil {
			return nil, err
		}
		if len(prior) == 0 {
			ctx.UseGas(toWordSize(len(raw)) * thor.SstoreSetGas)
		} else {
			ctx.UseGas(toWordSize(len(raw)) * thor.SstoreResetGas)
		}
		return raw, nil
	})
}

func isZero(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || rv.IsZero()
}

// Value is a single storage variable, like a state variable of a solidity contract.
type Value[V any] struct {
	context *Context
	pos     thor.Bytes32
}

func NewValue[V any](context *Context, pos thor.Bytes32) *Value[V] {
	return &Value[V]{context: context, pos: pos}
}

func (v *Value[V]) Get() (V, error) {
	return load[V](v.context, v.pos)
}

func (v *Value[V]) Set(value V) error {
	return store(v.context, v.pos, value)
}
