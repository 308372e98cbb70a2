// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"errors"
	"math/big"

	"github.com/vechain/lockstake/thor"
)

var errUint256Range = errors.New("value out of uint256 range")

// Uint256 is a wrapper for storage and retrieval of an uint256. Similar to storing an uint256 in a smart contract.
type Uint256 struct {
	context *Context
	pos     thor.Bytes32
}

func NewUint256(context *Context, pos thor.Bytes32) *Uint256 {
	return &Uint256{context: context, pos: pos}
}

func (u *Uint256) Get() (*big.Int, error) {
	u.context.UseGas(thor.SloadGas)
	storage, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(storage.Bytes()), nil
}

func (u *Uint256) Set(value *big.Int) error {
	if value.Sign() < 0 || value.BitLen() > 256 {
		return errUint256Range
	}
	prior, err := u.context.state.GetStorage(u.context.address, u.pos)
	if err != nil {
		return err
	}
	if prior.IsZero() && value.Sign() != 0 {
		u.context.UseGas(thor.SstoreSetGas)
	} else {
		u.context.UseGas(thor.SstoreResetGas)
	}
	u.context.state.SetStorage(u.context.address, u.pos, thor.BytesToBytes32(value.Bytes()))
	return nil
}

func (u *Uint256) Add(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Add(current, value))
}

func (u *Uint256) Sub(value *big.Int) error {
	current, err := u.Get()
	if err != nil {
		return err
	}
	return u.Set(current.Sub(current, value))
}
