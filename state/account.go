// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
)

// Account is the stored representation of an account.
type Account struct {
	Balance *big.Int
}

func emptyAccount() *Account {
	return &Account{Balance: &big.Int{}}
}

// IsEmpty returns if an account is empty.
// An empty account has zero balance.
func (a *Account) IsEmpty() bool {
	return a.Balance.Sign() == 0
}

func decodeAccount(data []byte) (*Account, error) {
	if len(data) == 0 {
		return emptyAccount(), nil
	}
	var a Account
	if err := rlp.DecodeBytes(data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func encodeAccount(a *Account) ([]byte, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return rlp.EncodeToBytes(a)
}
