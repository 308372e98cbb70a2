// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/lockstake/thor"
)

type Info struct {
	Address     thor.Address          `json:"address"`
	Name        string                `json:"name"`
	Symbol      string                `json:"symbol"`
	FeeBps      uint64                `json:"feeBps"`
	TotalSupply *math.HexOrDecimal256 `json:"totalSupply"`
}

type Balance struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
}

type Allowance struct {
	Allowance *math.HexOrDecimal256 `json:"allowance"`
}

type ApproveRequest struct {
	Caller  *thor.Address         `json:"caller"`
	Spender *thor.Address         `json:"spender"`
	Amount  *math.HexOrDecimal256 `json:"amount"`
}

type TransferRequest struct {
	Caller *thor.Address         `json:"caller"`
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}

type MintRequest struct {
	To     *thor.Address         `json:"to"`
	Amount *math.HexOrDecimal256 `json:"amount"`
}
