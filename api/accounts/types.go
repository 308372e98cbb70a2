// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/lockstake/thor"
)

// Account for marshal account
type Account struct {
	Balance *math.HexOrDecimal256 `json:"balance"`
	HasCode bool                  `json:"hasCode"`
}

// TransferRequest moves native value from caller to to.
type TransferRequest struct {
	Caller *thor.Address         `json:"caller"`
	To     *thor.Address         `json:"to"`
	Value  *math.HexOrDecimal256 `json:"value"`
}
