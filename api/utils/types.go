// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
)

// Event is an event in a receipt.
type Event struct {
	Address thor.Address   `json:"address"`
	Topics  []thor.Bytes32 `json:"topics"`
	Data    hexutil.Bytes  `json:"data"`
}

// Transfer is a native value transfer in a receipt.
type Transfer struct {
	Sender    thor.Address          `json:"sender"`
	Recipient thor.Address          `json:"recipient"`
	Amount    *math.HexOrDecimal256 `json:"amount"`
}

// Receipt is the outcome of a committed call.
type Receipt struct {
	ID           thor.Bytes32  `json:"id"`
	BlockNumber  uint32        `json:"blockNumber"`
	BlockTime    uint64        `json:"blockTime"`
	Origin       thor.Address  `json:"origin"`
	GasUsed      uint64        `json:"gasUsed"`
	Reverted     bool          `json:"reverted"`
	RevertReason string        `json:"revertReason,omitempty"`
	Output       hexutil.Bytes `json:"output"`
	Events       []*Event      `json:"events"`
	Transfers    []*Transfer   `json:"transfers"`
}

// ConvertReceipt converts a receipt into its json form.
func ConvertReceipt(r *tx.Receipt) *Receipt {
	receipt := &Receipt{
		ID:           r.ID,
		BlockNumber:  r.BlockNumber,
		BlockTime:    r.BlockTime,
		Origin:       r.Origin,
		GasUsed:      r.GasUsed,
		Reverted:     r.Reverted,
		RevertReason: r.RevertReason,
		Output:       r.Output,
		Events:       make([]*Event, 0, len(r.Events)),
		Transfers:    make([]*Transfer, 0, len(r.Transfers)),
	}
	for _, e := range r.Events {
		receipt.Events = append(receipt.Events, &Event{
			Address: e.Address,
			Topics:  e.Topics,
			Data:    e.Data,
		})
	}
	for _, t := range r.Transfers {
		receipt.Transfers = append(receipt.Transfers, &Transfer{
			Sender:    t.Sender,
			Recipient: t.Recipient,
			Amount:    (*math.HexOrDecimal256)(t.Amount),
		})
	}
	return receipt
}

// BigInt returns the value of a json amount, with a descriptive error when missing or negative.
func BigInt(v *math.HexOrDecimal256, name string) (*big.Int, error) {
	if v == nil {
		return nil, fmt.Errorf("%s: missing", name)
	}
	value := (*big.Int)(v)
	if value.Sign() < 0 {
		return nil, fmt.Errorf("%s: negative", name)
	}
	return value, nil
}

// AddressVar parses the named path variable as an address.
func AddressVar(vars map[string]string, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(vars[name])
	if err != nil {
		return thor.Address{}, BadRequest(errors.WithMessage(err, name))
	}
	return addr, nil
}
