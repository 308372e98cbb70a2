// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"math/big"

	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
)

// Event represents tx.Event that can be stored in db.
type Event struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	Address     thor.Address // always a contract address
	Topics      [5]*thor.Bytes32
	Data        []byte
}

// newEvent converts tx.Event to Event.
func newEvent(number uint32, timestamp uint64, index uint32, txID thor.Bytes32, txOrigin thor.Address, txEvent *tx.Event) *Event {
	ev := &Event{
		BlockNumber: number,
		Index:       index,
		BlockTime:   timestamp,
		TxID:        txID,
		TxOrigin:    txOrigin,
		Address:     txEvent.Address,
		Data:        txEvent.Data,
	}
	for i := 0; i < len(txEvent.Topics) && i < len(ev.Topics); i++ {
		topic := txEvent.Topics[i]
		ev.Topics[i] = &topic
	}
	return ev
}

// Transfer represents tx.Transfer that can be stored in db.
type Transfer struct {
	BlockNumber uint32
	Index       uint32
	BlockTime   uint64
	TxID        thor.Bytes32
	TxOrigin    thor.Address
	Sender      thor.Address
	Recipient   thor.Address
	Amount      *big.Int
}

// newTransfer converts tx.Transfer to Transfer.
func newTransfer(number uint32, timestamp uint64, index uint32, txID thor.Bytes32, txOrigin thor.Address, transfer *tx.Transfer) *Transfer {
	return &Transfer{
		BlockNumber: number,
		Index:       index,
		BlockTime:   timestamp,
		TxID:        txID,
		TxOrigin:    txOrigin,
		Sender:      transfer.Sender,
		Recipient:   transfer.Recipient,
		Amount:      new(big.Int).Set(transfer.Amount),
	}
}

type RangeType string

const (
	Block RangeType = "block"
	Time  RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

type EventCriteria struct {
	Address *thor.Address // always a contract address
	Topics  [5]*thor.Bytes32
}

// EventFilter filter
type EventFilter struct {
	TxID        *thor.Bytes32
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}

type TransferCriteria struct {
	TxOrigin  *thor.Address // who sent the call
	Sender    *thor.Address // who transferred tokens
	Recipient *thor.Address // who received tokens
}

type TransferFilter struct {
	TxID        *thor.Bytes32
	CriteriaSet []*TransferCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
