// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"encoding/binary"

	"github.com/vechain/lockstake/thor"
)

// Receipt represents the results of an executed call.
type Receipt struct {
	// id of the call
	ID thor.Bytes32
	// number of the block the call was committed in
	BlockNumber uint32
	// timestamp of that block
	BlockTime uint64
	// who issued the call
	Origin thor.Address
	// gas used by the call
	GasUsed uint64
	// true when the call was rolled back
	Reverted bool
	// error message when reverted
	RevertReason string
	// events produced, empty when reverted
	Events Events
	// transfers produced, empty when reverted
	Transfers Transfers
	// return data of the call
	Output []byte
}

// Receipts slice of receipts.
type Receipts []*Receipt

// NewID derives the id of a call from the issuing origin, the block it is
// executed in and the position of the call inside that block.
func NewID(origin thor.Address, blockNumber uint32, seq uint64) thor.Bytes32 {
	var b [12]byte
	binary.BigEndian.PutUint32(b[:4], blockNumber)
	binary.BigEndian.PutUint64(b[4:], seq)
	return thor.Blake2b(origin.Bytes(), b[:])
}
