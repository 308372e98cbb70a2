// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
)

var (
	// the head record lives in the world state, so it is committed together with it
	headAddress = thor.BytesToAddress([]byte("runtime"))
	headKey     = thor.BytesToBytes32([]byte("head"))
)

// Head describes the last committed block.
type Head struct {
	Genesis thor.Bytes32 // id of the genesis the data was built from
	Number  uint32
	Time    uint64
	Root    thor.Bytes32 `rlp:"-"`
}

func loadHead(st *state.State) (*Head, error) {
	var head *Head
	err := st.DecodeStorage(headAddress, headKey, func(raw []byte) error {
		if len(raw) == 0 {
			return nil
		}
		head = &Head{}
		return rlp.DecodeBytes(raw, head)
	})
	if err != nil {
		return nil, err
	}
	return head, nil
}

func saveHead(st *state.State, head *Head) error {
	return st.EncodeStorage(headAddress, headKey, func() ([]byte, error) {
		return rlp.EncodeToBytes(head)
	})
}
