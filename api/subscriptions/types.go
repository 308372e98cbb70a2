// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/lockstake/api/logs"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/thor"
)

// BlockMessage block piped by websocket
type BlockMessage struct {
	Number    uint32       `json:"number"`
	Timestamp uint64       `json:"timestamp"`
	StateRoot thor.Bytes32 `json:"stateRoot"`
	GenesisID thor.Bytes32 `json:"genesisID"`
}

func newBlockMessage(head *runtime.Head) ([]byte, error) {
	return json.Marshal(&BlockMessage{
		Number:    head.Number,
		Timestamp: head.Time,
		StateRoot: head.Root,
		GenesisID: head.Genesis,
	})
}

// EventMessage event piped by websocket
type EventMessage struct {
	Address thor.Address       `json:"address"`
	Topics  []thor.Bytes32     `json:"topics"`
	Data    string             `json:"data"`
	Meta    logs.LogMeta       `json:"meta"`
	Staking *logs.StakingEvent `json:"staking,omitempty"`
}

func convertEvent(event *logdb.Event) *EventMessage {
	msg := &EventMessage{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: logs.LogMeta{
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
			LogIndex:       event.Index,
		},
	}
	msg.Topics = make([]thor.Bytes32, 0)
	for _, topic := range event.Topics {
		if topic != nil {
			msg.Topics = append(msg.Topics, *topic)
		}
	}
	msg.Staking = logs.DecodeStakingEvent(msg.Address, msg.Topics, event.Data)
	return msg
}

// EventFilter contains options for contract event filtering.
type EventFilter struct {
	Address *thor.Address // always a contract address
	Topic0  *thor.Bytes32
	Topic1  *thor.Bytes32
	Topic2  *thor.Bytes32
	Topic3  *thor.Bytes32
	Topic4  *thor.Bytes32
}

func (ef *EventFilter) criteria() []*logdb.EventCriteria {
	return []*logdb.EventCriteria{{
		Address: ef.Address,
		Topics:  [5]*thor.Bytes32{ef.Topic0, ef.Topic1, ef.Topic2, ef.Topic3, ef.Topic4},
	}}
}
