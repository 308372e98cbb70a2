// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/lockstake/thor"
)

// Event see abi.Event in go-ethereum.
type Event struct {
	id         thor.Bytes32
	event      *ethabi.Event
	nonIndexed ethabi.Arguments
	indexed    ethabi.Arguments
}

func newEvent(event *ethabi.Event) *Event {
	var indexed ethabi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	return &Event{
		id:         thor.Bytes32(event.ID),
		event:      event,
		nonIndexed: event.Inputs.NonIndexed(),
		indexed:    indexed,
	}
}

// ID returns event id.
func (e *Event) ID() thor.Bytes32 {
	return e.id
}

// Name returns event name.
func (e *Event) Name() string {
	return e.event.Name
}

// Encode encodes non-indexed args to data.
func (e *Event) Encode(args ...any) ([]byte, error) {
	return e.nonIndexed.Pack(args...)
}

// Decode decodes event data.
func (e *Event) Decode(data []byte, v any) error {
	return unpack(e.nonIndexed, v, data)
}

// DecodeTopics fills the indexed fields of v from topics, which exclude the event id.
func (e *Event) DecodeTopics(topics []thor.Bytes32, v any) error {
	if len(topics) != len(e.indexed) {
		return errors.New("topics count mismatch")
	}
	hashes := make([]common.Hash, 0, len(topics))
	for _, t := range topics {
		hashes = append(hashes, common.Hash(t))
	}
	return ethabi.ParseTopics(v, e.indexed, hashes)
}
