// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"encoding/json"

	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/runtime"
)

type blockReader struct {
	rt    *runtime.Runtime
	cache *messageCache
	next  uint32
}

func newBlockReader(rt *runtime.Runtime, cache *messageCache, position uint32) *blockReader {
	return &blockReader{rt, cache, position}
}

// Read returns the message of the current head when it is not older than the
// position. Heads committed in between are skipped.
func (br *blockReader) Read() ([][]byte, error) {
	head, err := br.rt.Head()
	if err != nil {
		return nil, err
	}
	if head.Number < br.next {
		return nil, nil
	}
	msg, _, err := br.cache.GetOrAdd(&head, newBlockMessage)
	if err != nil {
		return nil, err
	}
	br.next = head.Number + 1
	return [][]byte{msg}, nil
}

type eventReader struct {
	rt     *runtime.Runtime
	db     *logdb.LogDB
	filter *EventFilter
	next   uint32
}

func newEventReader(rt *runtime.Runtime, db *logdb.LogDB, position uint32, filter *EventFilter) *eventReader {
	return &eventReader{rt, db, filter, position}
}

// Read returns the matching events of blocks committed since the last read.
func (er *eventReader) Read() ([][]byte, error) {
	head, err := er.rt.Head()
	if err != nil {
		return nil, err
	}
	if head.Number < er.next {
		return nil, nil
	}
	events, err := er.db.FilterEvents(context.Background(), &logdb.EventFilter{
		CriteriaSet: er.filter.criteria(),
		Range: &logdb.Range{
			Unit: logdb.Block,
			From: uint64(er.next),
			To:   uint64(head.Number),
		},
		Order: logdb.ASC,
	})
	if err != nil {
		return nil, err
	}
	msgs := make([][]byte, 0, len(events))
	for _, ev := range events {
		msg, err := json.Marshal(convertEvent(ev))
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	er.next = head.Number + 1
	return msgs, nil
}
