// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethmath "github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/thor"
)

// LogMeta block and call info of a log.
type LogMeta struct {
	BlockNumber    uint32       `json:"blockNumber"`
	BlockTimestamp uint64       `json:"blockTimestamp"`
	TxID           thor.Bytes32 `json:"txID"`
	TxOrigin       thor.Address `json:"txOrigin"`
	LogIndex       uint32       `json:"logIndex"`
}

// StakingEvent is a decoded Staked or Unstaked event.
type StakingEvent struct {
	Name        string                   `json:"name"`
	Owner       thor.Address             `json:"owner"`
	Index       uint64                   `json:"index"`
	Amount      *ethmath.HexOrDecimal256 `json:"amount"`
	Duration    uint32                   `json:"duration"`
	StakedAt    uint64                   `json:"stakedAt"`
	ExpiresAt   uint64                   `json:"expiresAt"`
	WithdrawnAt uint64                   `json:"withdrawnAt"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    string          `json:"data"`
	Meta    LogMeta         `json:"meta"`
	Staking *StakingEvent   `json:"staking,omitempty"`
}

type positionData struct {
	Amount      *big.Int
	Duration    uint32
	StakedAt    uint64
	ExpiresAt   uint64
	WithdrawnAt uint64
}

type positionTopics struct {
	Owner common.Address
	Index *big.Int
}

// DecodeStakingEvent decodes a Staked or Unstaked event of the staking contract.
// It returns nil for any other event.
func DecodeStakingEvent(address thor.Address, topics []thor.Bytes32, data []byte) *StakingEvent {
	if address != builtin.Staking.Address || len(topics) == 0 {
		return nil
	}
	ev, ok := builtin.Staking.ABI.EventByID(topics[0])
	if !ok {
		return nil
	}
	var (
		d positionData
		t positionTopics
	)
	if err := ev.Decode(data, &d); err != nil {
		return nil
	}
	if err := ev.DecodeTopics(topics[1:], &t); err != nil {
		return nil
	}
	return &StakingEvent{
		Name:        ev.Name(),
		Owner:       thor.Address(t.Owner),
		Index:       t.Index.Uint64(),
		Amount:      (*ethmath.HexOrDecimal256)(d.Amount),
		Duration:    d.Duration,
		StakedAt:    d.StakedAt,
		ExpiresAt:   d.ExpiresAt,
		WithdrawnAt: d.WithdrawnAt,
	}
}

// ConvertEvent converts a logdb.Event into a json format Event
func ConvertEvent(event *logdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address: event.Address,
		Data:    hexutil.Encode(event.Data),
		Meta: LogMeta{
			BlockNumber:    event.BlockNumber,
			BlockTimestamp: event.BlockTime,
			TxID:           event.TxID,
			TxOrigin:       event.TxOrigin,
			LogIndex:       event.Index,
		},
	}
	fe.Topics = make([]*thor.Bytes32, 0)
	topics := make([]thor.Bytes32, 0, len(event.Topics))
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
			topics = append(topics, *topic)
		}
	}
	fe.Staking = DecodeStakingEvent(event.Address, topics, event.Data)
	return fe
}

// FilteredTransfer is a native value transfer.
type FilteredTransfer struct {
	Sender    thor.Address             `json:"sender"`
	Recipient thor.Address             `json:"recipient"`
	Amount    *ethmath.HexOrDecimal256 `json:"amount"`
	Meta      LogMeta                  `json:"meta"`
}

func ConvertTransfer(transfer *logdb.Transfer) *FilteredTransfer {
	return &FilteredTransfer{
		Sender:    transfer.Sender,
		Recipient: transfer.Recipient,
		Amount:    (*ethmath.HexOrDecimal256)(transfer.Amount),
		Meta: LogMeta{
			BlockNumber:    transfer.BlockNumber,
			BlockTimestamp: transfer.BlockTime,
			TxID:           transfer.TxID,
			TxOrigin:       transfer.TxOrigin,
			LogIndex:       transfer.Index,
		},
	}
}

type TopicSet struct {
	Topic0 *thor.Bytes32 `json:"topic0"`
	Topic1 *thor.Bytes32 `json:"topic1"`
	Topic2 *thor.Bytes32 `json:"topic2"`
	Topic3 *thor.Bytes32 `json:"topic3"`
	Topic4 *thor.Bytes32 `json:"topic4"`
}

type EventCriteria struct {
	Address *thor.Address `json:"address"`
	TopicSet
}

type TransferCriteria struct {
	TxOrigin  *thor.Address `json:"txOrigin"`
	Sender    *thor.Address `json:"sender"`
	Recipient *thor.Address `json:"recipient"`
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

func (o *Options) Validate(limit uint64) error {
	if o == nil {
		return nil
	}
	if o.Limit != nil && *o.Limit > limit {
		return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
	}
	if o.Offset > math.MaxInt64 {
		return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64))
	}
	return nil
}

type RangeType string

const (
	BlockRangeType RangeType = "block"
	TimeRangeType  RangeType = "time"
)

type Range struct {
	Unit RangeType `json:"unit,omitempty"`
	From *uint64   `json:"from,omitempty"`
	To   *uint64   `json:"to,omitempty"`
}

func (r *Range) Validate() error {
	if r == nil {
		return nil
	}
	if r.Unit != "" && r.Unit != BlockRangeType && r.Unit != TimeRangeType {
		return fmt.Errorf("range.unit must be either 'block' or 'time', got '%s'", r.Unit)
	}
	if r.From != nil && *r.From > math.MaxInt64 {
		return fmt.Errorf("range.from exceeds the maximum allowed value of %d", int64(math.MaxInt64))
	}
	if r.From != nil && r.To != nil && *r.From > *r.To {
		return fmt.Errorf("range.to must be greater than or equal to range.from")
	}
	return nil
}

// convertRange maps an open bound to the largest value sqlite accepts.
func convertRange(r *Range) *logdb.Range {
	if r == nil {
		return nil
	}
	rng := &logdb.Range{Unit: logdb.Block, To: math.MaxInt64}
	if r.Unit == TimeRangeType {
		rng.Unit = logdb.Time
	}
	if r.From != nil {
		rng.From = *r.From
	}
	if r.To != nil && *r.To < math.MaxInt64 {
		rng.To = *r.To
	}
	return rng
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet,omitempty"`
	Range       *Range           `json:"range,omitempty"`
	Options     *Options         `json:"options,omitempty"`
	Order       logdb.Order      `json:"order,omitempty"`
}

func convertEventFilter(filter *EventFilter, limit uint64) *logdb.EventFilter {
	f := &logdb.EventFilter{
		Range:   convertRange(filter.Range),
		Options: convertOptions(filter.Options, limit),
		Order:   filter.Order,
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Address: c.Address,
			Topics:  [5]*thor.Bytes32{c.Topic0, c.Topic1, c.Topic2, c.Topic3, c.Topic4},
		})
	}
	return f
}

type TransferFilter struct {
	CriteriaSet []*TransferCriteria `json:"criteriaSet,omitempty"`
	Range       *Range              `json:"range,omitempty"`
	Options     *Options            `json:"options,omitempty"`
	Order       logdb.Order         `json:"order,omitempty"`
}

func convertTransferFilter(filter *TransferFilter, limit uint64) *logdb.TransferFilter {
	f := &logdb.TransferFilter{
		Range:   convertRange(filter.Range),
		Options: convertOptions(filter.Options, limit),
		Order:   filter.Order,
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.TransferCriteria{
			TxOrigin:  c.TxOrigin,
			Sender:    c.Sender,
			Recipient: c.Recipient,
		})
	}
	return f
}

// convertOptions defaults the limit to limit+1 so that oversized results can be detected.
func convertOptions(o *Options, limit uint64) *logdb.Options {
	opts := &logdb.Options{Limit: limit + 1}
	if o != nil {
		opts.Offset = o.Offset
		if o.Limit != nil {
			opts.Limit = *o.Limit
		}
	}
	return opts
}
