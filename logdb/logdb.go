// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory db lives as long as its single connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path,
		db,
		driverVer,
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Prepare starts a batch of logs belonging to the given block.
func (db *LogDB) Prepare(number uint32, timestamp uint64) *BlockBatch {
	return &BlockBatch{
		db:        db.db,
		number:    number,
		timestamp: timestamp,
	}
}

// NewestBlockNumber returns the highest block number having any log, or zero.
func (db *LogDB) NewestBlockNumber(ctx context.Context) (uint32, error) {
	var n sql.NullInt64
	row := db.db.QueryRowContext(ctx, "SELECT MAX(m) FROM (SELECT MAX(blockNumber) AS m FROM event UNION ALL SELECT MAX(blockNumber) AS m FROM transfer)")
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return uint32(n.Int64), nil
}

func appendRange(stmt string, args []any, rng *Range) (string, []any) {
	if rng == nil {
		return stmt, args
	}
	condition := "blockNumber"
	if rng.Unit == Time {
		condition = "blockTime"
	}
	args = append(args, rng.From)
	stmt += " AND " + condition + " >= ? "
	if rng.To >= rng.From {
		args = append(args, rng.To)
		stmt += " AND " + condition + " <= ? "
	}
	return stmt, args
}

func appendOptions(stmt string, args []any, options *Options) (string, []any) {
	if options == nil {
		return stmt, args
	}
	stmt += " LIMIT ?, ? "
	return stmt, append(args, options.Offset, options.Limit)
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT * FROM event ORDER BY blockNumber ASC, eventIndex ASC")
	}
	metricsHandleEventsFilter(filter)
	defer metricsObserveQuery("event", time.Now())

	var args []any
	stmt := "SELECT * FROM event WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ? "
	}

	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1 "
		} else {
			stmt += " OR ( 1 "
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ? "
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ? ", j)
			}
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, eventIndex DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC, eventIndex ASC "
	}
	stmt, args = appendOptions(stmt, args, filter.Options)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	if filter == nil {
		return db.queryTransfers(ctx, "SELECT * FROM transfer ORDER BY blockNumber ASC, transferIndex ASC")
	}
	metricsHandleCommon(filter.Options, filter.Order, len(filter.CriteriaSet), "transfer")
	defer metricsObserveQuery("transfer", time.Now())

	var args []any
	stmt := "SELECT * FROM transfer WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.TxID != nil {
		args = append(args, filter.TxID.Bytes())
		stmt += " AND txID = ? "
	}
	length := len(filter.CriteriaSet)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1 "
		} else {
			stmt += " OR ( 1 "
		}
		if criteria.TxOrigin != nil {
			args = append(args, criteria.TxOrigin.Bytes())
			stmt += " AND txOrigin = ? "
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			stmt += " AND sender = ? "
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			stmt += " AND recipient = ? "
		}
		if i == length-1 {
			stmt += " )) "
		} else {
			stmt += " ) "
		}
	}
	if filter.Order == DESC {
		stmt += " ORDER BY blockNumber DESC, transferIndex DESC "
	} else {
		stmt += " ORDER BY blockNumber ASC, transferIndex ASC "
	}
	stmt, args = appendOptions(stmt, args, filter.Options)
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			index       uint32
			blockTime   uint64
			txID        []byte
			txOrigin    []byte
			address     []byte
			topics      [5][]byte
			data        []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&blockTime,
			&txID,
			&txOrigin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: blockNumber,
			Index:       index,
			BlockTime:   blockTime,
			TxID:        thor.BytesToBytes32(txID),
			TxOrigin:    thor.BytesToAddress(txOrigin),
			Address:     thor.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			blockNumber uint32
			index       uint32
			blockTime   uint64
			txID        []byte
			txOrigin    []byte
			sender      []byte
			recipient   []byte
			amount      []byte
		)
		if err := rows.Scan(
			&blockNumber,
			&index,
			&blockTime,
			&txID,
			&txOrigin,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			BlockNumber: blockNumber,
			Index:       index,
			BlockTime:   blockTime,
			TxID:        thor.BytesToBytes32(txID),
			TxOrigin:    thor.BytesToAddress(txOrigin),
			Sender:      thor.BytesToAddress(sender),
			Recipient:   thor.BytesToAddress(recipient),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func topicValue(topic *thor.Bytes32) []byte {
	if topic == nil {
		return nil
	}
	return topic.Bytes()
}

// BlockBatch collects the logs of one block and writes them in a single db transaction.
type BlockBatch struct {
	db        *sql.DB
	number    uint32
	timestamp uint64
	events    []*Event
	transfers []*Transfer
}

func (bb *BlockBatch) execInTx(proc func(*sql.Tx) error) (err error) {
	tx, err := bb.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Len returns the number of collected events and transfers.
func (bb *BlockBatch) Len() int {
	return len(bb.events) + len(bb.transfers)
}

func (bb *BlockBatch) Commit() error {
	if bb.Len() == 0 {
		return nil
	}
	return bb.execInTx(func(tx *sql.Tx) error {
		for _, event := range bb.events {
			if _, err := tx.Exec("INSERT OR REPLACE INTO event(blockNumber, eventIndex, blockTime, txID, txOrigin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);",
				event.BlockNumber,
				event.Index,
				event.BlockTime,
				event.TxID.Bytes(),
				event.TxOrigin.Bytes(),
				event.Address.Bytes(),
				topicValue(event.Topics[0]),
				topicValue(event.Topics[1]),
				topicValue(event.Topics[2]),
				topicValue(event.Topics[3]),
				topicValue(event.Topics[4]),
				event.Data,
			); err != nil {
				return errors.Wrap(err, "insert event")
			}
		}

		for _, transfer := range bb.transfers {
			if _, err := tx.Exec("INSERT OR REPLACE INTO transfer(blockNumber, transferIndex, blockTime, txID, txOrigin, sender, recipient, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?);",
				transfer.BlockNumber,
				transfer.Index,
				transfer.BlockTime,
				transfer.TxID.Bytes(),
				transfer.TxOrigin.Bytes(),
				transfer.Sender.Bytes(),
				transfer.Recipient.Bytes(),
				transfer.Amount.Bytes(),
			); err != nil {
				return errors.Wrap(err, "insert transfer")
			}
		}
		return nil
	})
}

func (bb *BlockBatch) ForTransaction(txID thor.Bytes32, txOrigin thor.Address) struct {
	Insert func(tx.Events, tx.Transfers) *BlockBatch
} {
	return struct {
		Insert func(events tx.Events, transfers tx.Transfers) *BlockBatch
	}{
		func(events tx.Events, transfers tx.Transfers) *BlockBatch {
			for _, event := range events {
				bb.events = append(bb.events, newEvent(bb.number, bb.timestamp, uint32(len(bb.events)), txID, txOrigin, event))
			}
			for _, transfer := range transfers {
				bb.transfers = append(bb.transfers, newTransfer(bb.number, bb.timestamp, uint32(len(bb.transfers)), txID, txOrigin, transfer))
			}
			return bb
		},
	}
}
