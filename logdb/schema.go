// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// create a table for events
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	blockNumber INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	address BLOB(20) NOT NULL,
	topic0 BLOB(32),
	topic1 BLOB(32),
	topic2 BLOB(32),
	topic3 BLOB(32),
	topic4 BLOB(32),
	data BLOB,
	PRIMARY KEY (blockNumber, eventIndex)
);

CREATE INDEX IF NOT EXISTS eventBlockTimeIndex ON event(blockTime);
CREATE INDEX IF NOT EXISTS eventTxIDIndex ON event(txID);
CREATE INDEX IF NOT EXISTS eventAddressIndex ON event(address);
CREATE INDEX IF NOT EXISTS eventTopic0Index ON event(topic0);
CREATE INDEX IF NOT EXISTS eventTopic1Index ON event(topic1);
CREATE INDEX IF NOT EXISTS eventTopic2Index ON event(topic2);
`

// create a table for transfers
const transferTableSchema = `
CREATE TABLE IF NOT EXISTS transfer (
	blockNumber INTEGER NOT NULL,
	transferIndex INTEGER NOT NULL,
	blockTime INTEGER NOT NULL,
	txID BLOB(32) NOT NULL,
	txOrigin BLOB(20) NOT NULL,
	sender BLOB(20) NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB(32),
	PRIMARY KEY (blockNumber, transferIndex)
);

CREATE INDEX IF NOT EXISTS transferBlockTimeIndex ON transfer(blockTime);
CREATE INDEX IF NOT EXISTS transferTxIDIndex ON transfer(txID);
CREATE INDEX IF NOT EXISTS transferSenderIndex ON transfer(sender);
CREATE INDEX IF NOT EXISTS transferRecipientIndex ON transfer(recipient);
`
