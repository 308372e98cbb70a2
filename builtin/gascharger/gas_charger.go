// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"

	"github.com/vechain/lockstake/thor"
)

// Charger tallies the gas consumed by a built-in contract call, broken down by
// the kind of storage operation.
type Charger struct {
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	balanceOps     uint64
	logGas         uint64
	customGas      uint64
	totalGas       uint64
}

func New() *Charger {
	return &Charger{}
}

// Charge records gas. Multiples of a known operation cost are counted as that operation.
func (c *Charger) Charge(gas uint64) {
	c.totalGas += gas

	switch {
	case gas == 0:
	case gas%thor.SstoreSetGas == 0:
		c.sstoreSetOps += gas / thor.SstoreSetGas
	case gas%thor.SstoreResetGas == 0:
		c.sstoreResetOps += gas / thor.SstoreResetGas
	case gas%thor.GetBalanceGas == 0:
		c.balanceOps += gas / thor.GetBalanceGas
	case gas%thor.SloadGas == 0:
		c.sloadOps += gas / thor.SloadGas
	default:
		c.customGas += gas
	}
}

// ChargeLog records the cost of emitting an event.
func (c *Charger) ChargeLog(topics int, dataLen int) {
	gas := thor.LogGas + uint64(topics)*thor.LogTopicGas + uint64(dataLen)*thor.LogDataGas
	c.logGas += gas
	c.totalGas += gas
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | BALANCE: %d ops (%d gas) | LOG: %d gas | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*thor.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*thor.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*thor.SstoreResetGas,
		c.balanceOps,
		c.balanceOps*thor.GetBalanceGas,
		c.logGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}
