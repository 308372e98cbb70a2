// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package testchain

import (
	"math/big"
	"sync/atomic"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/genesis"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

// Chain is an in-memory node bootstrapped with the dev genesis.
// Its clock is manual and starts at the genesis launch time.
type Chain struct {
	db      *lvldb.LevelDB
	logDB   *logdb.LogDB
	stater  *state.Stater
	rt      *runtime.Runtime
	genesis *genesis.Genesis
	now     atomic.Uint64
}

// NewIntegrationTestChain creates a chain over in-memory stores.
func NewIntegrationTestChain() (*Chain, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	logDB, err := logdb.NewMem()
	if err != nil {
		db.Close()
		return nil, err
	}

	gene := genesis.NewDevnet()
	c := &Chain{
		db:      db,
		logDB:   logDB,
		stater:  state.NewStater(db),
		genesis: gene,
	}
	c.now.Store(gene.LaunchTime())

	rt, err := runtime.New(c.stater, logDB, c.now.Load)
	if err != nil {
		c.Close()
		return nil, err
	}
	if err := gene.Build(rt); err != nil {
		c.Close()
		return nil, err
	}
	c.rt = rt
	return c, nil
}

// Runtime returns the runtime of the chain.
func (c *Chain) Runtime() *runtime.Runtime { return c.rt }

// LogDB returns the log db of the chain.
func (c *Chain) LogDB() *logdb.LogDB { return c.logDB }

// Stater returns the state manager of the chain.
func (c *Chain) Stater() *state.Stater { return c.stater }

// GenesisID returns the id of the dev genesis.
func (c *Chain) GenesisID() thor.Bytes32 { return c.genesis.ID() }

// Now returns the current clock value.
func (c *Chain) Now() uint64 { return c.now.Load() }

// AdvanceTime moves the clock forward.
func (c *Chain) AdvanceTime(seconds uint64) {
	c.now.Add(seconds)
}

// Accounts returns the dev accounts, all funded with tokens and native value.
func (c *Chain) Accounts() []genesis.DevAccount {
	return genesis.DevAccounts()
}

// Approve lets the staking contract pull amount tokens of owner.
func (c *Chain) Approve(owner thor.Address, amount *big.Int) error {
	_, err := c.rt.Execute(owner, func(env *xenv.Environment) ([]byte, error) {
		return nil, builtin.Token.Native(env).Approve(owner, builtin.Staking.Address, amount)
	})
	return err
}

// Stake approves and stakes amount for duration days on behalf of owner,
// returning the position index.
func (c *Chain) Stake(owner thor.Address, amount *big.Int, days uint32) (uint64, error) {
	if err := c.Approve(owner, amount); err != nil {
		return 0, err
	}
	var index uint64
	_, err := c.rt.Execute(owner, func(env *xenv.Environment) ([]byte, error) {
		var err error
		index, err = builtin.Staking.Native(env).Stake(owner, amount, days, env.BlockContext().Time)
		return nil, err
	})
	return index, err
}

// TokenBalance returns the token balance of addr.
func (c *Chain) TokenBalance(addr thor.Address) (*big.Int, error) {
	return builtin.Token.WithState(c.stater.NewState()).BalanceOf(addr)
}

// Close releases the stores.
func (c *Chain) Close() {
	c.logDB.Close()
	c.db.Close()
}
