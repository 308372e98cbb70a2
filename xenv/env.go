// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/abi"
	"github.com/vechain/lockstake/builtin/gascharger"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
)

// BlockContext block context.
type BlockContext struct {
	Number uint32
	Time   uint64
}

// TransactionContext transaction context.
type TransactionContext struct {
	ID     thor.Bytes32
	Origin thor.Address
}

// output is shared by an environment and all environments derived from it.
type output struct {
	events      tx.Events
	transfers   tx.Transfers
	checkpoints []checkpoint
}

type checkpoint struct {
	revision  int
	events    int
	transfers int
}

// Environment an env to execute native method.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	txCtx    *TransactionContext
	caller   thor.Address
	charger  *gascharger.Charger
	out      *output
}

// New create a new env.
func New(
	state *state.State,
	blockCtx *BlockContext,
	txCtx *TransactionContext,
	caller thor.Address,
	charger *gascharger.Charger,
) *Environment {
	if charger == nil {
		charger = gascharger.New()
	}
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		txCtx:    txCtx,
		caller:   caller,
		charger:  charger,
		out:      &output{},
	}
}

func (env *Environment) State() *state.State                     { return env.state }
func (env *Environment) TransactionContext() *TransactionContext { return env.txCtx }
func (env *Environment) BlockContext() *BlockContext             { return env.blockCtx }
func (env *Environment) Caller() thor.Address                    { return env.caller }
func (env *Environment) Charger() *gascharger.Charger            { return env.charger }
func (env *Environment) Events() tx.Events                       { return env.out.events }
func (env *Environment) Transfers() tx.Transfers                 { return env.out.transfers }

func (env *Environment) UseGas(gas uint64) {
	env.charger.Charge(gas)
}

// WithCaller returns an env acting on behalf of another caller. The state, gas
// and logs are shared with env.
func (env *Environment) WithCaller(caller thor.Address) *Environment {
	cpy := *env
	cpy.caller = caller
	return &cpy
}

// Log ABI-encodes an event and appends it to the logs. topics exclude the event id.
func (env *Environment) Log(abi *abi.Event, address thor.Address, topics []thor.Bytes32, args ...any) error {
	data, err := abi.Encode(args...)
	if err != nil {
		return errors.WithMessage(err, "encode native event")
	}
	env.charger.ChargeLog(len(topics)+1, len(data))

	eventTopics := make([]thor.Bytes32, 0, len(topics)+1)
	eventTopics = append(eventTopics, abi.ID())
	eventTopics = append(eventTopics, topics...)
	env.out.events = append(env.out.events, &tx.Event{
		Address: address,
		Topics:  eventTopics,
		Data:    data,
	})
	return nil
}

// Transfer records a value movement.
func (env *Environment) Transfer(sender, recipient thor.Address, amount *big.Int) {
	env.out.transfers = append(env.out.transfers, &tx.Transfer{
		Sender:    sender,
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
	})
}

// NewCheckpoint snapshots the state and the logs collected so far.
func (env *Environment) NewCheckpoint() int {
	rev := env.state.NewCheckpoint()
	env.out.checkpoints = append(env.out.checkpoints, checkpoint{
		revision:  rev,
		events:    len(env.out.events),
		transfers: len(env.out.transfers),
	})
	return rev
}

// RevertTo undoes all state changes and logs made after the given checkpoint.
func (env *Environment) RevertTo(revision int) {
	env.state.RevertTo(revision)

	cps := env.out.checkpoints
	for i := len(cps) - 1; i >= 0; i-- {
		if cps[i].revision < revision {
			break
		}
		if cps[i].revision == revision {
			env.out.events = env.out.events[:cps[i].events]
			env.out.transfers = env.out.transfers[:cps[i].transfers]
		}
		cps = cps[:i]
	}
	env.out.checkpoints = cps
}
