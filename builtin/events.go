// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/vechain/lockstake/abi"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

var (
	stakedEvent   = Staking.MustEvent("Staked")
	unstakedEvent = Staking.MustEvent("Unstaked")
	transferEvent = Token.MustEvent("Transfer")
	approvalEvent = Token.MustEvent("Approval")
)

func addressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

func indexTopic(index uint64) thor.Bytes32 {
	return thor.BytesToBytes32(new(big.Int).SetUint64(index).Bytes())
}

// stakingEvents logs ledger notifications. Staked and Unstaked share one layout.
type stakingEvents struct {
	env *xenv.Environment
}

func (e *stakingEvents) OnStaked(owner thor.Address, index uint64, p *staking.Position) error {
	return e.log(stakedEvent, owner, index, p)
}

func (e *stakingEvents) OnUnstaked(owner thor.Address, index uint64, p *staking.Position) error {
	return e.log(unstakedEvent, owner, index, p)
}

func (e *stakingEvents) log(ev *abi.Event, owner thor.Address, index uint64, p *staking.Position) error {
	return e.env.Log(
		ev,
		Staking.Address,
		[]thor.Bytes32{addressTopic(owner), indexTopic(index)},
		p.Amount,
		p.Duration(),
		p.StakedAt,
		p.ExpiresAt,
		p.WithdrawnAt,
	)
}

type tokenEvents struct {
	env *xenv.Environment
}

func (e *tokenEvents) OnTransfer(from, to thor.Address, amount *big.Int) error {
	return e.env.Log(transferEvent, Token.Address, []thor.Bytes32{addressTopic(from), addressTopic(to)}, amount)
}

func (e *tokenEvents) OnApproval(owner, spender thor.Address, amount *big.Int) error {
	return e.env.Log(approvalEvent, Token.Address, []thor.Bytes32{addressTopic(owner), addressTopic(spender)}, amount)
}
