// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/builtin/token"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/xenv"
)

// Builtin contracts binding.
var (
	Staking = &stakingContract{mustLoadContract("Staking")}
	Token   = &tokenContract{mustLoadContract("Token")}
)

type (
	stakingContract struct{ *contract }
	tokenContract   struct{ *contract }
)

// WithState binds the ledger for read only use. No gas is charged.
func (s *stakingContract) WithState(state *state.State) *staking.Staking {
	return staking.New(s.Address, state, nil, nil)
}

// Native binds the ledger to a call environment. The caller of the token is the
// ledger itself, notifications are logged into env and env journals the call.
func (s *stakingContract) Native(env *xenv.Environment) *staking.Staking {
	asset := Token.Native(env).As(s.Address)
	return staking.New(s.Address, env.State(), &staking.Host{
		Asset:   asset,
		Events:  &stakingEvents{env},
		Journal: env,
	}, env.Charger())
}

// WithState binds the token for read only use.
func (t *tokenContract) WithState(state *state.State) *token.Token {
	return token.New(t.Address, state, nil, nil)
}

// Native binds the token to a call environment.
func (t *tokenContract) Native(env *xenv.Environment) *token.Token {
	return token.New(t.Address, env.State(), &tokenEvents{env}, env.Charger())
}
