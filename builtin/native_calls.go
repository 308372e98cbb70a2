// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/thor"
)

var logger = log.WithContext("pkg", "builtin")

func init() {
	initStakingMethods()
	initTokenMethods()
}

func toIndex(v *big.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, reverts.ErrIndexOutOfRange
	}
	return v.Uint64(), nil
}

func addressesOf(addrs []thor.Address) []common.Address {
	out := make([]common.Address, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, common.Address(a))
	}
	return out
}

func initStakingMethods() {
	defines := []struct {
		name string
		run  func(env *nativeEnv) ([]any, error)
	}{
		{"stake", func(env *nativeEnv) ([]any, error) {
			var args struct {
				Amount   *big.Int
				Duration uint32
			}
			env.ParseArgs(&args)
			index, err := Staking.Native(env.Environment).Stake(env.Caller(), args.Amount, args.Duration, env.BlockContext().Time)
			if err != nil {
				return nil, err
			}
			return []any{new(big.Int).SetUint64(index)}, nil
		}},
		{"withdraw", func(env *nativeEnv) ([]any, error) {
			var args struct {
				Owners  []common.Address
				Indices []*big.Int
			}
			env.ParseArgs(&args)
			if len(args.Owners) != len(args.Indices) {
				return nil, errArgsLenMismatch
			}
			requests := make([]staking.WithdrawRequest, 0, len(args.Owners))
			for i, owner := range args.Owners {
				index, err := toIndex(args.Indices[i])
				if err != nil {
					return nil, err
				}
				requests = append(requests, staking.WithdrawRequest{Owner: thor.Address(owner), Index: index})
			}
			return nil, Staking.Native(env.Environment).Withdraw(requests, env.BlockContext().Time)
		}},
		{"isAllowedDuration", func(env *nativeEnv) ([]any, error) {
			var days uint32
			env.ParseArgs(&days)
			ok, err := Staking.Native(env.Environment).IsAllowedDuration(uint64(days))
			if err != nil {
				return nil, err
			}
			return []any{ok}, nil
		}},
		{"allowedDurations", func(env *nativeEnv) ([]any, error) {
			durations, err := Staking.Native(env.Environment).AllowedDurations()
			if err != nil {
				return nil, err
			}
			return []any{durations}, nil
		}},
		{"positionCount", func(env *nativeEnv) ([]any, error) {
			var owner common.Address
			env.ParseArgs(&owner)
			count, err := Staking.Native(env.Environment).PositionCount(thor.Address(owner))
			if err != nil {
				return nil, err
			}
			return []any{new(big.Int).SetUint64(count)}, nil
		}},
		{"getPosition", func(env *nativeEnv) ([]any, error) {
			var args struct {
				Owner common.Address
				Index *big.Int
			}
			env.ParseArgs(&args)
			index, err := toIndex(args.Index)
			if err != nil {
				return nil, err
			}
			p, err := Staking.Native(env.Environment).Position(thor.Address(args.Owner), index)
			if err != nil {
				return nil, err
			}
			return []any{p.Amount, p.Duration(), p.StakedAt, p.ExpiresAt, p.WithdrawnAt}, nil
		}},
		{"positionsOf", func(env *nativeEnv) ([]any, error) {
			var owner common.Address
			env.ParseArgs(&owner)
			positions, err := Staking.Native(env.Environment).PositionsOf(thor.Address(owner))
			if err != nil {
				return nil, err
			}
			var (
				amounts     = make([]*big.Int, 0, len(positions))
				stakedAt    = make([]uint64, 0, len(positions))
				expiresAt   = make([]uint64, 0, len(positions))
				withdrawnAt = make([]uint64, 0, len(positions))
			)
			for _, p := range positions {
				amounts = append(amounts, p.Amount)
				stakedAt = append(stakedAt, p.StakedAt)
				expiresAt = append(expiresAt, p.ExpiresAt)
				withdrawnAt = append(withdrawnAt, p.WithdrawnAt)
			}
			return []any{amounts, stakedAt, expiresAt, withdrawnAt}, nil
		}},
		{"allOwners", func(env *nativeEnv) ([]any, error) {
			owners, err := Staking.Native(env.Environment).AllOwners()
			if err != nil {
				return nil, err
			}
			return []any{addressesOf(owners)}, nil
		}},
		{"config", func(env *nativeEnv) ([]any, error) {
			cfg, err := Staking.Native(env.Environment).Config()
			if err != nil {
				return nil, err
			}
			return []any{common.Address(cfg.Asset), cfg.Min, cfg.Max}, nil
		}},
		{"totalStaked", func(env *nativeEnv) ([]any, error) {
			total, err := Staking.Native(env.Environment).TotalStaked()
			if err != nil {
				return nil, err
			}
			return []any{total}, nil
		}},
	}
	for _, def := range defines {
		method := Staking.MustMethod(def.name)
		nativeMethods[methodKey{Staking.Address, method.ID()}] = &nativeMethod{
			abi: method,
			run: def.run,
		}
	}
}

func initTokenMethods() {
	defines := []struct {
		name string
		run  func(env *nativeEnv) ([]any, error)
	}{
		{"name", func(env *nativeEnv) ([]any, error) {
			name, err := Token.Native(env.Environment).Name()
			if err != nil {
				return nil, err
			}
			return []any{name}, nil
		}},
		{"symbol", func(env *nativeEnv) ([]any, error) {
			symbol, err := Token.Native(env.Environment).Symbol()
			if err != nil {
				return nil, err
			}
			return []any{symbol}, nil
		}},
		{"feeBps", func(env *nativeEnv) ([]any, error) {
			bps, err := Token.Native(env.Environment).FeeBps()
			if err != nil {
				return nil, err
			}
			return []any{new(big.Int).SetUint64(bps)}, nil
		}},
		{"totalSupply", func(env *nativeEnv) ([]any, error) {
			supply, err := Token.Native(env.Environment).TotalSupply()
			if err != nil {
				return nil, err
			}
			return []any{supply}, nil
		}},
		{"balanceOf", func(env *nativeEnv) ([]any, error) {
			var owner common.Address
			env.ParseArgs(&owner)
			bal, err := Token.Native(env.Environment).BalanceOf(thor.Address(owner))
			if err != nil {
				return nil, err
			}
			return []any{bal}, nil
		}},
		{"allowance", func(env *nativeEnv) ([]any, error) {
			var args struct {
				Owner   common.Address
				Spender common.Address
			}
			env.ParseArgs(&args)
			allowance, err := Token.Native(env.Environment).Allowance(thor.Address(args.Owner), thor.Address(args.Spender))
			if err != nil {
				return nil, err
			}
			return []any{allowance}, nil
		}},
		{"transfer", func(env *nativeEnv) ([]any, error) {
			var args struct {
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			if err := Token.Native(env.Environment).Transfer(env.Caller(), thor.Address(args.To), args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}},
		{"transferFrom", func(env *nativeEnv) ([]any, error) {
			var args struct {
				From   common.Address
				To     common.Address
				Amount *big.Int
			}
			env.ParseArgs(&args)
			if err := Token.Native(env.Environment).TransferFrom(env.Caller(), thor.Address(args.From), thor.Address(args.To), args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}},
		{"approve", func(env *nativeEnv) ([]any, error) {
			var args struct {
				Spender common.Address
				Amount  *big.Int
			}
			env.ParseArgs(&args)
			if err := Token.Native(env.Environment).Approve(env.Caller(), thor.Address(args.Spender), args.Amount); err != nil {
				return nil, err
			}
			return []any{true}, nil
		}},
	}
	for _, def := range defines {
		method := Token.MustMethod(def.name)
		nativeMethods[methodKey{Token.Address, method.ID()}] = &nativeMethod{
			abi: method,
			run: def.run,
		}
	}
}
