// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/builtin/staking"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/xenv"
)

type Staking struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Staking {
	return &Staking{rt}
}

// view runs fn with a read only ledger and the current time.
func (s *Staking) view(fn func(ledger *staking.Staking, now uint64) error) error {
	return s.rt.View(func(env *xenv.Environment) error {
		return fn(builtin.Staking.WithState(env.State()), env.BlockContext().Time)
	})
}

func (s *Staking) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	var cfg *Config
	err := s.view(func(ledger *staking.Staking, _ uint64) error {
		c, err := ledger.Config()
		if err != nil {
			return err
		}
		total, err := ledger.TotalStaked()
		if err != nil {
			return err
		}
		durations := make([]uint32, 0, len(c.Durations))
		for _, d := range c.Durations {
			durations = append(durations, uint32(d))
		}
		cfg = &Config{
			Asset:       c.Asset,
			MinAmount:   (*math.HexOrDecimal256)(c.Min),
			MaxAmount:   (*math.HexOrDecimal256)(c.Max),
			Durations:   durations,
			TotalStaked: (*math.HexOrDecimal256)(total),
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, cfg)
}

func (s *Staking) handleIsAllowedDuration(w http.ResponseWriter, req *http.Request) error {
	days, err := strconv.ParseUint(mux.Vars(req)["days"], 10, 64)
	if err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "days"))
	}
	var allowed bool
	err = s.view(func(ledger *staking.Staking, _ uint64) error {
		allowed, err = ledger.IsAllowedDuration(days)
		return err
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowed{allowed})
}

func (s *Staking) handleGetOwners(w http.ResponseWriter, _ *http.Request) error {
	var owners []common.Address
	err := s.view(func(ledger *staking.Staking, _ uint64) error {
		all, err := ledger.AllOwners()
		if err != nil {
			return err
		}
		owners = make([]common.Address, 0, len(all))
		for _, o := range all {
			owners = append(owners, common.Address(o))
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, owners)
}

func (s *Staking) handleGetAllPositions(w http.ResponseWriter, _ *http.Request) error {
	var result []*OwnerPositions
	err := s.view(func(ledger *staking.Staking, now uint64) error {
		all, err := ledger.AllPositions()
		if err != nil {
			return err
		}
		result = make([]*OwnerPositions, 0, len(all))
		for _, op := range all {
			result = append(result, &OwnerPositions{
				Owner:     op.Owner,
				Positions: convertPositions(op.Positions, now),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, result)
}

func (s *Staking) handleGetPositions(w http.ResponseWriter, req *http.Request) error {
	owner, err := utils.AddressVar(mux.Vars(req), "owner")
	if err != nil {
		return err
	}
	var positions []*Position
	err = s.view(func(ledger *staking.Staking, now uint64) error {
		all, err := ledger.PositionsOf(owner)
		if err != nil {
			return err
		}
		positions = convertPositions(all, now)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, positions)
}

func (s *Staking) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	owner, err := utils.AddressVar(vars, "owner")
	if err != nil {
		return err
	}
	index, err := strconv.ParseUint(vars["index"], 10, 64)
	if err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "index"))
	}
	var position *Position
	err = s.view(func(ledger *staking.Staking, now uint64) error {
		p, err := ledger.Position(owner, index)
		if err != nil {
			return err
		}
		position = convertPosition(index, p, now)
		return nil
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, position)
}

func (s *Staking) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("caller: missing"))
	}
	amount, err := utils.BigInt(body.Amount, "amount")
	if err != nil {
		return utils.BadRequest(err)
	}

	method := builtin.Staking.MustMethod("stake")
	input, err := method.EncodeInput(amount, body.Duration)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := s.rt.Call(*body.Caller, builtin.Staking.Address, nil, input)
	if err != nil {
		return err
	}
	var index *big.Int
	if err := method.DecodeOutput(receipt.Output, &index); err != nil {
		return pkgerrors.WithMessage(err, "decode output")
	}
	return utils.WriteJSON(w, &StakeResult{
		Index:   index.Uint64(),
		Receipt: utils.ConvertReceipt(receipt),
	})
}

func (s *Staking) handleWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body WithdrawRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("caller: missing"))
	}
	owners := make([]common.Address, 0, len(body.Requests))
	indices := make([]*big.Int, 0, len(body.Requests))
	for i, r := range body.Requests {
		if r == nil || r.Owner == nil {
			return utils.BadRequest(fmt.Errorf("requests[%d]: owner missing", i))
		}
		owners = append(owners, common.Address(*r.Owner))
		indices = append(indices, new(big.Int).SetUint64(r.Index))
	}

	input, err := builtin.Staking.MustMethod("withdraw").EncodeInput(owners, indices)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := s.rt.Call(*body.Caller, builtin.Staking.Address, nil, input)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodGet).
		Name("GET /staking/config").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetConfig))
	sub.Path("/durations/{days}").
		Methods(http.MethodGet).
		Name("GET /staking/durations/{days}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleIsAllowedDuration))
	sub.Path("/owners").
		Methods(http.MethodGet).
		Name("GET /staking/owners").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetOwners))
	sub.Path("/positions").
		Methods(http.MethodGet).
		Name("GET /staking/positions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetAllPositions))
	sub.Path("/positions/{owner}").
		Methods(http.MethodGet).
		Name("GET /staking/positions/{owner}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPositions))
	sub.Path("/positions/{owner}/{index}").
		Methods(http.MethodGet).
		Name("GET /staking/positions/{owner}/{index}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPosition))
	sub.Path("/stake").
		Methods(http.MethodPost).
		Name("POST /staking/stake").
		HandlerFunc(utils.WrapHandlerFunc(s.handleStake))
	sub.Path("/withdraw").
		Methods(http.MethodPost).
		Name("POST /staking/withdraw").
		HandlerFunc(utils.WrapHandlerFunc(s.handleWithdraw))
}
