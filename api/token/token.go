// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/builtin/token"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

type Token struct {
	rt         *runtime.Runtime
	enableMint bool
}

// New creates the token api. Minting is exposed only when enableMint is set.
func New(rt *runtime.Runtime, enableMint bool) *Token {
	return &Token{rt, enableMint}
}

func (t *Token) view(fn func(tk *token.Token) error) error {
	return t.rt.View(func(env *xenv.Environment) error {
		return fn(builtin.Token.WithState(env.State()))
	})
}

func (t *Token) handleGetInfo(w http.ResponseWriter, _ *http.Request) error {
	info := &Info{Address: builtin.Token.Address}
	err := t.view(func(tk *token.Token) (err error) {
		if info.Name, err = tk.Name(); err != nil {
			return
		}
		if info.Symbol, err = tk.Symbol(); err != nil {
			return
		}
		if info.FeeBps, err = tk.FeeBps(); err != nil {
			return
		}
		supply, err := tk.TotalSupply()
		info.TotalSupply = (*math.HexOrDecimal256)(supply)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, info)
}

func (t *Token) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "address")
	if err != nil {
		return err
	}
	var balance *big.Int
	err = t.view(func(tk *token.Token) (err error) {
		balance, err = tk.BalanceOf(addr)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{(*math.HexOrDecimal256)(balance)})
}

func (t *Token) handleGetAllowance(w http.ResponseWriter, req *http.Request) error {
	vars := mux.Vars(req)
	owner, err := utils.AddressVar(vars, "owner")
	if err != nil {
		return err
	}
	spender, err := utils.AddressVar(vars, "spender")
	if err != nil {
		return err
	}
	var allowance *big.Int
	err = t.view(func(tk *token.Token) (err error) {
		allowance, err = tk.Allowance(owner, spender)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Allowance{(*math.HexOrDecimal256)(allowance)})
}

// call runs a token method for caller and responds its receipt.
func (t *Token) call(w http.ResponseWriter, caller thor.Address, method string, args ...any) error {
	input, err := builtin.Token.MustMethod(method).EncodeInput(args...)
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := t.rt.Call(caller, builtin.Token.Address, nil, input)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (t *Token) handleApprove(w http.ResponseWriter, req *http.Request) error {
	var body ApproveRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("caller: missing"))
	}
	if body.Spender == nil {
		return utils.BadRequest(errors.New("spender: missing"))
	}
	amount, err := utils.BigInt(body.Amount, "amount")
	if err != nil {
		return utils.BadRequest(err)
	}
	return t.call(w, *body.Caller, "approve", common.Address(*body.Spender), amount)
}

func (t *Token) handleTransfer(w http.ResponseWriter, req *http.Request) error {
	var body TransferRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.Caller == nil {
		return utils.BadRequest(errors.New("caller: missing"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("to: missing"))
	}
	amount, err := utils.BigInt(body.Amount, "amount")
	if err != nil {
		return utils.BadRequest(err)
	}
	return t.call(w, *body.Caller, "transfer", common.Address(*body.To), amount)
}

func (t *Token) handleMint(w http.ResponseWriter, req *http.Request) error {
	if !t.enableMint {
		return utils.Forbidden(errors.New("mint disabled"))
	}
	var body MintRequest
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(pkgerrors.WithMessage(err, "body"))
	}
	if body.To == nil {
		return utils.BadRequest(errors.New("to: missing"))
	}
	amount, err := utils.BigInt(body.Amount, "amount")
	if err != nil {
		return utils.BadRequest(err)
	}
	receipt, err := t.rt.Execute(thor.Address{}, func(env *xenv.Environment) ([]byte, error) {
		return nil, builtin.Token.Native(env).Mint(*body.To, amount)
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (t *Token) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /token").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetInfo))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("GET /token/balances/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/allowances/{owner}/{spender}").
		Methods(http.MethodGet).
		Name("GET /token/allowances/{owner}/{spender}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetAllowance))
	sub.Path("/approve").
		Methods(http.MethodPost).
		Name("POST /token/approve").
		HandlerFunc(utils.WrapHandlerFunc(t.handleApprove))
	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /token/transfer").
		HandlerFunc(utils.WrapHandlerFunc(t.handleTransfer))
	sub.Path("/mint").
		Methods(http.MethodPost).
		Name("POST /token/mint").
		HandlerFunc(utils.WrapHandlerFunc(t.handleMint))
}
