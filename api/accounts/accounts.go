// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"errors"
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	pkgerrors "github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/xenv"
)

type Accounts struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Accounts {
	return &Accounts{rt}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.AddressVar(mux.Vars(req), "address")
	if err != nil {
		return err
	}
	var balance *big.Int
	err = a.rt.View(func(env *xenv.Environment) (err error) {
		balance, err = env.State().GetBalance(addr)
		return
	})
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Account{
		Balance: (*math.HexOrDecimal256)(balance),
		HasCode: builtin.IsContract(addr),
	})
}

func (a *Accounts) handleTransfer(w http.ResponseWriter, req *http.Request) error {
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
	value, err := utils.BigInt(body.Value, "value")
	if err != nil {
		return utils.BadRequest(err)
	}
	if value.Sign() == 0 {
		return utils.BadRequest(errors.New("value: zero"))
	}
	receipt, err := a.rt.Call(*body.Caller, *body.To, value, nil)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, utils.ConvertReceipt(receipt))
}

func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/transfer").
		Methods(http.MethodPost).
		Name("POST /accounts/transfer").
		HandlerFunc(utils.WrapHandlerFunc(a.handleTransfer))
	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}
