// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/builtin/gascharger"
	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/builtin/solidity"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
)

var logger = log.WithContext("pkg", "token")

// MaxFeeBps is the highest transfer fee, 100%.
const MaxFeeBps = 10_000

var (
	slotName        = nameToSlot("token-name")
	slotSymbol      = nameToSlot("token-symbol")
	slotFee         = nameToSlot("token-fee-bps")
	slotTotalSupply = nameToSlot("token-total-supply")
	slotBalances    = nameToSlot("token-balances")
	slotAllowances  = nameToSlot("token-allowances")
)

func nameToSlot(name string) thor.Bytes32 {
	return thor.BytesToBytes32([]byte(name))
}

// Events receives the notifications produced by token operations.
type Events interface {
	OnTransfer(from, to thor.Address, amount *big.Int) error
	OnApproval(owner, spender thor.Address, amount *big.Int) error
}

type noEvents struct{}

func (noEvents) OnTransfer(thor.Address, thor.Address, *big.Int) error { return nil }
func (noEvents) OnApproval(thor.Address, thor.Address, *big.Int) error { return nil }

type allowanceKey struct {
	owner   thor.Address
	spender thor.Address
}

func (k allowanceKey) Bytes() []byte {
	return append(k.owner.Bytes(), k.spender.Bytes()...)
}

// Config of the token, written once.
type Config struct {
	Name   string
	Symbol string
	FeeBps uint64
}

// Token implements a fungible token living in contract storage. A fee in basis
// points may be taken from every transfer and burned.
type Token struct {
	addr        thor.Address
	events      Events
	name        *solidity.Value[string]
	symbol      *solidity.Value[string]
	fee         *solidity.Value[uint64]
	totalSupply *solidity.Uint256
	balances    *solidity.Mapping[thor.Address, *big.Int]
	allowances  *solidity.Mapping[allowanceKey, *big.Int]
}

// New create a new instance.
func New(addr thor.Address, state *state.State, events Events, charger *gascharger.Charger) *Token {
	var useGas solidity.UseGasFunc
	if charger != nil {
		useGas = charger.Charge
	}
	if events == nil {
		events = noEvents{}
	}
	sctx := solidity.NewContext(addr, state, useGas)
	return &Token{
		addr:        addr,
		events:      events,
		name:        solidity.NewValue[string](sctx, slotName),
		symbol:      solidity.NewValue[string](sctx, slotSymbol),
		fee:         solidity.NewValue[uint64](sctx, slotFee),
		totalSupply: solidity.NewUint256(sctx, slotTotalSupply),
		balances:    solidity.NewMapping[thor.Address, *big.Int](sctx, slotBalances),
		allowances:  solidity.NewMapping[allowanceKey, *big.Int](sctx, slotAllowances),
	}
}

// Address returns the contract address of the token.
func (t *Token) Address() thor.Address {
	return t.addr
}

// Initialize writes the token config. It can be done only once.
func (t *Token) Initialize(cfg Config) error {
	name, err := t.name.Get()
	if err != nil {
		return err
	}
	if name != "" {
		return reverts.ErrAlreadyInitialized
	}
	if cfg.Name == "" {
		return reverts.NewRequireError("token name is empty")
	}
	if cfg.FeeBps > MaxFeeBps {
		return reverts.NewRequireError("fee exceeds 100%")
	}
	if err := t.name.Set(cfg.Name); err != nil {
		return err
	}
	if err := t.symbol.Set(cfg.Symbol); err != nil {
		return err
	}
	return t.fee.Set(cfg.FeeBps)
}

func (t *Token) Name() (string, error) {
	return t.name.Get()
}

func (t *Token) Symbol() (string, error) {
	return t.symbol.Get()
}

func (t *Token) FeeBps() (uint64, error) {
	return t.fee.Get()
}

func (t *Token) TotalSupply() (*big.Int, error) {
	return t.totalSupply.Get()
}

func (t *Token) BalanceOf(addr thor.Address) (*big.Int, error) {
	bal, err := t.balances.Get(addr)
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(big.Int), nil
	}
	return bal, nil
}

func (t *Token) Allowance(owner, spender thor.Address) (*big.Int, error) {
	amount, err := t.allowances.Get(allowanceKey{owner, spender})
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return new(big.Int), nil
	}
	return amount, nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return reverts.NewRequireError("negative amount")
	}
	return nil
}

// Mint creates amount new tokens owned by to.
func (t *Token) Mint(to thor.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.ErrInvalidReceiver
	}
	if err := t.totalSupply.Add(amount); err != nil {
		return err
	}
	if err := t.addBalance(to, amount); err != nil {
		return err
	}
	logger.Debug("minted", "to", to, "amount", amount)
	return t.events.OnTransfer(thor.Address{}, to, amount)
}

func (t *Token) Approve(owner, spender thor.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if err := t.allowances.Set(allowanceKey{owner, spender}, amount); err != nil {
		return err
	}
	return t.events.OnApproval(owner, spender, amount)
}

// Transfer moves amount from one account to another. The fee is deducted from
// what the recipient receives.
func (t *Token) Transfer(from, to thor.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if to.IsZero() {
		return reverts.ErrInvalidReceiver
	}
	if err := t.subBalance(from, amount); err != nil {
		return err
	}

	bps, err := t.fee.Get()
	if err != nil {
		return err
	}
	fee := new(big.Int).Mul(amount, new(big.Int).SetUint64(bps))
	fee.Quo(fee, big.NewInt(MaxFeeBps))
	received := new(big.Int).Sub(amount, fee)

	if err := t.addBalance(to, received); err != nil {
		return err
	}
	if fee.Sign() > 0 {
		if err := t.totalSupply.Sub(fee); err != nil {
			return errors.WithMessage(err, "burn fee")
		}
		if err := t.events.OnTransfer(from, thor.Address{}, fee); err != nil {
			return err
		}
	}
	return t.events.OnTransfer(from, to, received)
}

// TransferFrom moves tokens of from on behalf of spender, consuming allowance.
func (t *Token) TransferFrom(spender, from, to thor.Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	allowance, err := t.Allowance(from, spender)
	if err != nil {
		return err
	}
	if allowance.Cmp(amount) < 0 {
		return reverts.ErrInsufficientAllowance
	}
	if err := t.allowances.Set(allowanceKey{from, spender}, new(big.Int).Sub(allowance, amount)); err != nil {
		return err
	}
	return t.Transfer(from, to, amount)
}

func (t *Token) addBalance(addr thor.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	return t.balances.Set(addr, new(big.Int).Add(bal, amount))
}

func (t *Token) subBalance(addr thor.Address, amount *big.Int) error {
	bal, err := t.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal.Cmp(amount) < 0 {
		return reverts.ErrInsufficientBalance
	}
	return t.balances.Set(addr, new(big.Int).Sub(bal, amount))
}

// As binds the token to a caller, the msg.sender of the transfers.
func (t *Token) As(caller thor.Address) *Caller {
	return &Caller{token: t, caller: caller}
}

// Caller is a token bound to a caller.
type Caller struct {
	token  *Token
	caller thor.Address
}

func (c *Caller) Address() thor.Address {
	return c.token.addr
}

func (c *Caller) BalanceOf(addr thor.Address) (*big.Int, error) {
	return c.token.BalanceOf(addr)
}

// TransferFrom moves tokens of from to to, the caller being the spender.
func (c *Caller) TransferFrom(from, to thor.Address, amount *big.Int) error {
	return c.token.TransferFrom(c.caller, from, to, amount)
}

// Transfer moves tokens owned by the caller.
func (c *Caller) Transfer(to thor.Address, amount *big.Int) error {
	return c.token.Transfer(c.caller, to, amount)
}
