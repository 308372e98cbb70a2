// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"math"
	"math/big"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/builtin/gascharger"
	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/builtin/solidity"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
)

var (
	logger = log.WithContext("pkg", "staking")

	errAssetNotBound = errors.New("staking asset not bound")
)

// Asset is the staked token as seen by the ledger. The ledger is the msg.sender
// of TransferFrom and Transfer. Transfers may deliver less than the nominal amount.
type Asset interface {
	BalanceOf(addr thor.Address) (*big.Int, error)
	TransferFrom(from, to thor.Address, amount *big.Int) error
	Transfer(to thor.Address, amount *big.Int) error
}

// Events receives the deposit and withdrawal notifications.
type Events interface {
	OnStaked(owner thor.Address, index uint64, p *Position) error
	OnUnstaked(owner thor.Address, index uint64, p *Position) error
}

// Journal takes and restores snapshots of everything a call has touched.
type Journal interface {
	NewCheckpoint() int
	RevertTo(revision int)
}

// Host connects the ledger to the call it runs in. Views need none of it.
type Host struct {
	Asset   Asset
	Events  Events
	Journal Journal // defaults to the state
}

type noEvents struct{}

func (noEvents) OnStaked(thor.Address, uint64, *Position) error   { return nil }
func (noEvents) OnUnstaked(thor.Address, uint64, *Position) error { return nil }

// Config is the construction time configuration of the ledger.
type Config struct {
	Asset     thor.Address
	Min       *big.Int
	Max       *big.Int
	Durations []uint64 // days
}

// Staking implements the time-locked staking ledger.
type Staking struct {
	addr    thor.Address
	storage *storage
	asset   Asset
	events  Events
	journal Journal
}

// New create a new instance. host may be nil for read only use.
func New(addr thor.Address, state *state.State, host *Host, charger *gascharger.Charger) *Staking {
	var useGas solidity.UseGasFunc
	if charger != nil {
		useGas = charger.Charge
	}
	s := &Staking{
		addr:    addr,
		storage: newStorage(solidity.NewContext(addr, state, useGas)),
		events:  noEvents{},
		journal: state,
	}
	if host != nil {
		s.asset = host.Asset
		if host.Events != nil {
			s.events = host.Events
		}
		if host.Journal != nil {
			s.journal = host.Journal
		}
	}
	return s
}

// Address returns the contract address of the ledger.
func (s *Staking) Address() thor.Address {
	return s.addr
}

// Initialize writes the configuration and the allowed durations. It can be done only once.
func (s *Staking) Initialize(cfg *Config) error {
	existing, err := s.storage.config.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get config")
	}
	if existing != nil {
		return reverts.ErrAlreadyInitialized
	}

	if cfg.Asset.IsZero() {
		return reverts.NewRequireError("asset address is zero")
	}
	if cfg.Min == nil || cfg.Min.Sign() <= 0 {
		return reverts.NewRequireError("minimum must be positive")
	}
	if cfg.Max == nil || cfg.Max.Cmp(cfg.Min) < 0 {
		return reverts.NewRequireError("maximum below minimum")
	}
	if len(cfg.Durations) == 0 {
		return reverts.NewRequireError("no allowed duration")
	}
	for _, d := range cfg.Durations {
		if d == 0 || d > math.MaxUint32 {
			return reverts.ErrInvalidDuration
		}
	}

	if err := s.storage.config.Set(&storedConfig{
		Asset: cfg.Asset,
		Min:   new(big.Int).Set(cfg.Min),
		Max:   new(big.Int).Set(cfg.Max),
	}); err != nil {
		return errors.Wrap(err, "failed to set config")
	}
	for _, d := range cfg.Durations {
		if _, err := s.storage.durations.Add(duration(d)); err != nil {
			return errors.Wrap(err, "failed to add duration")
		}
	}
	logger.Info("staking initialized", "asset", cfg.Asset, "min", cfg.Min, "max", cfg.Max, "durations", cfg.Durations)
	return nil
}

// Stake pulls amount from caller and records what was actually received as a
// new position locked for the given number of days. It returns the index of
// the position.
func (s *Staking) Stake(caller thor.Address, amount *big.Int, days uint32, now uint64) (index uint64, err error) {
	logger.Debug("stake", "caller", caller, "amount", amount, "duration", days)
	defer func() {
		if err != nil {
			reject("stake", err)
		}
	}()

	cfg, err := s.storage.getConfig()
	if err != nil {
		return 0, err
	}
	allowed, err := s.storage.durations.Contains(duration(days))
	if err != nil {
		return 0, errors.Wrap(err, "failed to check duration")
	}
	if !allowed {
		return 0, reverts.ErrInvalidDuration
	}
	lockTime := thor.DaysToSeconds(days)
	if now > math.MaxUint64-lockTime {
		return 0, reverts.ErrInvalidTimestampRange
	}
	if s.asset == nil {
		return 0, errAssetNotBound
	}
	locked, err := s.storage.lock.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get lock")
	}
	if locked {
		return 0, reverts.ErrReentrantCall
	}

	checkpoint := s.journal.NewCheckpoint()
	p, index, err := s.deposit(cfg, caller, amount, now, now+lockTime)
	if err != nil {
		s.journal.RevertTo(checkpoint)
		return 0, err
	}

	metricStakes().Add(1)
	logger.Info("staked", "owner", caller, "index", index, "amount", p.Amount, "duration", days, "expiresAt", p.ExpiresAt)
	return index, nil
}

func (s *Staking) deposit(cfg *storedConfig, caller thor.Address, amount *big.Int, now, expiresAt uint64) (*Position, uint64, error) {
	if err := s.storage.lock.Set(true); err != nil {
		return nil, 0, errors.Wrap(err, "failed to set lock")
	}
	before, err := s.asset.BalanceOf(s.addr)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "balance before pull")
	}
	if err := s.asset.TransferFrom(caller, s.addr, amount); err != nil {
		return nil, 0, errors.WithMessage(err, "pull stake")
	}
	after, err := s.asset.BalanceOf(s.addr)
	if err != nil {
		return nil, 0, errors.WithMessage(err, "balance after pull")
	}
	if err := s.storage.lock.Set(false); err != nil {
		return nil, 0, errors.Wrap(err, "failed to clear lock")
	}

	received := new(big.Int).Sub(after, before)
	var bound error
	if received.Cmp(cfg.Min) < 0 {
		bound = reverts.ErrAmountTooLow
	} else if received.Cmp(cfg.Max) > 0 {
		bound = reverts.ErrAmountTooHigh
	}
	if bound != nil {
		if received.Sign() > 0 {
			if err := s.asset.Transfer(caller, received); err != nil {
				return nil, 0, errors.WithMessage(err, "refund stake")
			}
		}
		logger.Info("stake out of bounds", "caller", caller, "requested", amount, "received", received, "min", cfg.Min, "max", cfg.Max)
		return nil, 0, bound
	}

	if _, err := s.storage.owners.Add(caller); err != nil {
		return nil, 0, errors.Wrap(err, "failed to add owner")
	}
	p := &Position{
		Amount:    received,
		StakedAt:  now,
		ExpiresAt: expiresAt,
	}
	index, err := s.storage.appendPosition(caller, p)
	if err != nil {
		return nil, 0, err
	}
	if err := s.storage.totalStaked.Add(received); err != nil {
		return nil, 0, errors.Wrap(err, "failed to add total staked")
	}
	if err := s.events.OnStaked(caller, index, p); err != nil {
		return nil, 0, err
	}
	return p, index, nil
}

// Withdraw releases a batch of expired positions to their owners. Either every
// request of the batch succeeds or none does. Anyone may call it.
func (s *Staking) Withdraw(requests []WithdrawRequest, now uint64) (err error) {
	logger.Debug("withdraw", "requests", len(requests))
	defer func() {
		if err != nil {
			reject("withdraw", err)
		}
	}()

	if len(requests) == 0 {
		return nil
	}
	if _, err := s.storage.getConfig(); err != nil {
		return err
	}
	if s.asset == nil {
		return errAssetNotBound
	}
	locked, err := s.storage.lock.Get()
	if err != nil {
		return errors.Wrap(err, "failed to get lock")
	}
	if locked {
		return reverts.ErrReentrantCall
	}

	// validate the whole batch before moving anything
	seen := make(map[WithdrawRequest]struct{}, len(requests))
	for i, req := range requests {
		if _, dup := seen[req]; dup {
			logger.Info("duplicate withdraw request", "batchIndex", i, "owner", req.Owner, "index", req.Index)
			return reverts.ErrAlreadyWithdrawn
		}
		seen[req] = struct{}{}
		if _, err := s.withdrawable(req, now); err != nil {
			logger.Info("withdraw request rejected", "batchIndex", i, "owner", req.Owner, "index", req.Index, "error", err)
			return err
		}
	}

	checkpoint := s.journal.NewCheckpoint()
	released := new(big.Int)
	for i, req := range requests {
		amount, err := s.release(req, now)
		if err != nil {
			s.journal.RevertTo(checkpoint)
			logger.Info("withdraw batch reverted", "batchIndex", i, "owner", req.Owner, "index", req.Index, "error", err)
			return err
		}
		released.Add(released, amount)
	}

	metricWithdrawals().Add(int64(len(requests)))
	metricBatchSize().Observe(int64(len(requests)))
	logger.Info("withdrawn", "requests", len(requests), "released", released)
	return nil
}

func (s *Staking) withdrawable(req WithdrawRequest, now uint64) (*Position, error) {
	p, err := s.storage.getPosition(req.Owner, req.Index)
	if err != nil {
		return nil, err
	}
	if p.IsWithdrawn() {
		return nil, reverts.ErrAlreadyWithdrawn
	}
	if now < p.ExpiresAt {
		return nil, reverts.ErrNotYetExpired
	}
	return p, nil
}

// release marks the position withdrawn before paying it out, so a call back
// into the ledger from the transfer sees it as withdrawn.
func (s *Staking) release(req WithdrawRequest, now uint64) (*big.Int, error) {
	p, err := s.withdrawable(req, now)
	if err != nil {
		return nil, err
	}
	p.WithdrawnAt = now
	if err := s.storage.setPosition(req.Owner, req.Index, p); err != nil {
		return nil, err
	}
	if err := s.storage.totalStaked.Sub(p.Amount); err != nil {
		return nil, errors.Wrap(err, "failed to sub total staked")
	}

	if err := s.asset.Transfer(req.Owner, p.Amount); err != nil {
		return nil, errors.WithMessage(err, "release stake")
	}
	if err := s.events.OnUnstaked(req.Owner, req.Index, p); err != nil {
		return nil, err
	}
	return p.Amount, nil
}

// Receive handles native value sent to the ledger, which is never accepted.
func (s *Staking) Receive(sender thor.Address, value *big.Int) error {
	logger.Info("native transfer rejected", "sender", sender, "value", value)
	reject("receive", reverts.ErrNativeTransferRejected)
	return reverts.ErrNativeTransferRejected
}
