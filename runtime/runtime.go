// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/co"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/logdb"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/tx"
	"github.com/vechain/lockstake/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	errNotBootstrapped = errors.New("runtime not bootstrapped")
	errNoContract      = reverts.NewRequireError("no built-in contract at address")
	errInsufficientVal = reverts.NewRequireError("insufficient native balance")
)

// Func is the body of a call. The returned output goes into the receipt.
type Func func(env *xenv.Environment) ([]byte, error)

// Runtime serializes every state changing call. Each call is executed in its own
// block on top of the last committed state, and committed only when it succeeds.
type Runtime struct {
	mu       sync.RWMutex
	stater   *state.Stater
	logDB    *logdb.LogDB
	clock    func() uint64
	head     *Head
	notifier co.Notifier
}

// New create a runtime over the given stores. logDB may be nil, clock defaults
// to the wall clock.
func New(stater *state.Stater, logDB *logdb.LogDB, clock func() uint64) (*Runtime, error) {
	if clock == nil {
		clock = func() uint64 { return uint64(time.Now().Unix()) }
	}
	rt := &Runtime{
		stater: stater,
		logDB:  logDB,
		clock:  clock,
	}
	st := stater.NewState()
	head, err := loadHead(st)
	if err != nil {
		return nil, errors.Wrap(err, "load head")
	}
	if head != nil {
		if head.Root, err = stater.Root(); err != nil {
			return nil, errors.Wrap(err, "load root")
		}
		rt.head = head
		rt.updateTotalStaked(st)
	}
	return rt, nil
}

// Bootstrap executes the genesis procedure as block zero. It is skipped when the
// stores already hold the same genesis, and fails when they hold another one.
func (rt *Runtime) Bootstrap(genesisID thor.Bytes32, timestamp uint64, proc func(env *xenv.Environment) error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.head != nil {
		if rt.head.Genesis != genesisID {
			return errors.Errorf("genesis mismatch: stored %v, given %v", rt.head.Genesis, genesisID)
		}
		return nil
	}

	head := &Head{Genesis: genesisID, Number: 0, Time: timestamp}
	receipt, err := rt.run(head, thor.Address{}, func(env *xenv.Environment) ([]byte, error) {
		return nil, proc(env)
	})
	if err != nil {
		return errors.WithMessage(err, "genesis")
	}
	logger.Info("genesis initialized", "id", genesisID, "root", rt.head.Root, "events", len(receipt.Events))
	return nil
}

// Head returns a copy of the last committed head.
func (rt *Runtime) Head() (Head, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if rt.head == nil {
		return Head{}, errNotBootstrapped
	}
	return *rt.head, nil
}

// Now returns the current clock time.
func (rt *Runtime) Now() uint64 {
	return rt.clock()
}

// NewBlockWaiter returns a channel closed when the next block is committed.
func (rt *Runtime) NewBlockWaiter() <-chan struct{} {
	return rt.notifier.Wait()
}

// LogDB returns the notification store, nil if not configured.
func (rt *Runtime) LogDB() *logdb.LogDB {
	return rt.logDB
}

// Execute runs fn on behalf of origin in a new block. Nothing is committed if fn
// fails. For reverts the receipt of the failed call is returned along with the error.
func (rt *Runtime) Execute(origin thor.Address, fn Func) (*tx.Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.head == nil {
		return nil, errNotBootstrapped
	}

	now := rt.clock()
	if now < rt.head.Time {
		// block time never goes backwards
		now = rt.head.Time
	}
	next := &Head{
		Genesis: rt.head.Genesis,
		Number:  rt.head.Number + 1,
		Time:    now,
	}
	return rt.run(next, origin, fn)
}

// Call runs a built-in contract method on behalf of origin, optionally sending native value.
func (rt *Runtime) Call(origin, to thor.Address, value *big.Int, input []byte) (*tx.Receipt, error) {
	return rt.Execute(origin, func(env *xenv.Environment) ([]byte, error) {
		if value != nil && value.Sign() > 0 {
			if err := transferValue(env, to, value); err != nil {
				return nil, err
			}
		}
		if len(input) == 0 {
			return nil, nil
		}
		if !builtin.IsContract(to) {
			return nil, errNoContract
		}
		return builtin.Call(env, to, input, false)
	})
}

// StaticCall runs a const built-in method against the committed state.
func (rt *Runtime) StaticCall(caller, to thor.Address, input []byte) ([]byte, error) {
	var output []byte
	err := rt.View(func(env *xenv.Environment) error {
		var err error
		output, err = builtin.Call(env.WithCaller(caller), to, input, true)
		return err
	})
	return output, err
}

// View runs fn against the committed state with the current clock time.
// Changes made by fn are discarded.
func (rt *Runtime) View(fn func(env *xenv.Environment) error) error {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if rt.head == nil {
		return errNotBootstrapped
	}
	now := rt.clock()
	if now < rt.head.Time {
		now = rt.head.Time
	}
	env := xenv.New(
		rt.stater.NewState(),
		&xenv.BlockContext{Number: rt.head.Number, Time: now},
		&xenv.TransactionContext{},
		thor.Address{},
		nil,
	)
	return fn(env)
}

func transferValue(env *xenv.Environment, to thor.Address, value *big.Int) error {
	sender := env.Caller()
	if err := builtin.Receive(env, to, value); err != nil {
		return err
	}
	st := env.State()
	bal, err := st.GetBalance(sender)
	if err != nil {
		return err
	}
	if bal.Cmp(value) < 0 {
		return errInsufficientVal
	}
	if err := st.SetBalance(sender, new(big.Int).Sub(bal, value)); err != nil {
		return err
	}
	recipientBal, err := st.GetBalance(to)
	if err != nil {
		return err
	}
	if err := st.SetBalance(to, new(big.Int).Add(recipientBal, value)); err != nil {
		return err
	}
	env.UseGas(thor.GetBalanceGas * 2)
	env.Transfer(sender, to, value)
	return nil
}

// run executes fn in the block described by head and commits on success.
// Caller must hold the write lock.
func (rt *Runtime) run(head *Head, origin thor.Address, fn Func) (receipt *tx.Receipt, err error) {
	startTime := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
		}
		metricCallDuration().ObserveWithLabels(time.Since(startTime).Microseconds(), map[string]string{"status": status})
	}()

	txID := tx.NewID(origin, head.Number, 0)
	st := rt.stater.NewState()
	env := xenv.New(
		st,
		&xenv.BlockContext{Number: head.Number, Time: head.Time},
		&xenv.TransactionContext{ID: txID, Origin: origin},
		origin,
		nil,
	)
	receipt = &tx.Receipt{
		ID:          txID,
		BlockNumber: head.Number,
		BlockTime:   head.Time,
		Origin:      origin,
	}

	checkpoint := env.NewCheckpoint()
	output, err := fn(env)
	receipt.GasUsed = env.Charger().TotalGas()
	if err != nil {
		env.RevertTo(checkpoint)
		if reverts.IsRevertErr(err) {
			logger.Debug("call reverted", "origin", origin, "err", err)
			receipt.Reverted = true
			receipt.RevertReason = err.Error()
			return receipt, err
		}
		logger.Warn("call failed", "origin", origin, "err", err)
		return nil, err
	}
	receipt.Output = output
	receipt.Events = env.Events()
	receipt.Transfers = env.Transfers()

	if err := saveHead(st, head); err != nil {
		return nil, errors.Wrap(err, "save head")
	}
	stage, err := st.Stage()
	if err != nil {
		return nil, errors.Wrap(err, "stage state")
	}
	root, err := stage.Commit()
	if err != nil {
		return nil, errors.Wrap(err, "commit state")
	}
	head.Root = root
	rt.head = head

	if rt.logDB != nil {
		batch := rt.logDB.Prepare(head.Number, head.Time).
			ForTransaction(txID, origin).
			Insert(receipt.Events, receipt.Transfers)
		if err := batch.Commit(); err != nil {
			// state is already committed, the log store lags behind
			logger.Error("failed to write logs", "block", head.Number, "err", err)
		}
	}

	logger.Debug("block committed", "number", head.Number, "root", root, "events", len(receipt.Events), "gas", receipt.GasUsed)
	metricBlockNumber().Set(int64(head.Number))
	rt.updateTotalStaked(rt.stater.NewState())
	rt.notifier.Notify()
	return receipt, nil
}

func (rt *Runtime) updateTotalStaked(st *state.State) {
	total, err := builtin.Staking.WithState(st).TotalStaked()
	if err != nil {
		logger.Warn("failed to read total staked", "err", err)
		return
	}
	if total.IsInt64() {
		metricTotalStaked().Set(total.Int64())
	}
}
