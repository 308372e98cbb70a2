// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"encoding/binary"

	"github.com/pkg/errors"

	"github.com/vechain/lockstake/lvldb"
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/state"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

// Builder helper to build genesis state.
type Builder struct {
	timestamp uint64
	procs     []func(env *xenv.Environment) error
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process.
func (b *Builder) State(proc func(st *state.State) error) *Builder {
	return b.Call(func(env *xenv.Environment) error {
		return proc(env.State())
	})
}

// Call add a process running in the genesis call environment.
func (b *Builder) Call(proc func(env *xenv.Environment) error) *Builder {
	b.procs = append(b.procs, proc)
	return b
}

func (b *Builder) run(env *xenv.Environment) error {
	for i, proc := range b.procs {
		if err := proc(env); err != nil {
			return errors.WithMessagef(err, "genesis process #%d", i)
		}
	}
	return nil
}

// ComputeID compute genesis ID. It is derived from the launch time and the
// state root the processes produce.
func (b *Builder) ComputeID() (thor.Bytes32, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return thor.Bytes32{}, err
	}
	defer db.Close()

	rt, err := runtime.New(state.NewStater(db), nil, nil)
	if err != nil {
		return thor.Bytes32{}, err
	}
	if err := rt.Bootstrap(thor.Bytes32{}, b.timestamp, b.run); err != nil {
		return thor.Bytes32{}, err
	}
	head, err := rt.Head()
	if err != nil {
		return thor.Bytes32{}, err
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], b.timestamp)
	return thor.Blake2b(head.Root.Bytes(), ts[:]), nil
}

// Build runs the genesis processes as block zero of rt.
func (b *Builder) Build(rt *runtime.Runtime, id thor.Bytes32) error {
	return rt.Bootstrap(id, b.timestamp, b.run)
}
