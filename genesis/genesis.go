// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/vechain/lockstake/runtime"
	"github.com/vechain/lockstake/thor"
)

// Genesis to build genesis state.
type Genesis struct {
	builder *Builder
	id      thor.Bytes32
	name    string
}

func newGenesis(builder *Builder, name string) (*Genesis, error) {
	id, err := builder.ComputeID()
	if err != nil {
		return nil, err
	}
	return &Genesis{builder, id, name}, nil
}

// Build bootstraps rt with the genesis state.
func (g *Genesis) Build(rt *runtime.Runtime) error {
	return g.builder.Build(rt, g.id)
}

// ID returns genesis id.
func (g *Genesis) ID() thor.Bytes32 {
	return g.id
}

// Name returns network name.
func (g *Genesis) Name() string {
	return g.name
}

// LaunchTime returns the timestamp of the genesis.
func (g *Genesis) LaunchTime() uint64 {
	return g.builder.timestamp
}
