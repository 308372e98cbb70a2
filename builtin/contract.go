// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"

	"github.com/vechain/lockstake/abi"
	"github.com/vechain/lockstake/builtin/gen"
	"github.com/vechain/lockstake/thor"
)

type contract struct {
	name    string
	Address thor.Address
	ABI     *abi.ABI
}

func mustLoadContract(name string) *contract {
	asset := "compiled/" + name + ".abi"
	data := gen.MustABI(asset)
	abi, err := abi.New(data)
	if err != nil {
		panic(fmt.Errorf("load ABI for '%s': %w", name, err))
	}

	return &contract{
		name,
		thor.BytesToAddress([]byte(name)),
		abi,
	}
}

// Name returns the contract name.
func (c *contract) Name() string {
	return c.name
}

// MustEvent returns the event of the given name, panics if not declared.
func (c *contract) MustEvent(name string) *abi.Event {
	ev, found := c.ABI.EventByName(name)
	if !found {
		panic("event not found: " + name)
	}
	return ev
}

// MustMethod returns the method of the given name, panics if not declared.
func (c *contract) MustMethod(name string) *abi.Method {
	m, found := c.ABI.MethodByName(name)
	if !found {
		panic("method not found: " + name)
	}
	return m
}
