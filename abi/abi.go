// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	"bytes"
	"errors"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/vechain/lockstake/thor"
)

// ABI holds information about methods, events and errors of contract.
type ABI struct {
	nameToMethod map[string]*Method
	nameToEvent  map[string]*Event
	methods      map[MethodID]*Method
	events       map[thor.Bytes32]*Event
	errors       map[[4]byte]string
}

// New create an ABI instance.
func New(data []byte) (*ABI, error) {
	parsed, err := ethabi.JSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	abi := &ABI{
		nameToMethod: make(map[string]*Method),
		nameToEvent:  make(map[string]*Event),
		methods:      make(map[MethodID]*Method),
		events:       make(map[thor.Bytes32]*Event),
		errors:       make(map[[4]byte]string),
	}

	for name := range parsed.Methods {
		ethMethod := parsed.Methods[name]
		var id MethodID
		copy(id[:], ethMethod.ID)
		method := &Method{id, &ethMethod}
		abi.methods[id] = method
		abi.nameToMethod[ethMethod.Name] = method
	}
	for name := range parsed.Events {
		ethEvent := parsed.Events[name]
		event := newEvent(&ethEvent)
		abi.events[event.ID()] = event
		abi.nameToEvent[ethEvent.Name] = event
	}
	for name, e := range parsed.Errors {
		var sel [4]byte
		copy(sel[:], e.ID[:4])
		abi.errors[sel] = name
	}
	return abi, nil
}

// MethodByInput find the method for given input.
// If the input shorter than MethodID, or method not found, an error returned.
func (a *ABI) MethodByInput(input []byte) (*Method, error) {
	id, err := ExtractMethodID(input)
	if err != nil {
		return nil, err
	}
	m, found := a.methods[id]
	if !found {
		return nil, errors.New("method not found")
	}
	return m, nil
}

// MethodByName find method for the given method name.
func (a *ABI) MethodByName(name string) (*Method, bool) {
	m, found := a.nameToMethod[name]
	return m, found
}

// MethodByID returns method for given method id.
func (a *ABI) MethodByID(id MethodID) (*Method, bool) {
	m, found := a.methods[id]
	return m, found
}

// EventByName find event for the given event name.
func (a *ABI) EventByName(name string) (*Event, bool) {
	e, found := a.nameToEvent[name]
	return e, found
}

// EventByID returns the event for the given event id.
func (a *ABI) EventByID(id thor.Bytes32) (*Event, bool) {
	e, found := a.events[id]
	return e, found
}

// ErrorBySelector returns the name of the custom error declared with the given selector.
func (a *ABI) ErrorBySelector(selector [4]byte) (string, bool) {
	name, found := a.errors[selector]
	return name, found
}

// unpack decodes data into v, which is a struct pointer for tuples or a pointer to the single value.
func unpack(args ethabi.Arguments, v any, data []byte) error {
	values, err := args.Unpack(data)
	if err != nil {
		return err
	}
	return args.Copy(v, values)
}
