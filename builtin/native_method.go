// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"fmt"
	"math/big"

	"github.com/vechain/lockstake/abi"
	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/thor"
	"github.com/vechain/lockstake/xenv"
)

var (
	errMethodNotFound   = reverts.NewRequireError("builtin: method not found")
	errWriteProtection  = reverts.NewRequireError("builtin: write protection")
	errMalformedInput   = reverts.NewRequireError("builtin: malformed input")
	errArgsLenMismatch  = reverts.NewRequireError("builtin: arguments length mismatch")
	errValueNotAccepted = reverts.NewRequireError("builtin: value not accepted")
)

type methodKey struct {
	thor.Address
	abi.MethodID
}

// nativeMethod describes a native call.
type nativeMethod struct {
	abi *abi.Method
	run func(env *nativeEnv) ([]any, error)
}

var nativeMethods = make(map[methodKey]*nativeMethod)

// nativeEnv env of native call invocation.
type nativeEnv struct {
	*xenv.Environment

	input  []byte
	method *abi.Method
}

// ParseArgs unpack input into args.
func (env *nativeEnv) ParseArgs(v any) {
	if err := env.method.DecodeInput(env.input, v); err != nil {
		// Call will handle it
		panic(err)
	}
}

// FindMethod returns the native method the input addresses on the contract at to.
func FindMethod(to thor.Address, input []byte) (*abi.Method, bool) {
	id, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, false
	}
	m, found := nativeMethods[methodKey{to, id}]
	if !found {
		return nil, false
	}
	return m.abi, true
}

// IsContract tells whether addr is a built-in contract.
func IsContract(addr thor.Address) bool {
	return addr == Staking.Address || addr == Token.Address
}

// Call runs the native method addressed by input with env.Caller() as msg.sender,
// and returns the ABI encoded output. Non const methods are rejected when readonly.
func Call(env *xenv.Environment, to thor.Address, input []byte, readonly bool) (output []byte, err error) {
	id, err := abi.ExtractMethodID(input)
	if err != nil {
		return nil, errMalformedInput
	}
	method, found := nativeMethods[methodKey{to, id}]
	if !found {
		return nil, errMethodNotFound
	}
	if readonly && !method.abi.Const() {
		return nil, errWriteProtection
	}

	defer func() {
		// handle panic in ParseArgs
		if e := recover(); e != nil {
			logger.Debug("native call panicked", "method", method.abi.Name(), "err", e)
			err = reverts.NewRequireError(fmt.Sprintf("builtin: %v", e))
		}
	}()

	out, err := method.run(&nativeEnv{env, input, method.abi})
	if err != nil {
		return nil, err
	}
	return method.abi.EncodeOutput(out...)
}

// Receive handles native value sent by env.Caller() to a built-in contract.
// Other recipients are left to the caller.
func Receive(env *xenv.Environment, to thor.Address, value *big.Int) error {
	switch to {
	case Staking.Address:
		return Staking.Native(env).Receive(env.Caller(), value)
	case Token.Address:
		return errValueNotAccepted
	}
	return nil
}
