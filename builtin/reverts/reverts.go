// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"encoding/binary"
	"encoding/hex"
	"errors"

	"github.com/vechain/lockstake/thor"
)

// Revert is implemented by errors that abort a contract call and roll back its effects.
type Revert interface {
	error
	// Bytes returns the abi encoded revert data.
	Bytes() []byte
}

// ErrRequire is a failed require(cond, message), encoded as Error(string).
type ErrRequire struct {
	message string
}

func NewRequireError(message string) *ErrRequire {
	return &ErrRequire{
		message: message,
	}
}

func (e *ErrRequire) Error() string {
	return e.message
}

func (e *ErrRequire) Bytes() []byte {
	if e == nil {
		return nil
	}

	// 4-byte selector for Error(string)
	selector, _ := hex.DecodeString("08c379a0")
	msgBytes := []byte(e.message)
	msgLen := uint64(len(msgBytes))

	// selector + offset (32 bytes) + length (32 bytes) + data (padded to 32)
	encoded := make([]byte, 0, 4+32+32+((len(msgBytes)+31)/32)*32)
	encoded = append(encoded, selector...)

	// Offset is always 0x20 (32) after the selector
	offset := make([]byte, 32)
	binary.BigEndian.PutUint64(offset[24:], 32)
	encoded = append(encoded, offset...)

	length := make([]byte, 32)
	binary.BigEndian.PutUint64(length[24:], msgLen)
	encoded = append(encoded, length...)

	data := make([]byte, ((len(msgBytes)+31)/32)*32)
	copy(data, msgBytes)
	encoded = append(encoded, data...)

	return encoded
}

// ErrCustom is a solidity custom error without parameters.
type ErrCustom struct {
	name     string
	selector [4]byte
}

// NewCustomError creates a custom error; the selector is keccak256("<name>()")[:4].
func NewCustomError(name string) *ErrCustom {
	e := &ErrCustom{name: name}
	copy(e.selector[:], thor.Keccak256([]byte(name+"()")).Bytes())
	return e
}

func (e *ErrCustom) Error() string {
	return e.name
}

func (e *ErrCustom) Name() string {
	return e.name
}

func (e *ErrCustom) Selector() [4]byte {
	return e.selector
}

func (e *ErrCustom) Bytes() []byte {
	return e.selector[:]
}

// Errors of the staking ledger.
var (
	ErrInvalidDuration        = NewCustomError("InvalidDuration")
	ErrAmountTooLow           = NewCustomError("AmountTooLow")
	ErrAmountTooHigh          = NewCustomError("AmountTooHigh")
	ErrIndexOutOfRange        = NewCustomError("IndexOutOfRange")
	ErrAlreadyWithdrawn       = NewCustomError("AlreadyWithdrawn")
	ErrNotYetExpired          = NewCustomError("NotYetExpired")
	ErrInvalidTimestampRange  = NewCustomError("InvalidTimestampRange")
	ErrAlreadyInitialized     = NewCustomError("AlreadyInitialized")
	ErrNotInitialized         = NewCustomError("NotInitialized")
	ErrReentrantCall          = NewCustomError("ReentrantCall")
	ErrNativeTransferRejected = NewCustomError("NativeTransferRejected")
)

// Errors of the built-in token.
var (
	ErrInsufficientBalance   = NewCustomError("InsufficientBalance")
	ErrInsufficientAllowance = NewCustomError("InsufficientAllowance")
	ErrInvalidReceiver       = NewCustomError("InvalidReceiver")
)

var customErrors = []*ErrCustom{
	ErrInvalidDuration,
	ErrAmountTooLow,
	ErrAmountTooHigh,
	ErrIndexOutOfRange,
	ErrAlreadyWithdrawn,
	ErrNotYetExpired,
	ErrInvalidTimestampRange,
	ErrAlreadyInitialized,
	ErrNotInitialized,
	ErrReentrantCall,
	ErrNativeTransferRejected,
	ErrInsufficientBalance,
	ErrInsufficientAllowance,
	ErrInvalidReceiver,
}

// BySelector finds a known custom error by its selector.
func BySelector(selector [4]byte) (*ErrCustom, bool) {
	for _, e := range customErrors {
		if e.selector == selector {
			return e, true
		}
	}
	return nil, false
}

// IsRevertErr reports whether err, or any error it wraps, is a revert.
func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var r Revert
	return errors.As(e, &r)
}

// Data returns the revert data carried by err, nil if err is not a revert.
func Data(err error) []byte {
	var r Revert
	if errors.As(err, &r) {
		return r.Bytes()
	}
	return nil
}
