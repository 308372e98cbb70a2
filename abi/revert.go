// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package abi

import (
	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
)

// UnpackRevert resolves revert data: Error(string), Panic(uint256) or a custom
// error declared in this ABI.
func (a *ABI) UnpackRevert(data []byte) (string, error) {
	if len(data) >= 4 {
		var sel [4]byte
		copy(sel[:], data)
		if name, ok := a.errors[sel]; ok {
			return name, nil
		}
	}
	return UnpackRevert(data)
}

// UnpackRevert resolves the abi encoded revert reason.
func UnpackRevert(data []byte) (string, error) {
	return ethabi.UnpackRevert(data)
}
