// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the world state: native balances of accounts and
// the storage slots of built-in contracts.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ playback(staging) ] -> [ kv batch ]
//	        |
//	  [ lru cache ]
//	        |
//	  [ kv store ]
//
// Every State is created from a Stater and reads the last committed data.
// Nothing reaches the store until a Stage built from the journal is committed,
// and commits are expected to be serialized by the caller.
package state
