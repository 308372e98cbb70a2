// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import "github.com/vechain/lockstake/metrics"

var (
	metricStateRead    = metrics.LazyLoadCounterVec("state_read_count", []string{"target", "cache"})
	metricStateChanges = metrics.LazyLoadCounterVec("state_changes_count", []string{"target"})
)
