// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"

	"github.com/vechain/lockstake/builtin/reverts"
	"github.com/vechain/lockstake/metrics"
)

var (
	metricStakes      = metrics.LazyLoadCounter("staking_stakes_count")
	metricWithdrawals = metrics.LazyLoadCounter("staking_withdrawals_count")
	metricRejections  = metrics.LazyLoadCounterVec("staking_rejections_count", []string{"op", "reason"})
	metricBatchSize   = metrics.LazyLoadHistogram("staking_withdraw_batch_size", metrics.BucketBatchSize)
)

func reject(op string, err error) {
	reason := "other"
	var custom *reverts.ErrCustom
	if errors.As(err, &custom) {
		reason = custom.Name()
	} else if reverts.IsRevertErr(err) {
		reason = "require"
	}
	metricRejections().AddWithLabel(1, map[string]string{"op": op, "reason": reason})
}
