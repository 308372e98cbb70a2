// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking_test

import (
	"bytes"
	"encoding/json"
	"io"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apistaking "github.com/vechain/lockstake/api/staking"
	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/test/testchain"
	"github.com/vechain/lockstake/thor"
)

const day = uint64(86400)

var (
	ts    *httptest.Server
	chain *testchain.Chain
)

func initServer(t *testing.T) {
	var err error
	chain, err = testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	router := mux.NewRouter()
	apistaking.New(chain.Runtime()).Mount(router, "/staking")
	ts = httptest.NewServer(router)
	t.Cleanup(ts.Close)
}

func httpGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func httpPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/x-www-form-urlencoded", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func hexAmount(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func TestStaking(t *testing.T) {
	initServer(t)

	for _, tt := range []struct {
		name string
		fn   func(*testing.T)
	}{
		{"getConfig", getConfig},
		{"isAllowedDuration", isAllowedDuration},
		{"stakeAndQuery", stakeAndQuery},
		{"stakeRejected", stakeRejected},
		{"badRequests", badRequests},
		{"reportingEndpoints", reportingEndpoints},
		{"withdrawLifecycle", withdrawLifecycle},
	} {
		t.Run(tt.name, tt.fn)
	}
}

func getConfig(t *testing.T) {
	body, status := httpGet(t, ts.URL+"/staking/config")
	require.Equal(t, http.StatusOK, status, string(body))

	var cfg apistaking.Config
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, builtin.Token.Address, cfg.Asset)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(cfg.MinAmount))
	assert.Equal(t, big.NewInt(1_000_000), (*big.Int)(cfg.MaxAmount))
	assert.Equal(t, []uint32{30, 60, 90}, cfg.Durations)
}

func isAllowedDuration(t *testing.T) {
	for days, want := range map[string]bool{"30": true, "60": true, "90": true, "45": false, "0": false} {
		body, status := httpGet(t, ts.URL+"/staking/durations/"+days)
		require.Equal(t, http.StatusOK, status)
		var res apistaking.Allowed
		require.NoError(t, json.Unmarshal(body, &res))
		assert.Equal(t, want, res.Allowed, days)
	}
}

func stake(t *testing.T, caller thor.Address, amount int64, days uint32) *apistaking.StakeResult {
	require.NoError(t, chain.Approve(caller, big.NewInt(amount)))
	body, status := httpPost(t, ts.URL+"/staking/stake", &apistaking.StakeRequest{
		Caller:   &caller,
		Amount:   hexAmount(amount),
		Duration: days,
	})
	require.Equal(t, http.StatusOK, status, string(body))
	var res apistaking.StakeResult
	require.NoError(t, json.Unmarshal(body, &res))
	return &res
}

func stakeAndQuery(t *testing.T) {
	alice := chain.Accounts()[1].Address

	res := stake(t, alice, 5000, 30)
	assert.Equal(t, uint64(0), res.Index)
	assert.False(t, res.Receipt.Reverted)
	require.NotEmpty(t, res.Receipt.Events)

	staked := res.Receipt.Events[len(res.Receipt.Events)-1]
	assert.Equal(t, builtin.Staking.Address, staked.Address)
	assert.Equal(t, builtin.Staking.MustEvent("Staked").ID(), staked.Topics[0])

	body, status := httpGet(t, ts.URL+"/staking/positions/"+alice.String()+"/0")
	require.Equal(t, http.StatusOK, status, string(body))
	var pos apistaking.Position
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.Equal(t, big.NewInt(5000), (*big.Int)(pos.Amount))
	assert.Equal(t, uint32(30), pos.Duration)
	assert.Equal(t, pos.StakedAt+30*day, pos.ExpiresAt)
	assert.Equal(t, uint64(0), pos.WithdrawnAt)
	assert.Equal(t, "active", pos.Status)
}

func stakeRejected(t *testing.T) {
	bob := chain.Accounts()[2].Address
	require.NoError(t, chain.Approve(bob, big.NewInt(5000)))

	body, status := httpPost(t, ts.URL+"/staking/stake", &apistaking.StakeRequest{
		Caller:   &bob,
		Amount:   hexAmount(5000),
		Duration: 45,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	var revert utils.RevertError
	require.NoError(t, json.Unmarshal(body, &revert))
	assert.Contains(t, revert.Error, "InvalidDuration")
	assert.Len(t, revert.Data, 4)

	body, status = httpPost(t, ts.URL+"/staking/stake", &apistaking.StakeRequest{
		Caller:   &bob,
		Amount:   hexAmount(999),
		Duration: 30,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	require.NoError(t, json.Unmarshal(body, &revert))
	assert.Contains(t, revert.Error, "AmountTooLow")

	body, status = httpGet(t, ts.URL+"/staking/positions/"+bob.String())
	require.Equal(t, http.StatusOK, status)
	var positions []*apistaking.Position
	require.NoError(t, json.Unmarshal(body, &positions))
	assert.Empty(t, positions)
}

func withdrawLifecycle(t *testing.T) {
	carol := chain.Accounts()[3].Address
	stake(t, carol, 2000, 30)
	stake(t, carol, 3000, 60)

	balance, err := chain.TokenBalance(carol)
	require.NoError(t, err)

	// nothing expired yet, the batch fails as a whole
	req := &apistaking.WithdrawRequest{
		Caller: &carol,
		Requests: []*apistaking.WithdrawEntry{
			{Owner: &carol, Index: 0},
			{Owner: &carol, Index: 1},
		},
	}
	body, status := httpPost(t, ts.URL+"/staking/withdraw", req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "NotYetExpired")

	chain.AdvanceTime(30 * day)

	// second entry still locked, first must not be applied
	body, status = httpPost(t, ts.URL+"/staking/withdraw", req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "NotYetExpired")
	body, _ = httpGet(t, ts.URL+"/staking/positions/"+carol.String()+"/0")
	var pos apistaking.Position
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.Equal(t, "expired", pos.Status)
	assert.Equal(t, uint64(0), pos.WithdrawnAt)

	req.Requests = req.Requests[:1]
	body, status = httpPost(t, ts.URL+"/staking/withdraw", req)
	require.Equal(t, http.StatusOK, status, string(body))
	var receipt utils.Receipt
	require.NoError(t, json.Unmarshal(body, &receipt))
	assert.False(t, receipt.Reverted)
	assert.NotEmpty(t, receipt.Events)

	after, err := chain.TokenBalance(carol)
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Add(balance, big.NewInt(2000)), after)

	body, _ = httpGet(t, ts.URL+"/staking/positions/"+carol.String()+"/0")
	require.NoError(t, json.Unmarshal(body, &pos))
	assert.Equal(t, "withdrawn", pos.Status)
	assert.Equal(t, chain.Now(), pos.WithdrawnAt)

	// double withdrawal
	body, status = httpPost(t, ts.URL+"/staking/withdraw", req)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "AlreadyWithdrawn")

	// empty batch is a no-op
	body, status = httpPost(t, ts.URL+"/staking/withdraw", &apistaking.WithdrawRequest{Caller: &carol})
	assert.Equal(t, http.StatusOK, status, string(body))
}

func badRequests(t *testing.T) {
	_, status := httpGet(t, ts.URL+"/staking/positions/0xbad")
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpGet(t, ts.URL+"/staking/positions/"+chain.Accounts()[0].Address.String()+"/abc")
	assert.Equal(t, http.StatusBadRequest, status)

	_, status = httpGet(t, ts.URL+"/staking/durations/-1")
	assert.Equal(t, http.StatusBadRequest, status)

	body, status := httpPost(t, ts.URL+"/staking/stake", map[string]any{"amount": "1000", "duration": 30})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "caller")

	_, status = httpPost(t, ts.URL+"/staking/stake", map[string]any{"unknown": 1})
	assert.Equal(t, http.StatusBadRequest, status)

	caller := chain.Accounts()[0].Address
	body, status = httpPost(t, ts.URL+"/staking/withdraw", map[string]any{
		"caller":   caller,
		"requests": []any{map[string]any{"index": 0}},
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "owner missing")

	// out of range index on a read
	body, status = httpGet(t, ts.URL+"/staking/positions/"+caller.String()+"/100")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body), "IndexOutOfRange")
}

func reportingEndpoints(t *testing.T) {
	body, status := httpGet(t, ts.URL+"/staking/owners")
	require.Equal(t, http.StatusOK, status)
	var owners []common.Address
	require.NoError(t, json.Unmarshal(body, &owners))
	assert.NotEmpty(t, owners)

	body, status = httpGet(t, ts.URL+"/staking/positions")
	require.Equal(t, http.StatusOK, status)
	var all []*apistaking.OwnerPositions
	require.NoError(t, json.Unmarshal(body, &all))
	require.Len(t, all, len(owners))
	for i, op := range all {
		assert.Equal(t, thor.Address(owners[i]), op.Owner)
		assert.NotEmpty(t, op.Positions)
	}
}
