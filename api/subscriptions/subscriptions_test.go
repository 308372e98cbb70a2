// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/builtin"
	"github.com/vechain/lockstake/test/testchain"
)

const backtraceLimit = 10

func newServer(t *testing.T) (*httptest.Server, *testchain.Chain, *Subscriptions) {
	chain, err := testchain.NewIntegrationTestChain()
	require.NoError(t, err)
	t.Cleanup(chain.Close)

	subs := New(chain.Runtime(), chain.LogDB(), []string{"*"}, backtraceLimit)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		subs.Close()
		ts.Close()
	})
	return ts, chain, subs
}

func dial(t *testing.T, ts *httptest.Server, path, query string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(ts.URL, "http://"), Path: path, RawQuery: query}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}

func readJSON(t *testing.T, conn *websocket.Conn, v any) {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(msg, v))
}

func TestBlockSubscription(t *testing.T) {
	ts, chain, _ := newServer(t)

	conn, resp, err := dial(t, ts, "/subscriptions/block", "pos=0")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	var msg BlockMessage
	readJSON(t, conn, &msg)
	assert.Equal(t, uint32(0), msg.Number)
	assert.Equal(t, chain.GenesisID(), msg.GenesisID)

	_, err = chain.Stake(chain.Accounts()[0].Address, big.NewInt(1000), 30)
	require.NoError(t, err)

	readJSON(t, conn, &msg)
	assert.LessOrEqual(t, uint32(1), msg.Number)
	head, err := chain.Runtime().Head()
	require.NoError(t, err)
	assert.LessOrEqual(t, msg.Number, head.Number)
}

func TestEventSubscription(t *testing.T) {
	ts, chain, _ := newServer(t)
	alice := chain.Accounts()[0].Address

	staked := builtin.Staking.MustEvent("Staked").ID()
	query := "addr=" + builtin.Staking.Address.String() + "&t0=" + staked.String()
	conn, _, err := dial(t, ts, "/subscriptions/event", query)
	require.NoError(t, err)
	defer conn.Close()

	_, err = chain.Stake(alice, big.NewInt(2500), 60)
	require.NoError(t, err)

	var msg EventMessage
	readJSON(t, conn, &msg)
	assert.Equal(t, builtin.Staking.Address, msg.Address)
	assert.Equal(t, staked, msg.Topics[0])
	require.NotNil(t, msg.Staking)
	assert.Equal(t, "Staked", msg.Staking.Name)
	assert.Equal(t, alice, msg.Staking.Owner)
	assert.Equal(t, big.NewInt(2500), (*big.Int)(msg.Staking.Amount))
	assert.Equal(t, uint32(60), msg.Staking.Duration)
}

func TestEventSubscriptionBacklog(t *testing.T) {
	ts, chain, _ := newServer(t)

	// genesis mints are replayed from block 0
	tokenAddr := builtin.Token.Address
	conn, _, err := dial(t, ts, "/subscriptions/event", "pos=0&addr="+tokenAddr.String())
	require.NoError(t, err)
	defer conn.Close()

	for range chain.Accounts() {
		var msg EventMessage
		readJSON(t, conn, &msg)
		assert.Equal(t, tokenAddr, msg.Address)
		assert.Equal(t, uint32(0), msg.Meta.BlockNumber)
		assert.Nil(t, msg.Staking)
	}
}

func TestBadRequests(t *testing.T) {
	ts, chain, _ := newServer(t)

	for range backtraceLimit + 1 {
		require.NoError(t, chain.Approve(chain.Accounts()[0].Address, big.NewInt(1)))
	}

	for _, tt := range []struct {
		path   string
		query  string
		status int
	}{
		{"/subscriptions/unknown", "", http.StatusNotFound},
		{"/subscriptions/block", "pos=abc", http.StatusBadRequest},
		{"/subscriptions/block", "pos=1000", http.StatusBadRequest},
		{"/subscriptions/block", "pos=0", http.StatusForbidden},
		{"/subscriptions/event", "addr=0x1", http.StatusBadRequest},
		{"/subscriptions/event", "t1=0xzz", http.StatusBadRequest},
	} {
		t.Run(tt.path+"?"+tt.query, func(t *testing.T) {
			_, resp, err := dial(t, ts, tt.path, tt.query)
			assert.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
