// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/thor"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandleXGenesisID(t *testing.T) {
	id := thor.BytesToBytes32([]byte("genesis"))
	handler := handleXGenesisID(okHandler(), id)

	tests := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"no header", "", "", http.StatusOK},
		{"matching header", id.String(), "", http.StatusOK},
		{"matching query", "", id.String(), http.StatusOK},
		{"mismatch", thor.Bytes32{}.String(), "", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/"
			if tt.query != "" {
				target += "?x-genesis-id=" + tt.query
			}
			req := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				req.Header.Set("x-genesis-id", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, id.String(), rr.Header().Get("x-genesis-id"))
		})
	}
}

func TestHandleXVersion(t *testing.T) {
	rr := httptest.NewRecorder()
	handleXVersion(okHandler()).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get("x-lockstake-ver"))
}

func TestRequestBodyLimit(t *testing.T) {
	handler := requestBodyLimit(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{}")))
	require.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	big := strings.Repeat("x", bodyLimit+1)
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(big)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("HOME", "/tmp/home")
	assert.True(t, strings.HasPrefix(defaultDataDir(), "/tmp/home"))
}
