// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/lockstake/api/accounts"
	"github.com/vechain/lockstake/api/doc"
	"github.com/vechain/lockstake/api/logs"
	"github.com/vechain/lockstake/api/middleware"
	"github.com/vechain/lockstake/api/node"
	"github.com/vechain/lockstake/api/staking"
	"github.com/vechain/lockstake/api/subscriptions"
	"github.com/vechain/lockstake/api/token"
	"github.com/vechain/lockstake/log"
	"github.com/vechain/lockstake/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint32
	PprofOn              bool
	SkipLogs             bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	LogsLimit            uint64
	// EnableMint exposes token minting, for dev networks only.
	EnableMint  bool
	NetworkName string
	Version     string
}

// New return api router
func New(rt *runtime.Runtime, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	// to serve the api docs
	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/lockstake.yaml", http.StatusTemporaryRedirect)
		})

	staking.New(rt).
		Mount(router, "/staking")
	token.New(rt, opts.EnableMint).
		Mount(router, "/token")
	accounts.New(rt).
		Mount(router, "/accounts")
	if !opts.SkipLogs {
		logs.New(rt.LogDB(), opts.LogsLimit).
			Mount(router, "/logs")
	}
	node.New(rt, opts.NetworkName, opts.Version).
		Mount(router, "/node")
	subs := subscriptions.New(rt, rt.LogDB(), origins, opts.BacktraceLimit)
	subs.Mount(router, "/subscriptions")

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type", "x-genesis-id"}),
		handlers.ExposedHeaders([]string{"x-genesis-id", "x-lockstake-ver"}),
	)(handler)

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
