// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/lockstake/api/admin/apilogs"
	"github.com/vechain/lockstake/api/admin/loglevel"
)

// NewHTTPHandler returns the admin router. pkgLevels may be nil.
func NewHTTPHandler(logLevel *slog.LevelVar, pkgLevels *loglevel.LogLevel, apiLogs *atomic.Bool) http.HandlerFunc {
	router := mux.NewRouter()
	subRouter := router.PathPrefix("/admin").Subrouter()

	if pkgLevels == nil {
		pkgLevels = loglevel.New(logLevel, nil)
	}
	pkgLevels.Mount(subRouter, "/loglevel")
	apilogs.New(apiLogs).Mount(subRouter, "/apilogs")

	handler := handlers.CompressHandler(router)

	return handler.ServeHTTP
}
