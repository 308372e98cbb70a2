// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/lockstake/api/utils"
	"github.com/vechain/lockstake/log"
)

// PackageLeveler sets the level of a single package's loggers.
type PackageLeveler interface {
	SetPackageLevel(pkg string, lvl slog.Leveler)
}

type LogLevel struct {
	logLevel *slog.LevelVar
	pkgs     PackageLeveler

	mu        sync.Mutex
	pkgLevels map[string]*slog.LevelVar
}

// New creates the log level api. pkgs may be nil, which disables per package levels.
func New(logLevel *slog.LevelVar, pkgs PackageLeveler) *LogLevel {
	return &LogLevel{
		logLevel:  logLevel,
		pkgs:      pkgs,
		pkgLevels: make(map[string]*slog.LevelVar),
	}
}

// Track registers a package level set elsewhere, so that it is reported and adjustable.
func (l *LogLevel) Track(pkg string, lvl *slog.LevelVar) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pkgLevels[pkg] = lvl
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("get-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.getLogLevel))

	sub.Path("").
		Methods(http.MethodPost).
		Name("post-log-level").
		HandlerFunc(utils.WrapHandlerFunc(l.postLogLevel))
}

func parseLevel(s string) (slog.Level, bool) {
	switch s {
	case "debug":
		return log.LevelDebug, true
	case "info":
		return log.LevelInfo, true
	case "warn":
		return log.LevelWarn, true
	case "error":
		return log.LevelError, true
	case "trace":
		return log.LevelTrace, true
	case "crit":
		return log.LevelCrit, true
	}
	return 0, false
}

func (l *LogLevel) response() *Response {
	l.mu.Lock()
	defer l.mu.Unlock()

	res := &Response{CurrentLevel: l.logLevel.Level().String()}
	if len(l.pkgLevels) > 0 {
		res.Packages = make(map[string]string, len(l.pkgLevels))
		for pkg, lvl := range l.pkgLevels {
			res.Packages[pkg] = lvl.Level().String()
		}
	}
	return res
}

func (l *LogLevel) getLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, l.response())
}

func (l *LogLevel) postLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req Request
	if err := utils.ParseJSON(r.Body, &req); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "Invalid request body"))
	}

	lvl, ok := parseLevel(req.Level)
	if !ok {
		return utils.BadRequest(errors.New("Invalid verbosity level"))
	}

	if req.Package == "" {
		l.logLevel.Set(lvl)
	} else {
		if l.pkgs == nil {
			return utils.BadRequest(errors.New("Package levels not supported"))
		}
		l.mu.Lock()
		pkgLevel, ok := l.pkgLevels[req.Package]
		if !ok {
			pkgLevel = new(slog.LevelVar)
			l.pkgLevels[req.Package] = pkgLevel
		}
		pkgLevel.Set(lvl)
		l.mu.Unlock()
		l.pkgs.SetPackageLevel(req.Package, pkgLevel)
	}

	return utils.WriteJSON(w, l.response())
}
