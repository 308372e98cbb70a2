// Copyright (c) 2026 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"context"
	"log/slog"
	"sync"
)

// LevelHandler filters records below a level. Loggers carrying a "pkg"
// attribute can be given their own level with SetPackageLevel.
type LevelHandler struct {
	inner     slog.Handler
	level     slog.Leveler
	overrides *sync.Map // pkg => slog.Leveler
	pkg       string
}

// NewLevelHandler wraps inner, which should accept every level.
func NewLevelHandler(inner slog.Handler, lvl slog.Leveler) *LevelHandler {
	return &LevelHandler{
		inner:     inner,
		level:     lvl,
		overrides: &sync.Map{},
	}
}

// SetPackageLevel sets the level of loggers created with WithContext("pkg", pkg).
func (h *LevelHandler) SetPackageLevel(pkg string, lvl slog.Leveler) {
	h.overrides.Store(pkg, lvl)
}

func (h *LevelHandler) Enabled(_ context.Context, lvl slog.Level) bool {
	min := h.level
	if h.pkg != "" {
		if v, ok := h.overrides.Load(h.pkg); ok {
			min = v.(slog.Leveler)
		}
	}
	return lvl >= min.Level()
}

func (h *LevelHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.inner.Handle(ctx, r)
}

func (h *LevelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	pkg := h.pkg
	for _, a := range attrs {
		if a.Key == "pkg" {
			pkg = a.Value.String()
		}
	}
	return &LevelHandler{
		inner:     h.inner.WithAttrs(attrs),
		level:     h.level,
		overrides: h.overrides,
		pkg:       pkg,
	}
}

func (h *LevelHandler) WithGroup(name string) slog.Handler {
	return &LevelHandler{
		inner:     h.inner.WithGroup(name),
		level:     h.level,
		overrides: h.overrides,
		pkg:       h.pkg,
	}
}
