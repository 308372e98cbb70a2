// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/lockstake/log"
)

type record struct {
	level slog.Level
	ctx   map[string]any
}

// recordingHandler keeps every record it receives.
type recordingHandler struct {
	records *[]record
}

func (h recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h recordingHandler) Handle(_ context.Context, r slog.Record) error {
	rec := record{level: r.Level, ctx: map[string]any{}}
	r.Attrs(func(a slog.Attr) bool {
		rec.ctx[a.Key] = a.Value.Any()
		return true
	})
	*h.records = append(*h.records, rec)
	return nil
}

func (h recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h recordingHandler) WithGroup(string) slog.Handler      { return h }

func newRecordingLogger() (log.Logger, *[]record) {
	records := &[]record{}
	return log.NewLogger(recordingHandler{records}), records
}

func respond(status int, delay time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(delay)
		w.WriteHeader(status)
	}
}

func TestRequestLoggerMiddleware(t *testing.T) {
	tests := []struct {
		name      string
		handler   http.HandlerFunc
		enabled   bool
		slow      time.Duration
		log5xx    bool
		wantLog   bool
		wantLevel slog.Level
	}{
		{"enabled", respond(http.StatusOK, 0), true, 0, false, true, log.LevelInfo},
		{"disabled", respond(http.StatusOK, 0), false, 0, false, false, 0},
		{"slow query", respond(http.StatusOK, 15*time.Millisecond), false, 5 * time.Millisecond, false, true, log.LevelInfo},
		{"fast query under threshold", respond(http.StatusOK, 0), false, time.Second, false, false, 0},
		{"5xx logged", respond(http.StatusInternalServerError, 0), false, 0, true, true, log.LevelWarn},
		{"5xx ignored", respond(http.StatusInternalServerError, 0), false, 0, false, false, 0},
		{"revert is a 4xx", respond(http.StatusBadRequest, 0), false, 0, true, false, 0},
		{"enabled 5xx warns", respond(http.StatusServiceUnavailable, 0), true, 0, true, true, log.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, records := newRecordingLogger()
			var enabled atomic.Bool
			enabled.Store(tt.enabled)

			body := `{"caller":"0x7567d83b7b8d80addcb281a71d54fc7b3364ffed","amount":"1000","duration":30}`
			req := httptest.NewRequest(http.MethodPost, "http://localhost/staking/stake", strings.NewReader(body))
			rr := httptest.NewRecorder()
			RequestLoggerMiddleware(logger, &enabled, tt.slow, tt.log5xx)(tt.handler).ServeHTTP(rr, req)

			if !tt.wantLog {
				assert.Empty(t, *records)
				return
			}
			require.Len(t, *records, 1)
			rec := (*records)[0]
			assert.Equal(t, tt.wantLevel, rec.level)
			assert.Equal(t, "http://localhost/staking/stake", rec.ctx["URI"])
			assert.Equal(t, http.MethodPost, rec.ctx["Method"])
			assert.Equal(t, body, rec.ctx["Body"])
			assert.Equal(t, int64(rr.Code), rec.ctx["Status"])
			assert.IsType(t, int64(0), rec.ctx["Timestamp"])
		})
	}
}

func TestRequestLoggerKeepsBody(t *testing.T) {
	logger, _ := newRecordingLogger()
	var enabled atomic.Bool
	enabled.Store(true)

	var seen string
	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b := new(strings.Builder)
		_, err := io.Copy(b, r.Body)
		require.NoError(t, err)
		seen = b.String()
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/staking/withdraw", strings.NewReader(`{"requests":[]}`)))
	assert.Equal(t, `{"requests":[]}`, seen)
}

func TestRequestLoggerFirstStatusWins(t *testing.T) {
	logger, records := newRecordingLogger()
	var enabled atomic.Bool
	enabled.Store(true)

	handler := RequestLoggerMiddleware(logger, &enabled, 0, false)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/staking/config", nil))

	require.Len(t, *records, 1)
	assert.Equal(t, int64(http.StatusTeapot), (*records)[0].ctx["Status"])
}
