package ops

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Black-And-White-Club/league-ledger/app/shared/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newTestRouter(t *testing.T, db Pinger, burst int) http.Handler {
	t.Helper()
	registry := prometheus.NewRegistry()
	_, err := observability.NewPrometheusMetrics(registry)
	require.NoError(t, err)
	return NewRouter(observability.NoOpLogger, registry, db, NewIPRateLimiter(rate.Limit(0.001), burst))
}

func get(h http.Handler, path, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Healthz(t *testing.T) {
	tests := []struct {
		name string
		db   Pinger
		want int
	}{
		{name: "database up", db: fakePinger{}, want: http.StatusOK},
		{name: "database down", db: fakePinger{err: errors.New("connection refused")}, want: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestRouter(t, tt.db, 10), "/healthz", "10.0.0.1:4000")
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_Metrics(t *testing.T) {
	rec := get(newTestRouter(t, fakePinger{}, 10), "/metrics", "10.0.0.1:4000")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "league_ledger_skipped_points_entries_total")
}

func TestRateLimitMiddleware(t *testing.T) {
	h := newTestRouter(t, fakePinger{}, 2)

	assert.Equal(t, http.StatusOK, get(h, "/healthz", "10.0.0.1:4000").Code)
	assert.Equal(t, http.StatusOK, get(h, "/healthz", "10.0.0.1:4001").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(h, "/healthz", "10.0.0.1:4002").Code)

	assert.Equal(t, http.StatusOK, get(h, "/healthz", "10.0.0.2:4000").Code, "other clients keep their budget")
}
