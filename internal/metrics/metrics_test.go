package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/credit-cli/pkg/backend"
)

type stubClient struct {
	err error
}

func (s stubClient) History(context.Context) (*backend.HistoryResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &backend.HistoryResponse{Months: []string{"Jan"}}, nil
}

func (s stubClient) Calculate(context.Context, backend.CalculateRequest) (*backend.CalculateResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &backend.CalculateResponse{AICreditScore: 700}, nil
}

func TestObserveHTTP(t *testing.T) {
	m := New(nil)

	m.ObserveHTTP("/api/history", http.MethodGet, 200, 10*time.Millisecond)
	m.ObserveHTTP("/api/history", http.MethodGet, 502, 10*time.Millisecond)
	m.ObserveHTTP("/api/history", http.MethodGet, 204, 10*time.Millisecond)

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/history", "GET", "2xx")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/history", "GET", "5xx")), 0.001)
}

func TestObserveScore(t *testing.T) {
	m := New(nil)
	m.ObserveScore("estimate", "Low")
	m.ObserveScore("estimate", "Low")

	assert.InDelta(t, 2.0, testutil.ToFloat64(m.ScoresComputed.WithLabelValues("estimate", "Low")), 0.001)
}

func TestInstrumentBackend(t *testing.T) {
	m := New(nil)

	ok := m.InstrumentBackend(stubClient{})
	_, err := ok.History(context.Background())
	require.NoError(t, err)
	resp, err := ok.Calculate(context.Background(), backend.CalculateRequest{})
	require.NoError(t, err)
	assert.Equal(t, 700, resp.Score())

	failing := m.InstrumentBackend(stubClient{err: errors.New("down")})
	_, err = failing.History(context.Background())
	require.Error(t, err)

	assert.InDelta(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("history", "ok")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("history", "error")), 0.001)
	assert.InDelta(t, 1.0, testutil.ToFloat64(m.BackendRequests.WithLabelValues("calculate", "ok")), 0.001)
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.OnboardingSessions.Set(3)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "credit_onboarding_sessions 3")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "2xx", statusLabel(200))
	assert.Equal(t, "3xx", statusLabel(303))
	assert.Equal(t, "4xx", statusLabel(429))
	assert.Equal(t, "5xx", statusLabel(503))
}
