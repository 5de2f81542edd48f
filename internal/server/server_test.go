package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wifiwatch/internal/config"
	"wifiwatch/internal/events"
	"wifiwatch/internal/metrics"
	"wifiwatch/internal/models"
	"wifiwatch/internal/monitor"
	"wifiwatch/internal/storage"
)

type pingerFunc func(ctx context.Context, host string) (int64, error)

func (f pingerFunc) Ping(ctx context.Context, host string) (int64, error) { return f(ctx, host) }

type radioFunc func(ctx context.Context) error

func (f radioFunc) Cycle(ctx context.Context) error { return f(ctx) }

type testEnv struct {
	ts    *httptest.Server
	mon   *monitor.Monitor
	bus   *events.Bus
	store *storage.SettingsStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	bus := events.NewBus()
	store, err := storage.NewSettingsStore(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	mon := monitor.New(config.Default(),
		pingerFunc(func(context.Context, string) (int64, error) { return 50, nil }),
		radioFunc(func(context.Context) error { return nil }),
		bus, nil)

	srv := New(":0", mon, bus, store, metrics.NewCollector())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		mon.Stop()
		bus.Close()
	})
	return &testEnv{ts: ts, mon: mon, bus: bus, store: store}
}

func getJSON(t *testing.T, url string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func TestGetSettingsReturnsDefaults(t *testing.T) {
	env := newTestEnv(t)

	var got config.Settings
	resp := getJSON(t, env.ts.URL+"/api/settings", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, config.Default(), got)
}

func TestPutSettingsAppliesAndPersists(t *testing.T) {
	env := newTestEnv(t)

	next := config.Settings{MaxLatencyMS: 200, CheckIntervalS: 15, PingHost: "1.1.1.1"}
	resp := doJSON(t, http.MethodPut, env.ts.URL+"/api/settings", next)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	applied := env.mon.Settings()
	assert.Equal(t, 200, applied.MaxLatencyMS)
	assert.Equal(t, 15, applied.CheckIntervalS)
	assert.Equal(t, "1.1.1.1", applied.PingHost)

	persisted, err := env.store.Load()
	require.NoError(t, err)
	assert.Equal(t, applied, persisted)
}

func TestPutSettingsRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	before := env.mon.Settings()

	bad := before
	bad.CheckIntervalS = 0
	resp := doJSON(t, http.MethodPut, env.ts.URL+"/api/settings", bad)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, before, env.mon.Settings(), "invalid settings must leave the prior ones active")
}

func TestPutSettingsRejectsMalformedBody(t *testing.T) {
	env := newTestEnv(t)

	req, err := http.NewRequest(http.MethodPut, env.ts.URL+"/api/settings", bytes.NewBufferString("{"))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPutSettingsEnabledStartsMonitoring(t *testing.T) {
	env := newTestEnv(t)

	next := config.Default()
	next.Enabled = true
	resp := doJSON(t, http.MethodPut, env.ts.URL+"/api/settings", next)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.mon.Status().IsMonitoring)
}

func TestStatusSnapshot(t *testing.T) {
	env := newTestEnv(t)
	env.mon.RunOnce()

	var got models.Status
	resp := getJSON(t, env.ts.URL+"/api/status", &got)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, got.IsMonitoring)
	assert.Equal(t, int64(50), got.LastPing.LatencyMS)
	assert.Equal(t, models.StatusOK, got.LastPing.Status)
	assert.Equal(t, 0, got.RestartCount)
}

func TestStartStopEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp := doJSON(t, http.MethodPost, env.ts.URL+"/api/monitoring/start", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.mon.Status().IsMonitoring)

	// Idempotent: a second start succeeds and changes nothing.
	resp = doJSON(t, http.MethodPost, env.ts.URL+"/api/monitoring/start", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.mon.Status().IsMonitoring)

	resp = doJSON(t, http.MethodPost, env.ts.URL+"/api/monitoring/stop", nil)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, env.mon.Status().IsMonitoring)
}

func TestMethodGuards(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/monitoring/start"},
		{http.MethodGet, "/api/monitoring/stop"},
		{http.MethodDelete, "/api/settings"},
		{http.MethodPost, "/api/status"},
	}
	for _, tt := range tests {
		resp := doJSON(t, tt.method, env.ts.URL+tt.path, nil)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", tt.method, tt.path)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	resp, err := http.Get(env.ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
