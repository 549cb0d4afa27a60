package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/speech_gateway/internal/app"
	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/config"
	"github.com/ncecere/speech_gateway/internal/health"
	"github.com/ncecere/speech_gateway/internal/observability"
)

func newTestServer(t *testing.T, checks ...health.Check) *Server {
	t.Helper()
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: 0, BodyLimitMB: 1}}
	provider, err := observability.Setup(context.Background(), config.ObservabilityConfig{ServiceName: "speechd-test", EnableMetrics: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	server, err := New(&app.Container{
		Config:        cfg,
		Catalog:       audio.NewCatalog(),
		HealthMon:     health.NewMonitor(config.HealthConfig{CheckInterval: time.Hour}, checks...),
		Observability: provider,
	})
	require.NoError(t, err)
	return server
}

func get(t *testing.T, server *Server, path string) (*http.Response, string) {
	t.Helper()
	resp, err := server.Handler().Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func TestHealthz(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		server := newTestServer(t, health.Check{Name: "say", Probe: func(context.Context) error { return nil }})
		resp, body := get(t, server, "/healthz")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.Contains(t, body, `"status":"ok"`)
		require.Contains(t, body, `"say"`)
	})
	t.Run("degraded", func(t *testing.T) {
		server := newTestServer(t,
			health.Check{Name: "say", Probe: func(context.Context) error { return nil }},
			health.Check{Name: "ffmpeg", Probe: func(context.Context) error { return errors.New("ffmpeg not available") }},
		)
		resp, body := get(t, server, "/healthz")
		require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		require.Contains(t, body, `"status":"degraded"`)
		require.Contains(t, body, "ffmpeg not available")
	})
}

func TestMetricsRouteCountsRequests(t *testing.T) {
	server := newTestServer(t)
	_, _ = get(t, server, "/v1/models")

	resp, body := get(t, server, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, strings.Contains(body, `speech_gateway_http_requests_total{method="GET",route="/v1/models",status="200"} 1`), body)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	_, err = New(&app.Container{})
	require.Error(t, err)
}
