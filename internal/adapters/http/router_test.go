package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dkeye/LiveTranslate/internal/app"
	"github.com/dkeye/LiveTranslate/internal/app/orch"
	"github.com/dkeye/LiveTranslate/internal/config"
	"github.com/dkeye/LiveTranslate/internal/core"
	"github.com/dkeye/LiveTranslate/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newTestRouter(t *testing.T, cfg *config.Config) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	if cfg.Secret == "" {
		cfg.Secret = "test-secret"
	}
	o := orch.New(app.SimplePolicy{})
	return SetupRouter(context.Background(), cfg, o, nil), o
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{})
	w := get(r, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestRoomsListing(t *testing.T) {
	r, o := newTestRouter(t, &config.Config{})
	a := o.Connect(nopConn{}, "")
	b := o.Connect(nopConn{}, "")
	c := o.Connect(nopConn{}, "")
	o.Join(a, "100", domain.ProfileUpdate{})
	o.Join(b, "100", domain.ProfileUpdate{})
	o.Join(c, "7", domain.ProfileUpdate{})

	w := get(r, "/api/rooms", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"rooms":[{"name":"100","client_count":2},{"name":"7","client_count":1}]}`, w.Body.String())
}

func TestAuthUserAnonymous(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{})
	w := get(r, "/auth/user", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isAuthenticated":false`)

	// login is only routed when an identity provider is configured
	assert.Equal(t, http.StatusNotFound, get(r, "/auth/login", nil).Code)
}

func TestMetricsToggle(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{Metrics: config.MetricsConfig{Enabled: true}})
	w := get(r, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "live_translate_rooms")

	r, _ = newTestRouter(t, &config.Config{})
	assert.Equal(t, http.StatusNotFound, get(r, "/metrics", nil).Code)
}

func TestCORSPreflight(t *testing.T) {
	r, _ := newTestRouter(t, &config.Config{Origins: []string{"http://localhost:3000"}})
	req := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestOriginAllowed(t *testing.T) {
	check := originAllowed([]string{"http://localhost:3000"})
	req := httptest.NewRequest(http.MethodGet, "/api/ws/signal", nil)
	assert.True(t, check(req), "non-browser client")

	req.Header.Set("Origin", "http://localhost:3000")
	assert.True(t, check(req))
	req.Header.Set("Origin", "http://evil.example")
	assert.False(t, check(req))

	assert.True(t, originAllowed([]string{"*"})(req))
}
