package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/auth"
	"github.com/vyrodovalexey/quotestore/internal/config"
	"github.com/vyrodovalexey/quotestore/internal/handler"
	"github.com/vyrodovalexey/quotestore/internal/model"
	"github.com/vyrodovalexey/quotestore/internal/service"
	"github.com/vyrodovalexey/quotestore/internal/store"
)

// testAuthenticator is a stub authenticator for server tests.
type testAuthenticator struct {
	principal *auth.Principal
	err       error
}

func (a *testAuthenticator) Authenticate(_ *http.Request) (*auth.Principal, error) {
	return a.principal, a.err
}

func (a *testAuthenticator) Method() auth.Method {
	return auth.MethodBasic
}

func testConfig(port int) *config.Config {
	cfg := config.Default()
	cfg.ServerPort = port
	return cfg
}

func newTestServer(t *testing.T, cfg *config.Config, authenticator auth.Authenticator) *Server {
	t.Helper()

	logger := zap.NewNop()
	hub := handler.NewEventHub(logger)
	quotes := service.New(store.NewMemoryStore(), logger, service.WithPublisher(hub))

	return New(cfg, logger, quotes, hub, authenticator)
}

func serve(s *Server, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	return rr
}

func TestNew(t *testing.T) {
	// Act
	server := newTestServer(t, testConfig(8080), nil)

	// Assert
	if server.router == nil || server.handler == nil {
		t.Fatal("router and handler should be set")
	}
	if server.Router() != server.router {
		t.Error("Router() should return the server's router")
	}
	if server.httpServer.Handler == nil {
		t.Error("httpServer handler should be set")
	}
	if server.hub == nil {
		t.Error("hub should not be nil")
	}
}

func TestNew_OptionalSurfaces(t *testing.T) {
	tests := []struct {
		name        string
		metrics     bool
		events      bool
		wantMetrics int
		wantEvents  int
	}{
		{name: "all enabled", metrics: true, events: true, wantMetrics: http.StatusOK, wantEvents: http.StatusBadRequest},
		{name: "all disabled", wantMetrics: http.StatusNotFound, wantEvents: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			cfg := testConfig(8080)
			cfg.MetricsEnabled = tt.metrics
			cfg.EventsEnabled = tt.events
			server := newTestServer(t, cfg, nil)

			// Act
			metrics := serve(server, http.MethodGet, "/metrics", "")
			events := serve(server, http.MethodGet, "/ws/events", "")

			// Assert
			if metrics.Code != tt.wantMetrics {
				t.Errorf("/metrics status = %d, want %d", metrics.Code, tt.wantMetrics)
			}
			// A plain GET fails the upgrade but proves the route exists.
			if events.Code != tt.wantEvents {
				t.Errorf("/ws/events status = %d, want %d", events.Code, tt.wantEvents)
			}
		})
	}
}

func TestServer_HealthEndpoint(t *testing.T) {
	// Arrange
	server := newTestServer(t, testConfig(8080), nil)

	// Act
	rr := serve(server, http.MethodGet, "/health", "")

	// Assert
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var response model.APIResponse[handler.HealthResponse]
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !response.Success || response.Data.Status != "healthy" {
		t.Errorf("response = %+v", response)
	}
}

func TestServer_QuoteLifecycle(t *testing.T) {
	// Arrange
	server := newTestServer(t, testConfig(8080), nil)

	// Act
	created := serve(server, http.MethodPost, "/api/v1/quotes",
		`{"title":"Stay hungry","author":"Jobs","category":"tech","tags":["life"],"rating":4.5}`)
	got := serve(server, http.MethodGet, "/api/v1/quotes/1", "")
	missing := serve(server, http.MethodGet, "/api/v1/quotes/99", "")
	deleted := serve(server, http.MethodDelete, "/api/v1/quotes/1", "")
	gone := serve(server, http.MethodGet, "/api/v1/quotes/1", "")

	// Assert
	checks := []struct {
		name string
		rr   *httptest.ResponseRecorder
		want int
	}{
		{"create", created, http.StatusCreated},
		{"get", got, http.StatusOK},
		{"missing", missing, http.StatusNotFound},
		{"delete", deleted, http.StatusNoContent},
		{"gone", gone, http.StatusNotFound},
	}
	for _, c := range checks {
		if c.rr.Code != c.want {
			t.Errorf("%s status = %d, want %d (body %s)", c.name, c.rr.Code, c.want, c.rr.Body.String())
		}
	}
}

func TestServer_MiddlewareApplied(t *testing.T) {
	// Arrange
	server := newTestServer(t, testConfig(8080), nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()

	// Act
	server.Handler().ServeHTTP(rr, req)

	// Assert
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("X-Request-ID header should be set by middleware")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("CORS headers should be set by middleware")
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	// Arrange
	server := newTestServer(t, testConfig(8080), &testAuthenticator{err: auth.ErrUnauthenticated})
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/quotes/7", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	rr := httptest.NewRecorder()

	// Act
	server.Handler().ServeHTTP(rr, req)

	// Assert
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want %d", rr.Code, http.StatusNoContent)
	}
	if !strings.Contains(rr.Header().Get("Access-Control-Allow-Headers"), auth.APIKeyHeader) {
		t.Errorf("Allow-Headers = %q, want it to include %s",
			rr.Header().Get("Access-Control-Allow-Headers"), auth.APIKeyHeader)
	}
}

func TestNew_WithAuthenticator(t *testing.T) {
	tests := []struct {
		name          string
		authenticator *testAuthenticator
		method        string
		path          string
		body          string
		wantStatus    int
	}{
		{
			name:          "reads stay public",
			authenticator: &testAuthenticator{err: auth.ErrUnauthenticated},
			method:        http.MethodGet,
			path:          "/api/v1/quotes",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "health stays public",
			authenticator: &testAuthenticator{err: auth.ErrUnauthenticated},
			method:        http.MethodGet,
			path:          "/health",
			wantStatus:    http.StatusOK,
		},
		{
			name:          "create rejected without credentials",
			authenticator: &testAuthenticator{err: auth.ErrUnauthenticated},
			method:        http.MethodPost,
			path:          "/api/v1/quotes",
			body:          `{"title":"t"}`,
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name:          "reset rejected with bad credentials",
			authenticator: &testAuthenticator{err: auth.ErrInvalidCredentials},
			method:        http.MethodDelete,
			path:          "/api/v1/quotes",
			wantStatus:    http.StatusUnauthorized,
		},
		{
			name: "create allowed for principal",
			authenticator: &testAuthenticator{
				principal: &auth.Principal{Method: auth.MethodBasic, Subject: "editor"},
			},
			method:     http.MethodPost,
			path:       "/api/v1/quotes",
			body:       `{"title":"t"}`,
			wantStatus: http.StatusCreated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			server := newTestServer(t, testConfig(8080), tt.authenticator)

			// Act
			rr := serve(server, tt.method, tt.path, tt.body)

			// Assert
			if rr.Code != tt.wantStatus {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestServer_HTTPServerConfiguration(t *testing.T) {
	// Act
	server := newTestServer(t, testConfig(3000), nil)

	// Assert
	if server.httpServer.Addr != ":3000" {
		t.Errorf("httpServer.Addr = %s, want :3000", server.httpServer.Addr)
	}
	if server.httpServer.ReadTimeout != 15*time.Second {
		t.Errorf("httpServer.ReadTimeout = %v, want 15s", server.httpServer.ReadTimeout)
	}
	if server.httpServer.ReadHeaderTimeout != 5*time.Second {
		t.Errorf("httpServer.ReadHeaderTimeout = %v, want 5s", server.httpServer.ReadHeaderTimeout)
	}
	if server.httpServer.WriteTimeout != 15*time.Second {
		t.Errorf("httpServer.WriteTimeout = %v, want 15s", server.httpServer.WriteTimeout)
	}
	if server.httpServer.IdleTimeout != 60*time.Second {
		t.Errorf("httpServer.IdleTimeout = %v, want 60s", server.httpServer.IdleTimeout)
	}
	if server.httpServer.MaxHeaderBytes != 1<<20 {
		t.Errorf("httpServer.MaxHeaderBytes = %d, want %d", server.httpServer.MaxHeaderBytes, 1<<20)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	// Arrange
	cfg := testConfig(18091)
	cfg.MetricsEnabled = false
	server := newTestServer(t, cfg, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://127.0.0.1:18091/health")
		if err == nil {
			_ = resp.Body.Close()
			break
		}
		time.Sleep(20 * time.Millisecond)
	}

	// Act
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := server.Shutdown(ctx)

	// Assert
	if err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
	if startErr := <-errCh; startErr != nil {
		t.Errorf("Start() error = %v, want nil", startErr)
	}
}

func TestServer_StartPortInUse(t *testing.T) {
	// Arrange
	blocker := httptest.NewServer(http.NotFoundHandler())
	defer blocker.Close()

	server := newTestServer(t, testConfig(8080), nil)
	server.httpServer.Addr = blocker.Listener.Addr().String()

	// Act
	err := server.Start()

	// Assert
	if err == nil {
		t.Error("Start() on a busy port should fail")
	}
}
