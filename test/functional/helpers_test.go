//go:build functional

// Package functional exercises the quote server over a real listener.
package functional

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/quotestore/internal/auth"
	"github.com/vyrodovalexey/quotestore/internal/config"
	"github.com/vyrodovalexey/quotestore/internal/handler"
	"github.com/vyrodovalexey/quotestore/internal/model"
	"github.com/vyrodovalexey/quotestore/internal/server"
	"github.com/vyrodovalexey/quotestore/internal/service"
	"github.com/vyrodovalexey/quotestore/internal/store"
)

const (
	requestTimeout  = 5 * time.Second
	shutdownTimeout = 5 * time.Second
	testAPIKey      = "functional-key"
)

// testServer is a running quote server bound to a free local port.
type testServer struct {
	baseURL string
	client  *http.Client
}

func freePort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	defer l.Close()

	return l.Addr().(*net.TCPAddr).Port
}

// startServer runs the full stack with API key protection on mutations.
func startServer(t *testing.T) *testServer {
	t.Helper()

	cfg := config.Default()
	cfg.ServerPort = freePort(t)
	cfg.MetricsEnabled = false

	logger := zap.NewNop()
	authenticator, err := auth.NewAPIKeyAuthenticator(testAPIKey + ":functional")
	if err != nil {
		t.Fatalf("NewAPIKeyAuthenticator() error = %v", err)
	}
	hub := handler.NewEventHub(logger)
	quotes := service.New(store.NewMemoryStore(), logger, service.WithPublisher(hub))
	srv := server.New(cfg, logger, quotes, hub, authenticator)

	go func() {
		_ = srv.Start()
	}()

	ts := &testServer{
		baseURL: fmt.Sprintf("http://127.0.0.1:%d", cfg.ServerPort),
		client:  &http.Client{Timeout: requestTimeout},
	}
	ts.waitReady(t)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	return ts
}

func (ts *testServer) waitReady(t *testing.T) {
	t.Helper()

	deadline := time.Now().Add(requestTimeout)
	for time.Now().Before(deadline) {
		resp, err := ts.client.Get(ts.baseURL + "/health")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("server did not become ready")
}

// do sends a request. Mutating requests carry the API key when authed is set.
func (ts *testServer) do(t *testing.T, method, path string, body any, authed bool) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.baseURL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.Header.Set(auth.APIKeyHeader, testAPIKey)
	}

	resp, err := ts.client.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// expect checks the status and decodes the envelope data into dst.
func expect(t *testing.T, resp *http.Response, status int, dst any) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != status {
		raw, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, status, raw)
	}
	if dst == nil {
		return
	}

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if !envelope.Success {
		t.Fatal("envelope reports failure")
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func (ts *testServer) create(t *testing.T, q model.Quote) model.Quote {
	t.Helper()

	var created model.Quote
	expect(t, ts.do(t, http.MethodPost, "/api/v1/quotes", q, true), http.StatusCreated, &created)
	return created
}

func (ts *testServer) dialEvents(t *testing.T) *websocket.Conn {
	t.Helper()

	url := "ws" + strings.TrimPrefix(ts.baseURL, "http") + "/ws/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

// nextEvent reads the next change event from the feed.
func nextEvent(t *testing.T, conn *websocket.Conn) model.Event {
	t.Helper()

	if err := conn.SetReadDeadline(time.Now().Add(requestTimeout)); err != nil {
		t.Fatalf("set read deadline: %v", err)
	}
	var event model.Event
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read event: %v", err)
	}
	return event
}
