// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/commsforge/commsforge/internal/backend"
	"github.com/commsforge/commsforge/internal/config"
	"github.com/commsforge/commsforge/internal/pipeline"
)

const feeLetter = "Your monthly account fee will increase from £5 to £7.50 on 1 March, " +
	"effective 11:59pm. No action is required. Questions? Call 0345 300 0000."

func newTestServer(t *testing.T) *Server {
	t.Helper()
	p, err := pipeline.New(config.Default(), backend.Offline{})
	if err != nil {
		t.Fatalf("pipeline construction failed: %v", err)
	}
	srv, err := NewServer(p, "offline")
	if err != nil {
		t.Fatalf("server construction failed: %v", err)
	}
	return srv
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["backend"] != "offline" {
		t.Fatalf("backend = %q, want offline", resp["backend"])
	}
}

func TestHandlePersonalize(t *testing.T) {
	srv := newTestServer(t)
	body, _ := json.Marshal(map[string]any{
		"letter": feeLetter,
		"customer": map[string]any{
			"name":            "Margaret Hughes",
			"account_balance": 25000.0,
			"postal_address":  "14 Elm Grove, Bristol BS6 6AB",
		},
	})
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/personalize", bytes.NewReader(body)))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rr.Code, rr.Body.String())
	}
	var bundle pipeline.Bundle
	if err := json.Unmarshal(rr.Body.Bytes(), &bundle); err != nil {
		t.Fatalf("decode bundle: %v", err)
	}
	if bundle.RequestID == "" {
		t.Fatalf("missing request id")
	}
	for _, name := range []string{"email", "sms", "app", "letter"} {
		if _, ok := bundle.Results[name]; !ok {
			t.Fatalf("missing %s result", name)
		}
	}
	if bundle.Results["email"].Method != "simulated" {
		t.Fatalf("offline backend should yield simulated results, got %s", bundle.Results["email"].Method)
	}
}

func TestHandlePersonalizeRejectsEmptyLetter(t *testing.T) {
	srv := newTestServer(t)
	body := []byte(`{"letter": "   ", "customer": {}}`)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/personalize", bytes.NewReader(body)))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandlePersonalizeRejectsMalformedBody(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/personalize", strings.NewReader("not json")))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestHandleLogsExposesHistory(t *testing.T) {
	srv := newTestServer(t)
	// generate some activity first
	body, _ := json.Marshal(map[string]any{"letter": feeLetter, "customer": map[string]any{"name": "James"}})
	srv.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/v1/personalize", bytes.NewReader(body)))

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/logs", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rr.Code)
	}
	var resp struct {
		Entries []struct {
			Message   string `json:"message"`
			Component string `json:"component"`
		} `json:"entries"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Entries) == 0 {
		t.Fatalf("expected captured log entries")
	}
}
