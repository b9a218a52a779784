package action

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"hashortcuts/internal/config"
	"hashortcuts/internal/logging"
)

func TestExecuteSendsAuthenticatedRequest(t *testing.T) {
	type seen struct {
		method, path, auth, contentType string
		body                            map[string]any
	}
	var calls atomic.Int32
	reqs := make(chan seen, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		s := seen{
			method:      r.Method,
			path:        r.URL.Path,
			auth:        r.Header.Get("Authorization"),
			contentType: r.Header.Get("Content-Type"),
		}
		if err := json.NewDecoder(r.Body).Decode(&s.body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		reqs <- s
		_, _ = w.Write([]byte(`[{"entity_id":"light.table"}]`))
	}))
	defer srv.Close()

	r := NewRunner(io.Discard, logging.NewTestLogger())
	sc := config.Shortcut{
		Name:     "table_led",
		Method:   "post",
		Endpoint: "/api/services/light/toggle",
		Body:     map[string]any{"entity_id": "light.table"},
	}
	res, err := r.Execute(context.Background(), config.Server{BaseURL: srv.URL + "/", Token: "secret"}, sc)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected exactly one call, got %d", calls.Load())
	}
	got := <-reqs
	if got.method != http.MethodPost || got.path != "/api/services/light/toggle" {
		t.Fatalf("unexpected request %s %s", got.method, got.path)
	}
	if got.auth != "Bearer secret" {
		t.Fatalf("Authorization = %q", got.auth)
	}
	if got.contentType != "application/json" {
		t.Fatalf("Content-Type = %q", got.contentType)
	}
	if got.body["entity_id"] != "light.table" {
		t.Fatalf("body = %v", got.body)
	}
	if !res.OK || res.StatusCode != http.StatusOK || !strings.Contains(res.Body, "light.table") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestExecuteEmptyBodySendsNothing(t *testing.T) {
	lengths := make(chan int64, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lengths <- r.ContentLength
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	r := NewRunner(io.Discard, logging.NewTestLogger())
	sc := config.Shortcut{Name: "ping", Method: "GET", Endpoint: "/api/", Body: map[string]any{}}
	res, err := r.Execute(context.Background(), config.Server{BaseURL: srv.URL, Token: "t"}, sc)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if length := <-lengths; length != 0 {
		t.Fatalf("expected empty request body, content length %d", length)
	}
	if !res.OK || res.StatusCode != http.StatusNoContent {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestTriggerReportsFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	var out bytes.Buffer
	r := NewRunner(&out, logging.NewTestLogger())
	sc := config.Shortcut{Name: "lamp", Method: "POST", Endpoint: "/api/x"}
	res, err := r.Trigger(context.Background(), config.Server{BaseURL: srv.URL, Token: "bad"}, sc, SourceCLI)
	if err != nil {
		t.Fatalf("non-2xx must not be an error: %v", err)
	}
	if res.OK {
		t.Fatalf("401 must not be ok")
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "[cli] Triggering 'lamp' -> POST /api/x" {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[cli] lamp: fail (401, ") {
		t.Fatalf("status line = %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "[cli] Response: unauthorized") {
		t.Fatalf("response line = %q", lines[2])
	}
}

func TestTriggerReportsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	var out bytes.Buffer
	r := NewRunner(&out, logging.NewTestLogger())
	r.Timeout = 20 * time.Millisecond
	sc := config.Shortcut{Name: "slow", Method: "GET", Endpoint: "/"}
	if _, err := r.Trigger(context.Background(), config.Server{BaseURL: srv.URL, Token: "t"}, sc, SourceHotkey); err == nil {
		t.Fatalf("expected timeout error")
	}
	if !strings.Contains(out.String(), "[hotkey] slow: error ") {
		t.Fatalf("missing error line: %q", out.String())
	}
}
