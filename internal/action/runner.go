// Package action performs the authenticated REST call behind a shortcut.
package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"hashortcuts/internal/config"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds every call to the server.
const DefaultTimeout = 15 * time.Second

// Invocation sources used as output tags.
const (
	SourceCLI    = "cli"
	SourceHotkey = "hotkey"
)

// Result is the outcome of one call.
type Result struct {
	OK         bool
	StatusCode int
	ElapsedMS  int64
	Body       string
}

// Runner executes shortcuts against the server and reports progress.
type Runner struct {
	client  *http.Client
	outMu   sync.Mutex
	out     io.Writer
	logger  *logrus.Logger
	Timeout time.Duration
}

// NewRunner returns a Runner printing user-facing lines to out.
func NewRunner(out io.Writer, logger *logrus.Logger) *Runner {
	return &Runner{
		client:  &http.Client{},
		out:     out,
		logger:  logger,
		Timeout: DefaultTimeout,
	}
}

// Execute issues the HTTP call for sc. Transport failures and timeouts are
// returned as errors; non-2xx responses are not errors, only !OK.
func (r *Runner) Execute(ctx context.Context, srv config.Server, sc config.Shortcut) (Result, error) {
	url := strings.TrimRight(srv.BaseURL, "/") + sc.Endpoint
	method := strings.ToUpper(sc.Method)

	var body io.Reader
	if len(sc.Body) > 0 {
		payload, err := json.Marshal(sc.Body)
		if err != nil {
			return Result{}, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Authorization", "Bearer "+srv.Token)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := r.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response: %w", err)
	}
	return Result{
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
		StatusCode: resp.StatusCode,
		ElapsedMS:  time.Since(start).Milliseconds(),
		Body:       string(text),
	}, nil
}

// Trigger runs sc once and prints the outcome tagged with source. The error
// is returned for bookkeeping only; it has already been reported.
func (r *Runner) Trigger(ctx context.Context, srv config.Server, sc config.Shortcut, source string) (Result, error) {
	log := r.logger.WithFields(logrus.Fields{
		"shortcut": sc.Name,
		"source":   source,
	})
	r.printf("[%s] Triggering '%s' -> %s %s\n", source, sc.Name, sc.Method, sc.Endpoint)
	log.Debug("sending request")

	res, err := r.Execute(ctx, srv, sc)
	if err != nil {
		r.printf("[%s] %s: error %v\n", source, sc.Name, err)
		log.WithError(err).Debug("request failed")
		return res, err
	}
	status := "ok"
	if !res.OK {
		status = "fail"
	}
	r.printf("[%s] %s: %s (%d, %dms)\n", source, sc.Name, status, res.StatusCode, res.ElapsedMS)
	if res.Body != "" {
		r.printf("[%s] Response: %s\n", source, res.Body)
	}
	log.WithFields(logrus.Fields{"status": res.StatusCode, "elapsed_ms": res.ElapsedMS}).Debug("request done")
	return res, nil
}

func (r *Runner) printf(format string, args ...any) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintf(r.out, format, args...)
}
