package run

import (
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

type metrics struct {
	fired   atomic.Int64
	ok      atomic.Int64
	failed  atomic.Int64
	dropped atomic.Int64
}

func (m *metrics) incFired()   { m.fired.Add(1) }
func (m *metrics) incOK()      { m.ok.Add(1) }
func (m *metrics) incFailed()  { m.failed.Add(1) }
func (m *metrics) incDropped() { m.dropped.Add(1) }

func (s *Server) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "ha_shortcuts_fired_total %d\n", s.metrics.fired.Load())
	fmt.Fprintf(w, "ha_shortcuts_ok_total %d\n", s.metrics.ok.Load())
	fmt.Fprintf(w, "ha_shortcuts_failed_total %d\n", s.metrics.failed.Load())
	fmt.Fprintf(w, "ha_shortcuts_dropped_total %d\n", s.metrics.dropped.Load())
}

func (s *Server) metricsServe(ctxDone <-chan struct{}, addr string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", s.metricsHandler)
	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	go func() {
		<-ctxDone
		_ = server.Close()
	}()
	s.logger.Infof("metrics listening on http://%s/metrics", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warnf("metrics server: %v", err)
	}
}
