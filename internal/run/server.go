package run

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"hashortcuts/internal/action"
	"hashortcuts/internal/config"
	"hashortcuts/internal/control"
	"hashortcuts/internal/hotkey"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const recentFirings = 10

// Options carries the listener settings that come from the command line.
type Options struct {
	Backend    string
	SocketPath string    // control socket; empty disables it
	Out        io.Writer // user-facing output, defaults to stdout
}

type triggerer interface {
	Trigger(ctx context.Context, srv config.Server, sc config.Shortcut, source string) (action.Result, error)
}

// Server owns the worker pool that executes hotkey firings, the metrics
// endpoint and the control socket.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	runner    triggerer
	backend   string
	startedAt time.Time
	hotkeys   int

	firingsMu sync.Mutex
	firings   []control.Firing

	metrics metrics
	jobCh   chan job
}

type job struct {
	id       string
	shortcut config.Shortcut
}

func newServer(cfg *config.Config, runner triggerer, backend string, logger *logrus.Logger) *Server {
	return &Server{
		cfg:       cfg,
		logger:    logger,
		runner:    runner,
		backend:   backend,
		startedAt: time.Now(),
		firings:   make([]control.Firing, 0, recentFirings),
		jobCh:     make(chan job, max(1, cfg.Listener.QueueSize)),
	}
}

// Serve registers every hotkey with provider and listens until ctx is done
// or SIGINT/SIGTERM arrives. Registration errors abort before listening.
func Serve(ctx context.Context, cfg *config.Config, provider hotkey.Provider, opts Options, logger *logrus.Logger) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	srv := newServer(cfg, action.NewRunner(out, logger), opts.Backend, logger)
	return srv.serve(ctx, provider, out, opts.SocketPath)
}

func (s *Server) serve(ctx context.Context, provider hotkey.Provider, out io.Writer, socketPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	d := hotkey.NewDispatcher(provider, out, s.logger)
	if err := d.Register(s.cfg.Shortcuts, s.enqueue); err != nil {
		return err
	}
	s.hotkeys = d.Bound()
	if s.hotkeys == 0 {
		s.logger.Warn("no shortcut has a hotkey; nothing will fire")
	}

	for i := 0; i < s.cfg.Listener.Workers; i++ {
		go s.worker(ctx)
	}
	if socketPath != "" {
		go s.controlLoop(ctx, socketPath)
	}
	if s.cfg.Metrics.Enabled {
		go s.metricsServe(ctx.Done(), s.cfg.Metrics.Addr)
	}

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			s.logger.Infof("received signal %s, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.WithFields(logrus.Fields{
		"backend": s.backend,
		"hotkeys": s.hotkeys,
		"workers": s.cfg.Listener.Workers,
	}).Info("listener started")
	return d.Listen(ctx)
}

// enqueue hands a firing to the workers without blocking the key observer.
func (s *Server) enqueue(sc config.Shortcut) {
	s.metrics.incFired()
	j := job{id: uuid.NewString(), shortcut: sc}
	select {
	case s.jobCh <- j:
	default:
		s.metrics.incDropped()
		s.logger.WithFields(logrus.Fields{"firing": j.id, "shortcut": sc.Name}).Warn("work queue full, dropping firing")
	}
}

func (s *Server) recordFiring(f control.Firing) {
	s.firingsMu.Lock()
	defer s.firingsMu.Unlock()
	s.firings = append(s.firings, f)
	if len(s.firings) > recentFirings {
		s.firings = s.firings[len(s.firings)-recentFirings:]
	}
}

func (s *Server) copyFirings() []control.Firing {
	s.firingsMu.Lock()
	defer s.firingsMu.Unlock()
	out := make([]control.Firing, len(s.firings))
	copy(out, s.firings)
	return out
}

func (s *Server) status() control.Status {
	return control.Status{
		Running:   true,
		PID:       os.Getpid(),
		Backend:   s.backend,
		Hotkeys:   s.hotkeys,
		UptimeSec: time.Since(s.startedAt).Seconds(),
		Firings:   s.copyFirings(),
	}
}

// controlLoop serves the control socket. A socket still answered by another
// listener is left alone and this listener runs without one.
func (s *Server) controlLoop(ctx context.Context, path string) {
	if control.Health(path) == nil {
		s.logger.Warnf("control socket %s belongs to a running listener; not binding", path)
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Debugf("remove stale socket: %v", err)
	}
	ln, err := net.Listen("unix", path)
	if err != nil {
		s.logger.Errorf("control listen: %v", err)
		return
	}
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.logger.Warnf("remove socket: %v", err)
		}
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Errorf("control accept: %v", err)
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer func() {
		if err := conn.Close(); err != nil && ctx.Err() == nil {
			s.logger.Warnf("control connection close: %v", err)
		}
	}()
	sc := bufio.NewScanner(conn)
	if !sc.Scan() {
		return
	}
	var req control.Request
	if err := json.Unmarshal(sc.Bytes(), &req); err != nil {
		return
	}
	switch req.Op {
	case control.OpStatus:
		_ = json.NewEncoder(conn).Encode(s.status())
	case control.OpHealth:
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{OK: true, Message: "ok"})
	default:
		_ = json.NewEncoder(conn).Encode(control.SimpleResponse{OK: false, Message: "unknown op " + req.Op})
	}
}
