// Package daemon runs the hotkey listener as a detached background process
// tracked by a pid file.
package daemon

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
)

var (
	// ErrAlreadyRunning is returned by Start when the pid file names a live process.
	ErrAlreadyRunning = errors.New("already running")
	// ErrNotRunning is returned when there is no pid file.
	ErrNotRunning = errors.New("no pid file found, nothing to stop")
)

// StartOptions describes the listener the child process should run.
type StartOptions struct {
	ConfigPath string
	Backend    string
	ExtraArgs  []string
}

// Manager starts and stops the background listener.
type Manager struct {
	Paths      Paths
	Executable string
	Out        io.Writer

	logger *logrus.Logger
	signal func(pid int, sig syscall.Signal) error
	alive  func(pid int) bool
}

// NewManager returns a manager that re-executes the running binary.
func NewManager(paths Paths, out io.Writer, logger *logrus.Logger) (*Manager, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, err
	}
	return &Manager{
		Paths:      paths,
		Executable: self,
		Out:        out,
		logger:     logger,
		signal:     signalProcess,
		alive:      processAlive,
	}, nil
}

// Start spawns a detached `--listen` child with stdout/stderr appended to
// the log file and records its pid. A live recorded pid is left untouched.
//
// The liveness check and the pid write are not atomic: two concurrent
// Start calls can both spawn a listener.
func (m *Manager) Start(opts StartOptions) error {
	if _, err := os.Stat(m.Paths.Pid); err == nil {
		pid, err := readPID(m.Paths.Pid)
		if err == nil && m.alive(pid) {
			return fmt.Errorf("%w (pid %d); stop it first with --stop", ErrAlreadyRunning, pid)
		}
		m.logger.WithField("pid_file", m.Paths.Pid).Debug("removing stale pid file")
		if err := os.Remove(m.Paths.Pid); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	cfgPath, err := filepath.Abs(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.Paths.Pid), 0o755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(m.Paths.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"--listen", "--backend", opts.Backend, "--config", cfgPath}
	args = append(args, opts.ExtraArgs...)
	child := exec.Command(m.Executable, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	detach(child)
	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start background listener: %w", err)
	}
	pid := child.Process.Pid
	if err := os.WriteFile(m.Paths.Pid, []byte(strconv.Itoa(pid)), 0o644); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	_ = child.Process.Release()

	m.logger.WithFields(logrus.Fields{"pid": pid, "args": args}).Debug("spawned listener")
	fmt.Fprintf(m.Out, "Started background listener (pid %d). Logs: %s\n", pid, m.Paths.Log)
	return nil
}

// Stop sends SIGTERM to the recorded pid and removes the pid and log
// files, except when the signal is refused for lack of permission.
func (m *Manager) Stop() error {
	if _, err := os.Stat(m.Paths.Pid); errors.Is(err, os.ErrNotExist) {
		return ErrNotRunning
	}
	pid, err := readPID(m.Paths.Pid)
	if err != nil {
		_ = os.Remove(m.Paths.Pid)
		return fmt.Errorf("could not read pid file: %w", err)
	}

	err = m.signal(pid, syscall.SIGTERM)
	switch {
	case err == nil:
		fmt.Fprintf(m.Out, "Stopped process %d\n", pid)
	case isNoProcess(err):
		fmt.Fprintf(m.Out, "No process %d found\n", pid)
		err = nil
	case isPermission(err):
		return fmt.Errorf("permission denied to stop process %d: %w", pid, err)
	default:
		err = fmt.Errorf("stop process %d: %w", pid, err)
	}
	m.cleanup()
	return err
}

// Status reports the recorded pid and whether it answers a liveness probe.
func (m *Manager) Status() (int, bool, error) {
	if _, err := os.Stat(m.Paths.Pid); errors.Is(err, os.ErrNotExist) {
		return 0, false, ErrNotRunning
	}
	pid, err := readPID(m.Paths.Pid)
	if err != nil {
		return 0, false, fmt.Errorf("could not read pid file: %w", err)
	}
	return pid, m.alive(pid), nil
}

func (m *Manager) cleanup() {
	for _, p := range []string{m.Paths.Pid, m.Paths.Log, m.Paths.Socket} {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			m.logger.Warnf("remove %s: %v", p, err)
		}
	}
}

func readPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, err
	}
	if pid <= 0 {
		return 0, fmt.Errorf("invalid pid %d", pid)
	}
	return pid, nil
}
