//go:build !windows

package daemon

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"hashortcuts/internal/logging"

	"golang.org/x/sys/unix"
)

const childEnv = "HA_SHORTCUTS_TEST_CHILD"

// TestMain lets the test binary stand in for the listener child.
func TestMain(m *testing.M) {
	if os.Getenv(childEnv) == "1" {
		fmt.Println("child args:", strings.Join(os.Args[1:], " "))
		time.Sleep(30 * time.Second)
		os.Exit(0)
	}
	os.Exit(m.Run())
}

type signalCall struct {
	pid int
	sig syscall.Signal
}

func newTestManager(t *testing.T, sigErr error) (*Manager, *bytes.Buffer, *[]signalCall) {
	t.Helper()
	out := &bytes.Buffer{}
	calls := &[]signalCall{}
	m := &Manager{
		Paths:      PathsIn(t.TempDir()),
		Executable: os.Args[0],
		Out:        out,
		logger:     logging.NewTestLogger(),
		signal: func(pid int, sig syscall.Signal) error {
			*calls = append(*calls, signalCall{pid, sig})
			return sigErr
		},
		alive: processAlive,
	}
	return m, out, calls
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestStartRefusesWhenPidAlive(t *testing.T) {
	m, _, _ := newTestManager(t, nil)
	self := strconv.Itoa(os.Getpid())
	writeFile(t, m.Paths.Pid, self)

	err := m.Start(StartOptions{ConfigPath: "config.yaml", Backend: "keyboard"})
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("expected ErrAlreadyRunning, got %v", err)
	}
	data, _ := os.ReadFile(m.Paths.Pid)
	if string(data) != self {
		t.Fatalf("pid file changed to %q", data)
	}
	if exists(m.Paths.Log) {
		t.Fatalf("log file must not be created when refusing")
	}
}

func TestStopWithoutPidFile(t *testing.T) {
	m, _, calls := newTestManager(t, nil)
	if err := m.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Fatalf("expected ErrNotRunning, got %v", err)
	}
	if len(*calls) != 0 {
		t.Fatalf("no signal expected, got %v", *calls)
	}
}

func TestStopUnreadablePidRemovesFile(t *testing.T) {
	m, _, calls := newTestManager(t, nil)
	writeFile(t, m.Paths.Pid, "not-a-pid")
	if err := m.Stop(); err == nil {
		t.Fatalf("expected error for garbage pid")
	}
	if exists(m.Paths.Pid) {
		t.Fatalf("pid file should be removed")
	}
	if len(*calls) != 0 {
		t.Fatalf("no signal expected")
	}
}

func TestStopPermissionDeniedKeepsFiles(t *testing.T) {
	m, _, calls := newTestManager(t, unix.EPERM)
	writeFile(t, m.Paths.Pid, "4242")
	writeFile(t, m.Paths.Log, "log\n")

	if err := m.Stop(); err == nil || !strings.Contains(err.Error(), "permission denied") {
		t.Fatalf("expected permission error, got %v", err)
	}
	if !exists(m.Paths.Pid) || !exists(m.Paths.Log) {
		t.Fatalf("files must be kept on permission error")
	}
	if len(*calls) != 1 || (*calls)[0] != (signalCall{4242, syscall.SIGTERM}) {
		t.Fatalf("unexpected signals %v", *calls)
	}
}

func TestStopMissingProcessCleansUp(t *testing.T) {
	m, out, _ := newTestManager(t, unix.ESRCH)
	writeFile(t, m.Paths.Pid, "4242\n")
	writeFile(t, m.Paths.Log, "log\n")

	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out.String(), "No process 4242 found") {
		t.Fatalf("output = %q", out.String())
	}
	if exists(m.Paths.Pid) || exists(m.Paths.Log) {
		t.Fatalf("files should be removed")
	}
}

func TestStartRemovesStalePid(t *testing.T) {
	t.Setenv(childEnv, "1")
	m, out, _ := newTestManager(t, nil)
	m.signal = signalProcess
	// Pid 0 is never a valid listener.
	writeFile(t, m.Paths.Pid, "0")

	if err := m.Start(StartOptions{ConfigPath: "config.yaml", Backend: "pynput"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = m.Stop() })
	if !strings.Contains(out.String(), "Started background listener") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestStartAndStopLiveChild(t *testing.T) {
	t.Setenv(childEnv, "1")
	m, out, _ := newTestManager(t, nil)
	m.signal = signalProcess

	err := m.Start(StartOptions{
		ConfigPath: "config.yaml",
		Backend:    "keyboard",
		ExtraArgs:  []string{"--log-level", "debug"},
	})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	pid, alive, err := m.Status()
	if err != nil || !alive || pid <= 0 {
		t.Fatalf("status pid=%d alive=%v err=%v", pid, alive, err)
	}
	if !strings.Contains(out.String(), fmt.Sprintf("(pid %d)", pid)) {
		t.Fatalf("output = %q", out.String())
	}

	absCfg, _ := filepath.Abs("config.yaml")
	want := "--listen --backend keyboard --config " + absCfg + " --log-level debug"
	deadline := time.Now().Add(5 * time.Second)
	for {
		data, _ := os.ReadFile(m.Paths.Log)
		if strings.Contains(string(data), want) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("child log = %q, want args %q", data, want)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if err := m.Start(StartOptions{ConfigPath: "config.yaml", Backend: "keyboard"}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("second start: %v", err)
	}

	out.Reset()
	if err := m.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !strings.Contains(out.String(), fmt.Sprintf("Stopped process %d", pid)) {
		t.Fatalf("output = %q", out.String())
	}
	if exists(m.Paths.Pid) || exists(m.Paths.Log) {
		t.Fatalf("pid and log files should be removed")
	}
}
