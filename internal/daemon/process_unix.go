//go:build !windows

package daemon

import (
	"errors"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

func signalProcess(pid int, sig syscall.Signal) error {
	return unix.Kill(pid, sig)
}

// processAlive sends signal 0; no error means the process exists and is ours
// to signal.
func processAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// detach starts the child in its own session so it survives the terminal.
func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}

func isNoProcess(err error) bool { return errors.Is(err, unix.ESRCH) }

func isPermission(err error) bool { return errors.Is(err, unix.EPERM) }
