//go:build !windows

package procctl

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

type groupTerminator struct{}

// Default returns the SIGTERM-to-process-group terminator.
func Default() Terminator { return groupTerminator{} }

// Terminate sends SIGTERM to the child's process group so shell wrappers and
// their descendants stop together.
func (groupTerminator) Terminate(proc *os.Process) error {
	return signalGroup(proc, unix.SIGTERM)
}

// Kill sends SIGKILL to the child's process group.
func (groupTerminator) Kill(proc *os.Process) error {
	return signalGroup(proc, unix.SIGKILL)
}

func signalGroup(proc *os.Process, sig unix.Signal) error {
	if proc == nil {
		return nil
	}
	err := unix.Kill(-proc.Pid, sig)
	if err == nil {
		return nil
	}
	if !errors.Is(err, unix.ESRCH) {
		return err
	}
	// Not a group leader (or already gone); signal the process alone.
	return ignoreDone(proc.Signal(syscall.Signal(sig)))
}

// Configure places the child in a new process group.
func Configure(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

func shellArgs(line string) (string, []string) {
	return "/bin/sh", []string{"-c", line}
}
