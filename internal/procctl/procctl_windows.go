//go:build windows

package procctl

import (
	"os"
	"os/exec"
	"strconv"
)

type taskkillTerminator struct{}

// Default returns the taskkill terminator. Windows has no cooperative signal
// for console children started this way, so termination is forceful.
func Default() Terminator { return taskkillTerminator{} }

// Terminate runs taskkill /F /T against the child's process tree.
func (taskkillTerminator) Terminate(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(proc.Pid)).Run()
}

// Kill falls back to TerminateProcess on the child itself.
func (taskkillTerminator) Kill(proc *os.Process) error {
	if proc == nil {
		return nil
	}
	return ignoreDone(proc.Kill())
}

// Configure is a no-op on Windows.
func Configure(*exec.Cmd) {}

func shellArgs(line string) (string, []string) {
	return "cmd", []string{"/C", line}
}
