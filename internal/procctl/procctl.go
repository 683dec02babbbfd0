package procctl

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Terminator ends a running child process.
type Terminator interface {
	Terminate(proc *os.Process) error
	Kill(proc *os.Process) error
}

// TerminatorFunc adapts a function to Terminator. Kill falls back to
// os.Process.Kill.
type TerminatorFunc func(proc *os.Process) error

// Terminate implements Terminator.
func (f TerminatorFunc) Terminate(proc *os.Process) error { return f(proc) }

// Kill implements Terminator.
func (f TerminatorFunc) Kill(proc *os.Process) error { return ignoreDone(proc.Kill()) }

// Stop asks proc to terminate and waits for done to close. When the grace
// period passes, or ctx ends first, the process is force killed. It reports
// whether a forced kill was needed.
func Stop(ctx context.Context, t Terminator, proc *os.Process, done <-chan struct{}, grace time.Duration) (bool, error) {
	if proc == nil {
		return false, nil
	}
	if t == nil {
		t = Default()
	}
	select {
	case <-done:
		return false, nil
	default:
	}

	if err := t.Terminate(proc); err != nil {
		if killErr := t.Kill(proc); killErr != nil {
			return true, fmt.Errorf("terminate pid %d: %w", proc.Pid, errors.Join(err, killErr))
		}
		<-done
		return true, nil
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()
	select {
	case <-done:
		return false, nil
	case <-timer.C:
	case <-ctx.Done():
	}

	if err := t.Kill(proc); err != nil {
		return true, fmt.Errorf("kill pid %d: %w", proc.Pid, err)
	}
	<-done
	return true, nil
}

// ShellCommand builds a command that runs line through the platform shell in
// dir. The child gets its own process group, so terminal interrupts do not
// reach it; cancelling ctx terminates the whole group instead.
func ShellCommand(ctx context.Context, dir, line string) *exec.Cmd {
	name, args := shellArgs(line)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	Configure(cmd)
	cmd.Cancel = func() error { return Default().Terminate(cmd.Process) }
	cmd.WaitDelay = 5 * time.Second
	return cmd
}

func ignoreDone(err error) error {
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
