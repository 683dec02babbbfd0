package deps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCheckTimeout bounds how long a version probe may run.
const DefaultCheckTimeout = 15 * time.Second

// Requirement defines an external tool the launcher relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Only the first field of Command is resolved, so "npx vite" checks for npx.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		binary := firstField(cmd)
		if binary == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(binary); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", binary)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckCommand runs command (split on whitespace, no shell) and reports it
// available only when it exits zero. The first line of its output becomes the
// detail, which for "node --version" is the runtime version.
func CheckCommand(ctx context.Context, req Requirement) Status {
	cmd := strings.TrimSpace(req.Command)
	status := Status{
		Name:        req.Name,
		Command:     cmd,
		Description: strings.TrimSpace(req.Description),
		Optional:    req.Optional,
	}
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		status.Detail = "command not configured"
		return status
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		status.Detail = fmt.Sprintf("binary %q not found", fields[0])
		return status
	}

	checkCtx, cancel := context.WithTimeout(ctx, DefaultCheckTimeout)
	defer cancel()

	var out bytes.Buffer
	proc := exec.CommandContext(checkCtx, fields[0], fields[1:]...)
	proc.Stdout = &out
	proc.Stderr = &out
	if err := proc.Run(); err != nil {
		var exitErr *exec.ExitError
		switch {
		case errors.Is(checkCtx.Err(), context.DeadlineExceeded):
			status.Detail = fmt.Sprintf("%q timed out", cmd)
		case errors.As(err, &exitErr):
			status.Detail = fmt.Sprintf("%q exited with status %d", cmd, exitErr.ExitCode())
		default:
			status.Detail = fmt.Sprintf("%q failed: %v", cmd, err)
		}
		return status
	}
	status.Available = true
	status.Detail = firstLine(out.String())
	return status
}

func firstField(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func firstLine(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, "\r\n"); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}
