// Package packager builds the standalone launcher executable by invoking a
// third-party bundler (PyInstaller by default) with a fixed argument list.
package packager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"oficina/internal/logging"
)

// OutputDir is where the bundler places the executable, relative to Dir.
const OutputDir = "dist"

// ErrBundlerMissing reports that the bundler command is not on PATH.
var ErrBundlerMissing = errors.New("bundler not found")

// Options configures a packaging run.
type Options struct {
	Command string
	Entry   string
	Name    string
	Icon    string
	Dir     string
	// GOOS selects the executable suffix; empty means the running OS.
	GOOS   string
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Result describes a finished bundle.
type Result struct {
	Executable string
	OutputDir  string
	Duration   time.Duration
}

// ExecutableName returns the bundle name, with .exe appended on Windows.
func (o Options) ExecutableName() string {
	goos := o.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	name := o.Name
	if goos == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}
	return name
}

// Args returns the bundler arguments: the entry script, single-file console
// mode, the executable name, and the icon when it exists on disk.
func (o Options) Args() []string {
	args := []string{
		o.Entry,
		"--onefile",
		"--console",
		"--name=" + o.ExecutableName(),
	}
	if icon := strings.TrimSpace(o.Icon); icon != "" {
		path := icon
		if !filepath.IsAbs(path) && o.Dir != "" {
			path = filepath.Join(o.Dir, path)
		}
		if _, err := os.Stat(path); err == nil {
			args = append(args, "--icon="+icon)
		}
	}
	return args
}

// Run invokes the bundler in Dir with output attached to Stdout/Stderr.
func Run(ctx context.Context, opts Options) (Result, error) {
	logger := logging.NewComponentLogger(opts.Logger, "packager")
	command := strings.TrimSpace(opts.Command)
	if command == "" {
		return Result{}, errors.New("packager.command is empty")
	}
	if strings.TrimSpace(opts.Entry) == "" {
		return Result{}, errors.New("packager.entry is empty")
	}
	if strings.TrimSpace(opts.Name) == "" {
		return Result{}, errors.New("packager.name is empty")
	}
	binary, err := exec.LookPath(command)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrBundlerMissing, command, err)
	}

	args := opts.Args()
	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = opts.Dir
	cmd.Stdout = writerOrDiscard(opts.Stdout)
	cmd.Stderr = writerOrDiscard(opts.Stderr)

	logger.Info("packaging started",
		logging.String("command", binary),
		logging.String("args", strings.Join(args, " ")),
		logging.String(logging.FieldEventType, "package_started"),
	)
	started := time.Now()
	if err := cmd.Run(); err != nil {
		return Result{}, fmt.Errorf("run %s: %w", command, err)
	}

	result := Result{
		Executable: opts.ExecutableName(),
		OutputDir:  filepath.Join(opts.Dir, OutputDir),
		Duration:   time.Since(started),
	}
	logger.Info("packaging completed",
		logging.String("executable", result.Executable),
		logging.String("output_dir", result.OutputDir),
		logging.Duration("duration", result.Duration),
		logging.String(logging.FieldEventType, "package_completed"),
	)
	return result, nil
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}
	return w
}
