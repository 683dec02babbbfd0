package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"oficina/internal/deps"
	"oficina/internal/logging"
	"oficina/internal/procctl"
)

const defaultStopTimeout = 10 * time.Second

// DevOptions configures the dev-server launcher.
type DevOptions struct {
	ProjectDir        string
	RuntimeCheck      string
	RuntimeName       string
	RuntimeHint       string
	MarkerDir         string
	InstallCommand    string
	InstallWhenOnline bool
	Command           string
	DefaultURL        string
	URLTimeout        time.Duration
	// StopTimeout is the grace a child gets after SIGTERM before it is
	// killed, including when startup is interrupted.
	StopTimeout time.Duration
	// Output receives the child's output lines. Nil discards them.
	Output     io.Writer
	Terminator procctl.Terminator
	// OnInstall runs just before the install command starts.
	OnInstall func()
	Logger    *slog.Logger
}

// DevLauncher runs the frontend dev server as a child process.
type DevLauncher struct {
	opts   DevOptions
	logger *slog.Logger
}

// NewDev constructs a dev-server launcher.
func NewDev(opts DevOptions) *DevLauncher {
	if opts.Output == nil {
		opts.Output = io.Discard
	}
	if opts.Terminator == nil {
		opts.Terminator = procctl.Default()
	}
	if opts.URLTimeout <= 0 {
		opts.URLTimeout = 30 * time.Second
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = defaultStopTimeout
	}
	return &DevLauncher{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "dev-server")}
}

// Name implements Launcher.
func (l *DevLauncher) Name() string { return "dev" }

// DefaultURL implements Launcher.
func (l *DevLauncher) DefaultURL() string { return l.opts.DefaultURL }

// Prepare checks the runtime and installs dependencies when needed.
func (l *DevLauncher) Prepare(ctx context.Context, env Env) error {
	status := deps.CheckCommand(ctx, deps.Requirement{
		Name:    l.opts.RuntimeName,
		Command: l.opts.RuntimeCheck,
	})
	if !status.Available {
		return &RuntimeError{Runtime: l.opts.RuntimeName, Hint: l.opts.RuntimeHint, Detail: status.Detail}
	}
	l.logger.Info("runtime available",
		logging.String("runtime", l.opts.RuntimeName),
		logging.String("version", status.Detail),
	)

	if !l.needsInstall(env) {
		return nil
	}
	return l.install(ctx)
}

func (l *DevLauncher) needsInstall(env Env) bool {
	if l.opts.InstallCommand == "" {
		return false
	}
	if _, err := os.Stat(l.opts.MarkerDir); errors.Is(err, os.ErrNotExist) {
		return true
	}
	return l.opts.InstallWhenOnline && env.Online
}

func (l *DevLauncher) install(ctx context.Context) error {
	if l.opts.OnInstall != nil {
		l.opts.OnInstall()
	}
	l.logger.Info("installing dependencies",
		logging.String("command", l.opts.InstallCommand),
		logging.String(logging.FieldEventType, "install_started"),
	)
	started := time.Now()
	cmd := procctl.ShellCommand(ctx, l.opts.ProjectDir, l.opts.InstallCommand)
	cmd.Stdout = l.opts.Output
	cmd.Stderr = l.opts.Output
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInstallFailed, l.opts.InstallCommand, err)
	}
	l.logger.Info("dependencies installed",
		logging.Duration("duration", time.Since(started)),
		logging.String(logging.FieldEventType, "install_completed"),
	)
	return nil
}

// Start spawns the dev server and waits for its URL. The default URL is used
// when output ends without a "Local:" line or the timeout elapses first.
func (l *DevLauncher) Start(ctx context.Context) (Server, error) {
	cmd := procctl.ShellCommand(context.WithoutCancel(ctx), l.opts.ProjectDir, l.opts.Command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("dev server stdout: %w", err)
	}
	cmd.Stderr = l.opts.Output
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start dev server %q: %w", l.opts.Command, err)
	}
	l.logger.Info("dev server spawned",
		logging.String("command", l.opts.Command),
		logging.Int("pid", cmd.Process.Pid),
	)

	srv := &devServer{
		cmd:        cmd,
		terminator: l.opts.Terminator,
		done:       make(chan struct{}),
		logger:     l.logger,
	}
	found := make(chan string, 1)
	streamEnded := make(chan struct{})
	go srv.pump(stdout, l.opts.Output, found, streamEnded)

	timer := time.NewTimer(l.opts.URLTimeout)
	defer timer.Stop()

	select {
	case url := <-found:
		srv.url = url
	case <-streamEnded:
		srv.url = l.opts.DefaultURL
		l.logger.Debug("dev server output ended without a local URL; using default", logging.String("url", srv.url))
	case <-timer.C:
		srv.url = l.opts.DefaultURL
		logging.WarnWithContext(l.logger, "dev server did not report a local URL in time; using default", "url_timeout",
			logging.String("url", srv.url),
			logging.Duration("timeout", l.opts.URLTimeout),
			logging.String(logging.FieldImpact, "browser may open before the server is ready"),
		)
	case <-ctx.Done():
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.opts.StopTimeout)
		defer cancel()
		_ = srv.Stop(stopCtx)
		return nil, ctx.Err()
	}
	return srv, nil
}

type devServer struct {
	cmd        *exec.Cmd
	terminator procctl.Terminator
	url        string
	done       chan struct{}
	logger     *slog.Logger

	mu       sync.Mutex
	err      error
	stopping bool
}

// pump forwards child output line by line, reports the first local URL, and
// reaps the process once the stream closes.
func (s *devServer) pump(stdout io.Reader, out io.Writer, found chan<- string, streamEnded chan<- struct{}) {
	defer close(s.done)

	err := ForwardOutput(stdout, out,
		func(line string) { s.logger.Debug("dev server output", logging.String("line", line)) },
		func(url string) { found <- url },
	)
	if err != nil {
		s.logger.Debug("dev server output no longer line-parsed", logging.Error(err))
	}
	close(streamEnded)

	err = s.cmd.Wait()
	s.mu.Lock()
	if err != nil && !s.stopping {
		s.err = fmt.Errorf("dev server exited: %w", err)
	}
	s.mu.Unlock()
	s.logger.Info("dev server exited",
		logging.Int("exit_code", s.cmd.ProcessState.ExitCode()),
		logging.String(logging.FieldEventType, "server_exited"),
	)
}

func (s *devServer) URL() string { return s.url }

func (s *devServer) Done() <-chan struct{} { return s.done }

func (s *devServer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Stop terminates the child and escalates to a kill when ctx's deadline
// passes. Without a deadline the grace is defaultStopTimeout.
func (s *devServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	grace := defaultStopTimeout
	if deadline, ok := ctx.Deadline(); ok {
		grace = time.Until(deadline)
	}
	forced, err := procctl.Stop(ctx, s.terminator, s.cmd.Process, s.done, grace)
	if forced {
		logging.WarnWithContext(s.logger, "dev server ignored termination; killed", "server_killed",
			logging.Int("pid", s.cmd.Process.Pid),
			logging.String(logging.FieldImpact, "unsaved dev-server state may be lost"),
		)
	}
	return err
}
