package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"oficina/internal/connectivity"
	"oficina/internal/launcher"
	"oficina/internal/logging"
)

var (
	// ErrAlreadyRunning reports that another launcher holds the instance lock.
	ErrAlreadyRunning = errors.New("launcher already running")
	// ErrServerExited reports a server that stopped without a shutdown request.
	ErrServerExited = errors.New("server exited unexpectedly")
)

// DefaultStopTimeout is used when Options.StopTimeout is zero.
const DefaultStopTimeout = 10 * time.Second

// Console receives the user-facing notices of a session.
type Console interface {
	ClearScreen()
	Banner()
	ConnectivityBanner(online bool)
	ServerStarted(url string)
	ServerFailed(err error, url string)
	ServerExited(err error)
	ShuttingDown()
	RuntimeMissing(runtime, hint string)
	InstallFailed(err error)
	AlreadyRunning()
}

// Browser schedules a delayed browser launch.
type Browser interface {
	Schedule(ctx context.Context, url string) <-chan struct{}
}

// Options wires the supervisor's collaborators.
type Options struct {
	Launcher launcher.Launcher
	Monitor  *connectivity.Monitor
	Console  Console
	// Browser may be nil to skip opening a browser.
	Browser     Browser
	Logger      *slog.Logger
	StopTimeout time.Duration
	// LockPath enables the single-instance guard when set.
	LockPath    string
	ClearScreen bool
	// OnProbed receives the startup connectivity result.
	OnProbed func(online bool)
	// OnServerReady is called with the URL the browser will open, including
	// the fallback URL of a degraded start.
	OnServerReady func(url string, degraded bool)
}

// Supervisor owns one launcher session.
type Supervisor struct {
	opts    Options
	logger  *slog.Logger
	state   atomic.Int32
	started atomic.Bool

	mu  sync.Mutex
	url string
}

// New validates the options and returns a supervisor in StateStarting.
func New(opts Options) (*Supervisor, error) {
	if opts.Launcher == nil || opts.Monitor == nil || opts.Console == nil {
		return nil, errors.New("supervisor requires launcher, monitor, and console")
	}
	if opts.StopTimeout <= 0 {
		opts.StopTimeout = DefaultStopTimeout
	}
	s := &Supervisor{
		opts:   opts,
		logger: logging.NewComponentLogger(opts.Logger, "supervisor").With(logging.String(logging.FieldMode, opts.Launcher.Name())),
	}
	s.state.Store(int32(StateStarting))
	return s, nil
}

// State returns the current lifecycle phase.
func (s *Supervisor) State() State {
	return State(s.state.Load())
}

// URL returns the server URL once the server is running.
func (s *Supervisor) URL() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url
}

func (s *Supervisor) setState(state State) {
	previous := State(s.state.Swap(int32(state)))
	if previous != state {
		s.logger.Debug("supervisor state changed",
			logging.String("from", previous.String()),
			logging.String("to", state.String()),
		)
	}
}

// Run executes the session and blocks until it ends. It may be called once.
func (s *Supervisor) Run(ctx context.Context) (err error) {
	if !s.started.CompareAndSwap(false, true) {
		return errors.New("supervisor already started")
	}
	defer s.setState(StateStopped)

	if s.opts.LockPath != "" {
		lock := flock.New(s.opts.LockPath)
		locked, lockErr := lock.TryLock()
		if lockErr != nil {
			return fmt.Errorf("acquire lock: %w", lockErr)
		}
		if !locked {
			s.opts.Console.AlreadyRunning()
			s.logger.Info("another launcher holds the lock",
				logging.String("lock_path", s.opts.LockPath),
				logging.String(logging.FieldEventType, "already_running"),
			)
			return ErrAlreadyRunning
		}
		defer func() {
			if unlockErr := lock.Unlock(); unlockErr != nil {
				s.logger.Debug("release lock failed", logging.Error(unlockErr))
			}
		}()
	}

	if s.opts.ClearScreen {
		s.opts.Console.ClearScreen()
	}
	s.opts.Console.Banner()

	s.opts.Monitor.Check(ctx)
	online := s.opts.Monitor.Snapshot().Online
	s.opts.Console.ConnectivityBanner(online)
	s.logger.Info("initial connectivity", logging.Bool("online", online))
	if s.opts.OnProbed != nil {
		s.opts.OnProbed(online)
	}

	bgCtx, stopBackground := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(bgCtx)
	group.Go(func() error {
		return s.opts.Monitor.Run(groupCtx)
	})
	defer func() {
		stopBackground()
		if waitErr := group.Wait(); waitErr != nil && err == nil {
			err = waitErr
		}
	}()

	if err := s.opts.Launcher.Prepare(ctx, launcher.Env{Online: online}); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		s.reportPrepareFailure(err)
		return fmt.Errorf("prepare %s launcher: %w", s.opts.Launcher.Name(), err)
	}

	srv, url, err := s.start(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.url = url
	s.mu.Unlock()
	if s.opts.OnServerReady != nil {
		s.opts.OnServerReady(url, srv == nil)
	}
	s.setState(StateRunning)

	if s.opts.Browser != nil {
		browserDone := s.opts.Browser.Schedule(groupCtx, url)
		group.Go(func() error {
			<-browserDone
			return nil
		})
	}

	var serverDone <-chan struct{}
	if srv != nil {
		serverDone = srv.Done()
	}

	exited := false
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested", logging.String(logging.FieldEventType, "shutdown_requested"))
	case <-serverDone:
		exited = true
	}

	s.setState(StateShuttingDown)
	s.opts.Console.ShuttingDown()
	stopBackground()

	if srv != nil && !exited {
		stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.StopTimeout)
		defer cancel()
		if stopErr := srv.Stop(stopCtx); stopErr != nil {
			logging.WarnWithContext(s.logger, "server stop failed", "server_stop_failed",
				logging.Error(stopErr),
				logging.String(logging.FieldErrorHint, "check for a leftover server process"),
			)
		}
	}

	if exited {
		cause := srv.Err()
		s.opts.Console.ServerExited(cause)
		logging.ErrorWithContext(s.logger, "server exited without a shutdown request", "server_exited",
			logging.Error(cause),
			logging.String(logging.FieldErrorHint, "inspect the server output above"),
		)
		if cause == nil {
			return ErrServerExited
		}
		return fmt.Errorf("%w: %w", ErrServerExited, cause)
	}
	return nil
}

// start launches the server. A bind failure yields a nil server and the
// launcher's default URL so the session continues degraded.
func (s *Supervisor) start(ctx context.Context) (launcher.Server, string, error) {
	srv, err := s.opts.Launcher.Start(ctx)
	if err == nil {
		url := srv.URL()
		s.opts.Console.ServerStarted(url)
		s.logger.Info("server started",
			logging.String("url", url),
			logging.String(logging.FieldEventType, "server_started"),
		)
		return srv, url, nil
	}
	if !errors.Is(err, launcher.ErrBind) {
		return nil, "", fmt.Errorf("start %s server: %w", s.opts.Launcher.Name(), err)
	}

	url := s.opts.Launcher.DefaultURL()
	s.opts.Console.ServerFailed(err, url)
	logging.WarnWithContext(s.logger, "server could not bind; continuing without it", "server_bind_failed",
		logging.Error(err),
		logging.String("url", url),
		logging.String(logging.FieldErrorHint, "another process may already serve the app on this port"),
		logging.String(logging.FieldImpact, "browser opens the configured address without a local server"),
	)
	return nil, url, nil
}

func (s *Supervisor) reportPrepareFailure(err error) {
	var runtimeErr *launcher.RuntimeError
	switch {
	case errors.As(err, &runtimeErr):
		s.opts.Console.RuntimeMissing(runtimeErr.Runtime, runtimeErr.Hint)
		logging.ErrorWithContext(s.logger, "runtime check failed", "runtime_missing",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "install "+runtimeErr.Runtime+" from "+runtimeErr.Hint),
		)
	case errors.Is(err, launcher.ErrInstallFailed):
		s.opts.Console.InstallFailed(err)
		logging.ErrorWithContext(s.logger, "dependency installation failed", "install_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run the install command manually to see the full error"),
		)
	default:
		logging.ErrorWithContext(s.logger, "launcher preparation failed", "prepare_failed", logging.Error(err))
	}
}
