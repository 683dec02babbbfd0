package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"oficina/internal/logging"
)

// StaticOptions configures the in-process file server.
type StaticOptions struct {
	ProjectDir string
	BuildDir   string
	Host       string
	Port       int
	// Mount registers extra handlers next to the file server.
	Mount  func(mux *http.ServeMux)
	Logger *slog.Logger
}

// StaticLauncher serves files from disk over HTTP.
type StaticLauncher struct {
	opts   StaticOptions
	logger *slog.Logger
}

// NewStatic constructs a static launcher.
func NewStatic(opts StaticOptions) *StaticLauncher {
	if opts.Host == "" {
		opts.Host = "localhost"
	}
	return &StaticLauncher{opts: opts, logger: logging.NewComponentLogger(opts.Logger, "static-server")}
}

// Name implements Launcher.
func (l *StaticLauncher) Name() string { return "static" }

// DefaultURL implements Launcher.
func (l *StaticLauncher) DefaultURL() string {
	return "http://" + net.JoinHostPort(l.opts.Host, strconv.Itoa(l.opts.Port))
}

// ServeRoot returns the build directory when it exists, otherwise the project
// directory.
func (l *StaticLauncher) ServeRoot() string {
	if l.opts.BuildDir != "" {
		if info, err := os.Stat(l.opts.BuildDir); err == nil && info.IsDir() {
			return l.opts.BuildDir
		}
	}
	return l.opts.ProjectDir
}

// Prepare implements Launcher. Static serving has no prerequisites.
func (l *StaticLauncher) Prepare(context.Context, Env) error { return nil }

// Start binds the listener and serves on a background goroutine. A bind
// failure is returned wrapped in ErrBind.
func (l *StaticLauncher) Start(_ context.Context) (Server, error) {
	root := l.ServeRoot()
	address := net.JoinHostPort(l.opts.Host, strconv.Itoa(l.opts.Port))

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrBind, address, err)
	}

	mux := http.NewServeMux()
	if l.opts.Mount != nil {
		l.opts.Mount(mux)
	}
	mux.Handle("/", http.FileServer(http.Dir(root)))

	srv := &staticServer{
		http: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          log.New(io.Discard, "", 0),
		},
		url:  "http://" + net.JoinHostPort(l.opts.Host, strconv.Itoa(listener.Addr().(*net.TCPAddr).Port)),
		done: make(chan struct{}),
	}

	go func() {
		defer close(srv.done)
		if err := srv.http.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			srv.setErr(err)
		}
	}()

	l.logger.Info("static server listening",
		logging.String("url", srv.url),
		logging.String("root", root),
		logging.String(logging.FieldEventType, "server_started"),
	)
	return srv, nil
}

type staticServer struct {
	http *http.Server
	url  string
	done chan struct{}

	mu  sync.Mutex
	err error
}

func (s *staticServer) URL() string { return s.url }

func (s *staticServer) Done() <-chan struct{} { return s.done }

func (s *staticServer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *staticServer) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Stop shuts down gracefully and closes remaining connections when ctx ends.
func (s *staticServer) Stop(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if err != nil {
		_ = s.http.Close()
	}
	<-s.done
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
