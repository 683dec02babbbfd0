package launcher

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrRuntimeMissing reports that the JavaScript runtime could not be invoked.
	ErrRuntimeMissing = errors.New("required runtime missing")
	// ErrInstallFailed reports that the dependency installation step failed.
	ErrInstallFailed = errors.New("dependency installation failed")
	// ErrBind reports that the static server could not listen on its address.
	ErrBind = errors.New("server bind failed")
)

// Env carries the startup facts a launcher may react to.
type Env struct {
	Online bool
}

// Launcher prepares and starts one kind of web server.
type Launcher interface {
	// Name identifies the strategy ("dev" or "static").
	Name() string
	// DefaultURL is the address used when the server cannot report one.
	DefaultURL() string
	// Prepare runs blocking prerequisites. Errors are fatal.
	Prepare(ctx context.Context, env Env) error
	// Start launches the server and returns once its URL is known.
	Start(ctx context.Context) (Server, error)
}

// Server is a running web server.
type Server interface {
	URL() string
	// Done closes when the server stops for any reason.
	Done() <-chan struct{}
	// Err reports why the server stopped; nil for a requested stop.
	Err() error
	// Stop shuts the server down, forcing it after ctx expires.
	Stop(ctx context.Context) error
}

// RuntimeError describes a failed runtime check with an actionable hint.
type RuntimeError struct {
	Runtime string
	Hint    string
	Detail  string
}

func (e *RuntimeError) Error() string {
	msg := fmt.Sprintf("%s not found", e.Runtime)
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

// Unwrap lets errors.Is match ErrRuntimeMissing.
func (e *RuntimeError) Unwrap() error { return ErrRuntimeMissing }
