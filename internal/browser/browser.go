// Package browser opens the launcher URL in the user's default browser after
// a short delay. Failure (headless host, no browser installed) is logged at
// debug level and never reaches the caller.
package browser

import (
	"context"
	"log/slog"
	"time"

	"github.com/skratchdot/open-golang/open"

	"oficina/internal/logging"
)

// Opener schedules delayed browser launches.
type Opener struct {
	Delay time.Duration
	// Open launches the browser. Defaults to the platform URL handler.
	Open func(url string) error
	// HasDisplay reports whether a graphical session is available.
	HasDisplay func() bool
	Logger     *slog.Logger
}

// New returns an Opener using the platform browser.
func New(delay time.Duration, logger *slog.Logger) *Opener {
	return &Opener{
		Delay:      delay,
		Open:       open.Run,
		HasDisplay: hasDisplay,
		Logger:     logging.NewComponentLogger(logger, "browser"),
	}
}

// Schedule opens url after the delay on a background goroutine. Cancelling
// ctx before the delay elapses skips the launch. The returned channel closes
// when the goroutine finishes.
func (o *Opener) Schedule(ctx context.Context, url string) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if o.Delay > 0 {
			timer := time.NewTimer(o.Delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
			}
		} else if ctx.Err() != nil {
			return
		}
		o.openNow(url)
	}()
	return done
}

func (o *Opener) openNow(url string) {
	logger := o.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	if o.HasDisplay != nil && !o.HasDisplay() {
		logger.Debug("skipping browser open: no display detected", logging.String("url", url))
		return
	}
	launch := o.Open
	if launch == nil {
		launch = open.Run
	}
	if err := launch(url); err != nil {
		logger.Debug("could not open browser", logging.String("url", url), logging.Error(err))
		return
	}
	logger.Debug("browser opened", logging.String("url", url))
}
