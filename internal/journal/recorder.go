package journal

import (
	"context"
	"log/slog"

	"oficina/internal/connectivity"
	"oficina/internal/logging"
)

// Recorder persists connectivity transitions for one session. It implements
// connectivity.Observer.
type Recorder struct {
	store     *Store
	sessionID string
	logger    *slog.Logger
}

// NewRecorder binds a store to a session.
func NewRecorder(store *Store, sessionID string, logger *slog.Logger) *Recorder {
	return &Recorder{store: store, sessionID: sessionID, logger: logging.NewComponentLogger(logger, "journal")}
}

// ConnectivityChanged records the transition; failures are logged and dropped.
func (r *Recorder) ConnectivityChanged(ctx context.Context, t connectivity.Transition) {
	if r == nil || r.store == nil {
		return
	}
	if err := r.store.RecordTransition(context.WithoutCancel(ctx), r.sessionID, t.Online, t.At); err != nil {
		logging.WarnWithContext(r.logger, "journal transition write failed", "journal_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on "+r.store.Path()),
			logging.String(logging.FieldImpact, "transition missing from oficina history"),
		)
	}
}
