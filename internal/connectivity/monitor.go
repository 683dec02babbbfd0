package connectivity

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"oficina/internal/logging"
)

// DefaultInterval is the polling period between probes.
const DefaultInterval = 10 * time.Second

// Transition describes a single online/offline change.
type Transition struct {
	Online   bool      `json:"online"`
	Previous bool      `json:"previous"`
	At       time.Time `json:"at"`
}

// Snapshot is a read-only copy of the monitor state.
type Snapshot struct {
	Online      bool      `json:"online"`
	Seeded      bool      `json:"seeded"`
	CheckedAt   time.Time `json:"checked_at"`
	ChangedAt   time.Time `json:"changed_at"`
	Transitions int       `json:"transitions"`
}

// Observer receives connectivity transitions.
type Observer interface {
	ConnectivityChanged(ctx context.Context, t Transition)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(ctx context.Context, t Transition)

// ConnectivityChanged implements Observer.
func (f ObserverFunc) ConnectivityChanged(ctx context.Context, t Transition) { f(ctx, t) }

// Monitor periodically probes connectivity and notifies observers on change.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	obsMu     sync.Mutex
	observers []Observer

	mu    sync.RWMutex
	state Snapshot
}

// NewMonitor configures a monitor. A non-positive interval uses DefaultInterval.
func NewMonitor(prober Prober, interval time.Duration, logger *slog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logging.NewComponentLogger(logger, "connectivity"),
		now:      time.Now,
	}
}

// Interval returns the polling period.
func (m *Monitor) Interval() time.Duration { return m.interval }

// AddObserver registers an observer. Observers run synchronously on the
// monitor goroutine in registration order.
func (m *Monitor) AddObserver(o Observer) {
	if o == nil {
		return
	}
	m.obsMu.Lock()
	m.observers = append(m.observers, o)
	m.obsMu.Unlock()
}

// Seed records the initial state without notifying observers.
func (m *Monitor) Seed(online bool) {
	now := m.now()
	m.mu.Lock()
	m.state.Online = online
	m.state.Seeded = true
	m.state.CheckedAt = now
	m.state.ChangedAt = now
	m.mu.Unlock()
}

// Snapshot returns the current state.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Check runs one probe, updates the state, and notifies observers when the
// result differs from the stored value. An unseeded monitor adopts the first
// result silently.
func (m *Monitor) Check(ctx context.Context) (Transition, bool) {
	online := m.probe(ctx)
	now := m.now()

	m.mu.Lock()
	m.state.CheckedAt = now
	if !m.state.Seeded {
		m.state.Online = online
		m.state.Seeded = true
		m.state.ChangedAt = now
		m.mu.Unlock()
		return Transition{}, false
	}
	if m.state.Online == online {
		m.mu.Unlock()
		return Transition{}, false
	}
	transition := Transition{Online: online, Previous: m.state.Online, At: now}
	m.state.Online = online
	m.state.ChangedAt = now
	m.state.Transitions++
	m.mu.Unlock()

	m.logger.Info("connectivity changed",
		logging.Bool("online", transition.Online),
		logging.String(logging.FieldEventType, "connectivity_changed"),
	)
	m.notify(ctx, transition)
	return transition, true
}

// Run polls until ctx is cancelled. The first probe happens one interval
// after the call; seed the monitor beforehand with the startup result.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.logger.Debug("connectivity monitor started", logging.Duration("interval", m.interval))
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("connectivity monitor stopped")
			return nil
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) (online bool) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(m.logger, "connectivity probe panicked; treating as offline", "probe_panic",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldImpact, "this poll reports offline"),
			)
			online = false
		}
	}()
	if m.prober == nil {
		return false
	}
	return m.prober.Online(ctx)
}

func (m *Monitor) notify(ctx context.Context, t Transition) {
	m.obsMu.Lock()
	observers := make([]Observer, len(m.observers))
	copy(observers, m.observers)
	m.obsMu.Unlock()

	for _, o := range observers {
		m.deliver(ctx, o, t)
	}
}

func (m *Monitor) deliver(ctx context.Context, o Observer, t Transition) {
	defer func() {
		if r := recover(); r != nil {
			logging.WarnWithContext(m.logger, "connectivity observer panicked", "observer_panic",
				logging.String("panic", fmt.Sprint(r)),
				logging.String(logging.FieldImpact, "one observer missed a transition; monitoring continues"),
			)
		}
	}()
	o.ConnectivityChanged(ctx, t)
}
