// Package statushub exposes the launcher's connectivity state to the frontend
// over HTTP: a JSON snapshot at StatusPath and a websocket stream of
// connectivity transitions at EventsPath. The frontend uses them to drive its
// offline indicator and to trigger synchronization when the connection
// returns.
package statushub

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"oficina/internal/connectivity"
	"oficina/internal/logging"
)

const (
	// StatusPath serves the current snapshot as JSON.
	StatusPath = "/__oficina/status"
	// EventsPath upgrades to a websocket that streams events.
	EventsPath = "/__oficina/events"

	writeTimeout   = 5 * time.Second
	clientBuffer   = 16
	shutdownWindow = 3 * time.Second
)

// Event types sent over the websocket.
const (
	EventSnapshot     = "snapshot"
	EventConnectivity = "connectivity"
)

// SnapshotSource provides the current connectivity state.
type SnapshotSource interface {
	Snapshot() connectivity.Snapshot
}

// Status is the JSON body of StatusPath and the payload of snapshot events.
type Status struct {
	Online      bool      `json:"online"`
	CheckedAt   time.Time `json:"checked_at"`
	ChangedAt   time.Time `json:"changed_at"`
	Transitions int       `json:"transitions"`
	Mode        string    `json:"mode,omitempty"`
	URL         string    `json:"url,omitempty"`
	SessionID   string    `json:"session_id,omitempty"`
}

// Event is one websocket message.
type Event struct {
	Type     string    `json:"type"`
	Online   bool      `json:"online"`
	Previous *bool     `json:"previous,omitempty"`
	At       time.Time `json:"at"`
	Status   *Status   `json:"status,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: allowOrigin,
}

// allowOrigin accepts same-host requests and pages served from loopback
// addresses, which covers a dev server on a different port.
func allowOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, strings.TrimSpace(r.Host)) {
		return true
	}
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

type client struct {
	send chan Event
	once sync.Once
	done chan struct{}
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Hub fans connectivity transitions out to websocket clients.
type Hub struct {
	source SnapshotSource
	logger *slog.Logger

	mu        sync.Mutex
	clients   map[*client]struct{}
	mode      string
	serverURL string
	sessionID string
	closed    bool
}

// New constructs a hub reading state from source.
func New(source SnapshotSource, logger *slog.Logger) *Hub {
	return &Hub{
		source:  source,
		logger:  logging.NewComponentLogger(logger, "status-hub"),
		clients: make(map[*client]struct{}),
	}
}

// SetServer records the server mode and URL reported in status payloads.
func (h *Hub) SetServer(mode, serverURL string) {
	h.mu.Lock()
	h.mode = mode
	h.serverURL = serverURL
	h.mu.Unlock()
}

// SetSession records the session identifier reported in status payloads.
func (h *Hub) SetSession(id string) {
	h.mu.Lock()
	h.sessionID = id
	h.mu.Unlock()
}

// Clients returns the number of connected websocket clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Status builds the current status payload.
func (h *Hub) Status() Status {
	var snap connectivity.Snapshot
	if h.source != nil {
		snap = h.source.Snapshot()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return Status{
		Online:      snap.Online,
		CheckedAt:   snap.CheckedAt,
		ChangedAt:   snap.ChangedAt,
		Transitions: snap.Transitions,
		Mode:        h.mode,
		URL:         h.serverURL,
		SessionID:   h.sessionID,
	}
}

// Mount registers the hub endpoints on mux.
func (h *Hub) Mount(mux *http.ServeMux) {
	mux.HandleFunc(StatusPath, h.handleStatus)
	mux.HandleFunc(EventsPath, h.handleEvents)
}

// ConnectivityChanged broadcasts the transition. It implements
// connectivity.Observer. Clients that cannot keep up are disconnected.
func (h *Hub) ConnectivityChanged(_ context.Context, t connectivity.Transition) {
	previous := t.Previous
	h.broadcast(Event{Type: EventConnectivity, Online: t.Online, Previous: &previous, At: t.At})
}

func (h *Hub) broadcast(event Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			h.logger.Debug("dropping slow status client")
			delete(h.clients, c)
			c.close()
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
}

func (h *Hub) register() (*client, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, false
	}
	c := &client{send: make(chan Event, clientBuffer), done: make(chan struct{})}
	h.clients[c] = struct{}{}
	return c, true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	_ = json.NewEncoder(w).Encode(h.Status())
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	c, ok := h.register()
	if !ok {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.unregister(c)
		return
	}
	h.serveConnection(conn, c)
}

func (h *Hub) serveConnection(conn *websocket.Conn, c *client) {
	defer conn.Close()
	defer h.unregister(c)

	status := h.Status()
	if err := writeEvent(conn, Event{Type: EventSnapshot, Online: status.Online, At: time.Now().UTC(), Status: &status}); err != nil {
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-c.send:
			if err := writeEvent(conn, event); err != nil {
				return
			}
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "launcher stopping"),
				time.Now().Add(writeTimeout))
			return
		case <-readerDone:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event Event) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(event)
}

// Serve runs the hub on its own listener until ctx ends. Dev mode uses it
// because the dev server owns the application port.
func (h *Hub) Serve(ctx context.Context, listener net.Listener) error {
	mux := http.NewServeMux()
	h.Mount(mux)
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          log.New(io.Discard, "", 0),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(listener) }()

	select {
	case <-ctx.Done():
		h.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownWindow)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
