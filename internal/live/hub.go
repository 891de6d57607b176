// Package live streams planning events to browsers over WebSocket.
package live

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/unit-planner/internal/events"
)

const (
	defaultBuffer = 16
	writeTimeout  = 5 * time.Second
)

type client struct {
	subjectID string
	send      chan events.Event
}

// Hub fans planning events out to subscribers. A subscriber that falls more
// than its buffer behind is disconnected.
type Hub struct {
	clients map[*client]struct{}
	buffer  int
	origins []string
	mu      sync.Mutex
}

// Option configures a Hub.
type Option func(*Hub)

// WithBuffer sets the per-subscriber queue length.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithOriginPatterns allows cross-origin WebSocket connections from hosts
// matching the patterns.
func WithOriginPatterns(patterns ...string) Option {
	return func(h *Hub) {
		h.origins = append(h.origins, patterns...)
	}
}

// NewHub creates a hub with no subscribers.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients: make(map[*client]struct{}),
		buffer:  defaultBuffer,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// LogEvent delivers event to every subscriber of its subject and to
// subscribers of all subjects. It never blocks.
func (h *Hub) LogEvent(event events.Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		if c.subjectID != "" && c.subjectID != event.SubjectID {
			continue
		}
		select {
		case c.send <- event:
		default:
			slog.Warn("live subscriber too slow, dropping", "subject_id", c.subjectID)
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// Subscribe registers a subscriber for subjectID, or for every subject when
// subjectID is empty. The channel is closed when cancel is called or when the
// subscriber is dropped.
func (h *Hub) Subscribe(subjectID string) (<-chan events.Event, func()) {
	c := &client{subjectID: subjectID, send: make(chan events.Event, h.buffer)}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
	}
	return c.send, cancel
}

// Clients returns the number of subscribers.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket and streams events as JSON
// until the peer goes away. The subjectId query parameter filters events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subjectID := r.URL.Query().Get("subjectId")

	// Subscribe before the handshake completes so no event is missed.
	ch, cancel := h.Subscribe(subjectID)
	defer cancel()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.origins})
	if err != nil {
		slog.Warn("websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Debug("live subscriber connected", "subject_id", subjectID)
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-ch:
			if !ok {
				conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
				return
			}
			if err := write(ctx, conn, ev); err != nil {
				slog.Debug("live write failed", "subject_id", subjectID, "error", err)
				return
			}
		}
	}
}

func write(ctx context.Context, conn *websocket.Conn, ev events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
