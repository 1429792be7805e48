// Package stream pushes committed stage changes to connected browsers over
// WebSocket.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/okian/hireflow/internal/domain/model"
	"github.com/okian/hireflow/pkg/logger"
	"github.com/okian/hireflow/pkg/metrics"
)

const (
	defaultBuffer       = 32
	defaultPingInterval = 30 * time.Second
	writeWait           = 10 * time.Second
)

// Option configures a Hub.
type Option func(*Hub)

// WithLogger sets the hub logger.
func WithLogger(l logger.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.log = l
		}
	}
}

// WithBuffer sets how many notices may queue per client before it is
// dropped as too slow.
func WithBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.buffer = n
		}
	}
}

// WithPingInterval sets the keepalive interval.
func WithPingInterval(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.pingInterval = d
		}
	}
}

// WithAllowedOrigins restricts which browser origins may connect. "*" or an
// empty list allows any.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Hub) {
		allowed := make(map[string]bool, len(origins))
		for _, o := range origins {
			if o == "*" {
				h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
				return
			}
			allowed[o] = true
		}
		if len(allowed) > 0 {
			h.upgrader.CheckOrigin = func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowed[origin]
			}
		}
	}
}

type client struct {
	id          string
	candidateID string
	send        chan []byte
}

// Hub fans notices out to connected clients. A client may subscribe to one
// candidate with ?candidate_id=.
type Hub struct {
	mu           sync.RWMutex
	clients      map[string]*client
	closed       bool
	buffer       int
	pingInterval time.Duration
	upgrader     websocket.Upgrader
	log          logger.Logger
}

// New creates a Hub.
func New(opts ...Option) *Hub {
	h := &Hub{
		clients:      make(map[string]*client),
		buffer:       defaultBuffer,
		pingInterval: defaultPingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues n for every interested client. It never blocks: a client
// whose queue is full is disconnected.
func (h *Hub) Publish(ctx context.Context, n model.Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		h.log.Error(ctx, "failed to marshal notice", logger.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		if c.candidateID != "" && c.candidateID != n.CandidateID {
			continue
		}
		select {
		case c.send <- data:
		default:
			h.log.Warn(ctx, "dropping slow stream client", logger.String("client_id", id))
			h.removeLocked(id)
		}
	}
}

// Close disconnects every client and refuses new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for id := range h.clients {
		h.removeLocked(id)
	}
}

func (h *Hub) add(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.id] = c
	metrics.UpdateStreamClients(len(h.clients))
	return true
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(id)
}

// removeLocked must be called with h.mu held.
func (h *Hub) removeLocked(id string) {
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
		metrics.UpdateStreamClients(len(h.clients))
	}
}

// ServeHTTP upgrades the request and streams notices until either side
// closes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "failed to upgrade to websocket", logger.Error(err))
		return
	}
	defer conn.Close()

	c := &client{
		id:          uuid.NewString(),
		candidateID: r.URL.Query().Get("candidate_id"),
		send:        make(chan []byte, h.buffer),
	}
	if !h.add(c) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		return
	}
	ctx := logger.WithFields(context.Background(), logger.String("client_id", c.id))
	h.log.Debug(ctx, "stream client connected", logger.String("candidate_id", c.candidateID))

	// Reader: the stream is one-way; reading only notices the close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.log.Debug(ctx, "websocket read error", logger.Error(err))
				}
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()
	defer h.remove(c.id)

	for {
		select {
		case <-done:
			return
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				h.log.Debug(ctx, "failed to send notice", logger.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
