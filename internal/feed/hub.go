// Package feed streams journal events to websocket clients as they are
// recorded, one JSON object per text message.
package feed

import (
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmylchreest/winstack/internal/journal"
)

// clientBuffer is how many events a slow client may fall behind before it is
// dropped.
const clientBuffer = 256

const writeTimeout = 5 * time.Second

// Hub fans events out to connected clients. Publish never blocks.
type Hub struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
	pans     bool

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan journal.Event
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// Option configures a Hub.
type Option func(*Hub)

// WithPans also streams pan events.
func WithPans() Option {
	return func(h *Hub) {
		h.pans = true
	}
}

// WithAnyOrigin accepts connections from any origin.
func WithAnyOrigin() Option {
	return func(h *Hub) {
		h.upgrader.CheckOrigin = func(r *http.Request) bool { return true }
	}
}

// NewHub creates a Hub.
func NewHub(logger *slog.Logger, opts ...Option) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     isSameOrigin,
		},
		clients: make(map[*client]struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish queues e for every client. A client whose buffer is full is
// disconnected.
func (h *Hub) Publish(e journal.Event) {
	if e.Kind == journal.KindPan && !h.pans {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- e:
		default:
			h.logger.Warn("feed client too slow, disconnecting", "remote", c.conn.RemoteAddr())
			delete(h.clients, c)
			c.close()
		}
	}
}

// ServeHTTP upgrades the request and streams events until the client goes
// away or the hub is closed.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn: conn,
		send: make(chan journal.Event, clientBuffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("feed client connected", "remote", conn.RemoteAddr())

	// Reads only detect the close; clients have nothing to send.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				c.close()
				return
			}
		}
	}()

	defer h.remove(c)
	for {
		select {
		case <-c.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeTimeout))
			return
		case e := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(e); err != nil {
				h.logger.Debug("feed write failed", "remote", conn.RemoteAddr(), "error", err)
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.close()
	h.logger.Debug("feed client disconnected", "remote", c.conn.RemoteAddr())
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

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}
