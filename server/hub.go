package server

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/pthm-cable/ecosim/game"
	"github.com/pthm-cable/ecosim/telemetry"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// ErrBusy is reported to a client when the runner inbox is full.
var ErrBusy = errors.New("simulation busy, message dropped")

// ErrRateLimited is reported to a client that sends too fast.
var ErrRateLimited = errors.New("rate limit exceeded, message dropped")

// Sender queues a message for the simulation without blocking, as
// game.Runner.Send does.
type Sender interface {
	Send(msg game.Message) bool
}

// HubOptions configures a Hub.
type HubOptions struct {
	Sender Sender

	// AllowedOrigins lists the origins allowed to connect; "*" allows any.
	AllowedOrigins []string

	// MessageRate and MessageBurst bound inbound messages per connection.
	// A non-positive rate disables the limit.
	MessageRate  float64
	MessageBurst int

	DefaultWidth  float64
	DefaultHeight float64

	Logger *slog.Logger
}

// Hub owns the websocket clients. It is the stats sink of the simulation
// and, through a FrameCaster, its render target.
type Hub struct {
	sender  Sender
	decoder Decoder
	origins []string
	rate    rate.Limit
	burst   int
	logger  *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

// NewHub creates a hub. Frames are cast by the FrameCaster returned from
// Caster; use it as the Initialize render target.
func NewHub(opts HubOptions) *Hub {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MessageBurst <= 0 {
		opts.MessageBurst = 1
	}
	h := &Hub{
		sender:  opts.Sender,
		origins: opts.AllowedOrigins,
		rate:    rate.Inf,
		burst:   opts.MessageBurst,
		logger:  opts.Logger.With("component", "hub"),
		clients: make(map[*client]struct{}),
	}
	if opts.MessageRate > 0 {
		h.rate = rate.Limit(opts.MessageRate)
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	h.decoder = Decoder{DefaultWidth: opts.DefaultWidth, DefaultHeight: opts.DefaultHeight}
	return h
}

// SetTarget sets the render target handed out with client Initialize messages.
func (h *Hub) SetTarget(t game.RenderTarget) { h.decoder.Target = t }

// Handler returns the HTTP handler serving /ws and /healthz, wrapped with CORS.
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", h)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: h.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})
	h.logger.Info("CORS configured", "allowed_origins", h.origins)
	return c.Handler(mux)
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin || allowed == u.Host {
			return true
		}
	}
	// No list means same-host only, as the default upgrader does.
	return len(h.origins) == 0 && u.Host == r.Host
}

// ServeHTTP upgrades the connection and serves one client until it leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	c := newClient(conn, rate.NewLimiter(h.rate, h.burst))
	if !h.register(c) {
		conn.Close()
		return
	}
	h.logger.Info("client connected", "remote", r.RemoteAddr, "clients", h.Clients())

	go c.writeLoop(h.logger)
	h.readLoop(c)

	h.unregister(c)
	h.logger.Info("client disconnected", "remote", r.RemoteAddr, "clients", h.Clients())
}

func (h *Hub) readLoop(c *client) {
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("read failed", "error", err)
			}
			return
		}

		if !c.limiter.Allow() {
			h.logger.Warn("client over rate limit, message dropped")
			c.reply(EncodeError(ErrRateLimited))
			continue
		}

		msg, err := h.decoder.Decode(data)
		if err != nil {
			h.logger.Warn("bad client message", "error", err)
			c.reply(EncodeError(err))
			continue
		}
		if !h.sender.Send(msg) {
			c.reply(EncodeError(ErrBusy))
		}
	}
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.close()
	}
	h.mu.Unlock()
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish sends a snapshot to every client. Slow clients only ever hold the
// latest one, so Publish never blocks the tick loop.
func (h *Hub) Publish(s telemetry.Snapshot) {
	data, err := EncodeStats(s)
	if err != nil {
		h.logger.Error("failed to encode stats", "error", err)
		return
	}
	h.each(func(c *client) { offer(c.stats, data) })
}

// BroadcastFrame sends a frame to every client, latest wins.
func (h *Hub) BroadcastFrame(f *game.Frame) {
	h.mu.Lock()
	n := len(h.clients)
	h.mu.Unlock()
	if n == 0 {
		return
	}
	data, err := EncodeFrame(f)
	if err != nil {
		h.logger.Error("failed to encode frame", "error", err)
		return
	}
	h.each(func(c *client) { offer(c.frames, data) })
}

func (h *Hub) each(fn func(*client)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		fn(c)
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

var _ telemetry.Sink = (*Hub)(nil)
