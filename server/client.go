package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

// client is one websocket connection. Outbound traffic goes through
// one-slot mailboxes drained by writeLoop, the only goroutine that writes.
type client struct {
	conn    *websocket.Conn
	limiter *rate.Limiter

	stats   chan []byte
	frames  chan []byte
	replies chan []byte

	done      chan struct{}
	closeOnce sync.Once
}

func newClient(conn *websocket.Conn, limiter *rate.Limiter) *client {
	return &client{
		conn:    conn,
		limiter: limiter,
		stats:   make(chan []byte, 1),
		frames:  make(chan []byte, 1),
		replies: make(chan []byte, 8),
		done:    make(chan struct{}),
	}
}

// offer replaces any unsent payload in a one-slot mailbox.
func offer(ch chan []byte, data []byte) {
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- data:
	default:
	}
}

// reply queues a direct response. Dropped when the client is not reading.
func (c *client) reply(data []byte) {
	select {
	case c.replies <- data:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *client) writeLoop(logger *slog.Logger) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		var data []byte
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
			continue
		case data = <-c.replies:
		case data = <-c.stats:
		case data = <-c.frames:
		}

		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			logger.Warn("client write failed", "error", err)
			return
		}
	}
}
