package realtime

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"campus_exchange/internal/config"
)

// Client is one live connection. Outbound frames go through a bounded
// queue drained by writePump; the queue is never closed, done is.
type Client struct {
	ID     string
	UserID string

	conn *websocket.Conn
	send chan []byte
	done chan struct{}
	once sync.Once

	writeWait  time.Duration
	pingPeriod time.Duration
}

func NewClient(conn *websocket.Conn, userID string, cfg config.ChatConfig) *Client {
	return &Client{
		ID:         uuid.NewString(),
		UserID:     userID,
		conn:       conn,
		send:       make(chan []byte, cfg.SendBuffer),
		done:       make(chan struct{}),
		writeWait:  cfg.WriteWait,
		pingPeriod: cfg.PingPeriod,
	}
}

// Open reports whether the client has not been closed.
func (c *Client) Open() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// enqueue queues b without blocking. It fails if the client is closed or
// its queue is full.
func (c *Client) enqueue(b []byte) bool {
	if !c.Open() {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}

// Close sends a close frame with code and reason, then tears down the
// connection. Only the first call to any close method has an effect.
func (c *Client) Close(code int, reason string) {
	c.shutdown(true, code, reason, false)
}

// closeAndDrain is Close for a server-initiated close while the peer may
// still be sending. Unread input is discarded until the peer hangs up or
// writeWait passes; closing with unread input would reset the connection
// and lose the close frame.
func (c *Client) closeAndDrain(code int, reason string) {
	c.shutdown(true, code, reason, true)
}

// drainAndClose tears down a connection whose close frame was already
// written by the websocket reader.
func (c *Client) drainAndClose() {
	c.shutdown(false, 0, "", true)
}

func (c *Client) shutdown(sendFrame bool, code int, reason string, drain bool) {
	c.once.Do(func() {
		close(c.done)
		if c.conn == nil {
			return
		}
		if sendFrame {
			msg := websocket.FormatCloseMessage(code, reason)
			_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeWait))
		}
		if drain {
			nc := c.conn.NetConn()
			_ = nc.SetReadDeadline(time.Now().Add(c.writeWait))
			_, _ = io.Copy(io.Discard, nc)
		}
		_ = c.conn.Close()
	})
}

// writePump drains the send queue and pings the peer until the client is
// closed or a write fails. onFail runs after a failed write.
func (c *Client) writePump(onFail func()) {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				onFail()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				onFail()
				return
			}
		case <-c.done:
			return
		}
	}
}
