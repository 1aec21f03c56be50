// --- File: internal/realtime/client.go ---
package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/TalkNest/backend/pkg/signaling"
)

const (
	// sendBufferSize bounds the per-connection egress queue. A full buffer
	// fails the send rather than blocking the relay.
	sendBufferSize = 32

	writeTimeout = 10 * time.Second
)

var errSendBufferFull = errors.New("realtime: send buffer full")
var errConnectionClosed = errors.New("realtime: connection closed")

// client is the server side of one WebSocket connection. Reads happen on the
// connect handler's goroutine; all writes are funneled through a buffered
// channel drained by a single write pump, so a slow browser cannot block the
// relay or interleave frames.
type client struct {
	conn     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	stopOnce sync.Once
	logger   zerolog.Logger
}

func newClient(conn *websocket.Conn, logger zerolog.Logger) *client {
	return &client{
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Send satisfies presence.Sender. It marshals the envelope and enqueues it
// for the write pump; it never blocks on the network.
func (c *client) Send(_ context.Context, env signaling.Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.enqueue(data)
}

func (c *client) enqueue(data []byte) error {
	select {
	case <-c.done:
		return errConnectionClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	case <-c.done:
		return errConnectionClosed
	default:
		return errSendBufferFull
	}
}

// writePump drains the send channel onto the socket until the connection is
// shut down, then sends a clean close frame.
func (c *client) writePump() {
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.logger.Debug().Err(err).Msg("Write failed; stopping write pump.")
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}

// shutdown stops the write pump. Safe to call more than once.
func (c *client) shutdown() {
	c.stopOnce.Do(func() { close(c.done) })
}
