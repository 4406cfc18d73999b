package ws

import (
	"chat-desk/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	errConnectionClosed = fmt.Errorf("connection closed")
	errSendBufferFull   = fmt.Errorf("connection send buffer full")
)

// Connection wraps a websocket and serialises outbound writes through a
// buffered channel drained by a single write loop. It is safe for
// concurrent use.
type Connection struct {
	id           string
	log          *slog.Logger
	ws           *websocket.Conn
	send         chan []byte
	closed       chan struct{}
	once         sync.Once
	writeTimeout time.Duration
	pingPeriod   time.Duration
}

func newConnection(log *slog.Logger, conn *websocket.Conn, bufferSize int, writeTimeout, pingPeriod time.Duration) *Connection {
	id := uuid.NewString()
	return &Connection{
		id:           id,
		log:          log.With("connection_id", id),
		ws:           conn,
		send:         make(chan []byte, bufferSize),
		closed:       make(chan struct{}),
		writeTimeout: writeTimeout,
		pingPeriod:   pingPeriod,
	}
}

func (c *Connection) ID() string { return c.id }

// Consume pushes a domain event to the client under the event's name.
func (c *Connection) Consume(_ context.Context, e event.DomainEvent) error {
	return c.write(OutboundFrame{Event: e.Name(), Data: e})
}

// write enqueues a frame. A client too slow to drain its buffer is
// disconnected rather than allowed to stall the fanout.
func (c *Connection) write(frame OutboundFrame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	select {
	case <-c.closed:
		return errConnectionClosed
	default:
	}
	select {
	case <-c.closed:
		return errConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.closeWith(websocket.ClosePolicyViolation, "send buffer full")
		return errSendBufferFull
	}
}

func (c *Connection) Close(reason string) {
	c.closeWith(websocket.CloseGoingAway, reason)
}

func (c *Connection) closeWith(code int, reason string) {
	c.once.Do(func() {
		close(c.closed)
		deadline := time.Now().Add(c.writeTimeout)
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
		_ = c.ws.Close()
		c.log.Debug("Connection closed", "reason", reason)
	})
}

// Done is closed once the connection is closed.
func (c *Connection) Done() <-chan struct{} { return c.closed }

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(c.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.closed:
			return
		case payload := <-c.send:
			if err := c.writeMessage(websocket.TextMessage, payload); err != nil {
				c.closeWith(websocket.CloseInternalServerErr, "write failed")
				return
			}
		case <-ticker.C:
			if err := c.writeMessage(websocket.PingMessage, nil); err != nil {
				c.closeWith(websocket.CloseInternalServerErr, "ping failed")
				return
			}
		}
	}
}

func (c *Connection) writeMessage(messageType int, payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, payload)
}
