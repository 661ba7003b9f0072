package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Connection wraps a gorilla WebSocket connection with a single writer
// goroutine. All writes funnel through writeCh so concurrent WriteJSON calls
// from the router and the broadcaster never race on the underlying socket.
type Connection struct {
	conn         *websocket.Conn
	writeCh      chan []byte
	writeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	closeOnce    sync.Once
}

// NewConnection wraps conn and starts its writer goroutine. sendBuffer
// bounds the number of queued outbound messages; writeTimeout bounds each
// socket write.
func NewConnection(conn *websocket.Conn, sendBuffer int, writeTimeout time.Duration) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 100
	}
	if writeTimeout <= 0 {
		writeTimeout = 5 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Connection{
		conn:         conn,
		writeCh:      make(chan []byte, sendBuffer),
		writeTimeout: writeTimeout,
		ctx:          ctx,
		cancel:       cancel,
	}

	go c.writeLoop()

	return c
}

func (c *Connection) writeLoop() {
	for {
		select {
		case data := <-c.writeCh:
			if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

// WriteJSON queues v for delivery. It fails fast when the connection is
// closed or the send buffer stays full past the write timeout, so a stalled
// peer cannot stall its senders.
func (c *Connection) WriteJSON(v interface{}) error {
	select {
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
	}

	data, err := json.Marshal(v)
	if err != nil {
		return ErrInvalidJSON
	}

	timer := time.NewTimer(c.writeTimeout)
	defer timer.Stop()

	select {
	case c.writeCh <- data:
		return nil
	case <-timer.C:
		return ErrWriteTimeout
	case <-c.ctx.Done():
		return ErrConnectionClosed
	}
}

// Close tears down the socket and stops the writer goroutine. Safe to call
// more than once.
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// Done is closed when the connection has been torn down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}
