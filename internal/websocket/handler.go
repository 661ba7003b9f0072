package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"rendezvous/pkg/interfaces"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Signaling clients connect from arbitrary origins; access control
		// happens at the account layer, not the socket handshake.
		return true
	},
	HandshakeTimeout: 10 * time.Second,
}

// Lifecycle is what the transport hands each accepted connection to. The hub
// implements it.
type Lifecycle interface {
	// Attach installs the connection as a provisional session and returns
	// its assigned session ID.
	Attach(conn interfaces.Conn) string

	// Dispatch processes one inbound wire message for the session. Called
	// sequentially from the connection's read goroutine.
	Dispatch(ctx context.Context, sessionID string, data []byte)

	// Detach removes the session after transport close or fatal error.
	Detach(sessionID string)
}

// Options carries the transport timings.
type Options struct {
	PingInterval time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	SendBuffer   int
}

// Handler upgrades HTTP requests to WebSocket connections and runs the read
// loop. All protocol behavior lives behind the Lifecycle boundary.
type Handler struct {
	lifecycle Lifecycle
	opts      Options
	log       *logrus.Entry
}

// NewHandler creates a WebSocket handler.
func NewHandler(lifecycle Lifecycle, opts Options, log *logrus.Entry) *Handler {
	if opts.PingInterval <= 0 {
		opts.PingInterval = 30 * time.Second
	}
	if opts.ReadTimeout <= 0 {
		opts.ReadTimeout = 60 * time.Second
	}
	return &Handler{lifecycle: lifecycle, opts: opts, log: log}
}

// HandleWebSocket upgrades the request and serves the connection until the
// peer goes away.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	conn := NewConnection(ws, h.opts.SendBuffer, h.opts.WriteTimeout)
	sessionID := h.lifecycle.Attach(conn)

	defer func() {
		h.lifecycle.Detach(sessionID)
		_ = conn.Close()
	}()

	if err := ws.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout)); err != nil {
		return
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.opts.ReadTimeout))
	})

	go h.pingLoop(conn)

	// Read loop. Envelopes from one connection are dispatched sequentially,
	// so per-connection ordering is preserved end to end.
	for {
		messageType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.log.WithField("session", sessionID).WithError(err).Debug("read failed")
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}
		h.lifecycle.Dispatch(r.Context(), sessionID, data)
	}
}

func (h *Handler) pingLoop(conn *Connection) {
	ticker := time.NewTicker(h.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			deadline := time.Now().Add(h.opts.PingInterval / 2)
			if err := conn.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		case <-conn.Done():
			return
		}
	}
}
