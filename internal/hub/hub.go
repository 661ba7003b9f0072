package hub

import (
	"context"

	"github.com/sirupsen/logrus"

	"rendezvous/internal/presence"
	"rendezvous/internal/router"
	"rendezvous/internal/websocket"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

// Hub owns the per-connection lifecycle: Provisional on attach, Registered
// after a successful register envelope (driven by the router), Closed on
// detach. It installs and removes registry entries and triggers the presence
// broadcasts each transition requires.
type Hub struct {
	registry *websocket.Registry
	router   *router.Router
	presence *presence.Broadcaster
	log      *logrus.Entry
}

// NewHub creates a lifecycle manager over the given components.
func NewHub(registry *websocket.Registry, rt *router.Router, presence *presence.Broadcaster, log *logrus.Entry) *Hub {
	return &Hub{
		registry: registry,
		router:   rt,
		presence: presence,
		log:      log,
	}
}

// Attach installs conn as a provisional session and immediately acks it with
// its assigned session ID, so the client can address itself in later
// point-to-point exchanges before registering.
func (h *Hub) Attach(conn interfaces.Conn) string {
	sess := h.registry.Insert(conn)
	h.log.WithField("session", sess.ID).Info("connection attached")

	if err := conn.WriteJSON(types.NewRegisterAck(sess.ID)); err != nil {
		h.log.WithField("session", sess.ID).WithError(err).Debug("register_ack not delivered")
	}
	return sess.ID
}

// Dispatch parses one inbound wire message and routes it. Malformed or
// unrecognized input is logged and dropped; it never transitions state and
// never terminates the connection.
func (h *Hub) Dispatch(ctx context.Context, sessionID string, data []byte) {
	env, err := types.ParseEnvelope(data)
	if err != nil {
		h.log.WithFields(logrus.Fields{
			"session": sessionID,
			"bytes":   len(data),
		}).WithError(err).Warn("dropping invalid envelope")
		return
	}
	h.router.Route(ctx, sessionID, env)
}

// Detach removes the session and broadcasts user_left with its last known
// public fields. Envelopes racing the close find no registry entry and are
// dropped by the router.
func (h *Hub) Detach(sessionID string) {
	sess, ok := h.registry.Remove(sessionID)
	if !ok {
		return
	}

	entry := h.log.WithField("session", sess.ID)
	if !sess.Registered() {
		entry.Info("provisional connection detached")
		return
	}

	entry.WithField("identity", sess.Identity.ID).Info("connection detached")
	h.presence.Broadcast(types.NewUserLeft(sess.ID, sess.Identity.ID, sess.Identity.Name))
}
