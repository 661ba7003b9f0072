package presence

import (
	"github.com/sirupsen/logrus"

	"rendezvous/internal/websocket"
	"rendezvous/pkg/types"
)

// Broadcaster derives the public online-user view from the registry and
// pushes it to connections. Every send is best-effort: a dead or slow
// connection is logged and skipped, never allowed to fail the loop, and the
// registry lock is never held across a send (all iteration is over
// snapshots).
type Broadcaster struct {
	registry *websocket.Registry
	log      *logrus.Entry
}

// NewBroadcaster creates a broadcaster over registry.
func NewBroadcaster(registry *websocket.Registry, log *logrus.Entry) *Broadcaster {
	return &Broadcaster{registry: registry, log: log}
}

// Online returns the current public presence list: registered sessions only,
// with excludeSessionID (the eventual recipient's own session) filtered out.
func (b *Broadcaster) Online(excludeSessionID string) []types.OnlineUser {
	snapshot := b.registry.Snapshot()
	users := make([]types.OnlineUser, 0, len(snapshot))
	for _, s := range snapshot {
		if !s.Registered() || s.ID == excludeSessionID {
			continue
		}
		users = append(users, types.OnlineUser{
			SessionID:  s.ID,
			IdentityID: s.Identity.ID,
			Name:       s.Identity.Name,
		})
	}
	return users
}

// BroadcastOnline pushes a presence update to every live connection,
// provisional ones included. Each recipient gets a list with its own session
// excluded, so clients never see themselves in the roster.
func (b *Broadcaster) BroadcastOnline() {
	for _, s := range b.registry.Snapshot() {
		b.send(s, types.NewOnlineUsers(b.Online(s.ID)))
	}
}

// SendOnline replies to exactly one session with the current presence list.
func (b *Broadcaster) SendOnline(sessionID string) {
	s, ok := b.registry.BySession(sessionID)
	if !ok {
		return
	}
	b.send(s, types.NewOnlineUsers(b.Online(s.ID)))
}

// Broadcast sends env to every live connection.
func (b *Broadcaster) Broadcast(env *types.Envelope) {
	for _, s := range b.registry.Snapshot() {
		b.send(s, env)
	}
}

// SendOne sends env to exactly one session. It reports whether the session
// was live at lookup time.
func (b *Broadcaster) SendOne(sessionID string, env *types.Envelope) bool {
	s, ok := b.registry.BySession(sessionID)
	if !ok {
		return false
	}
	b.send(s, env)
	return true
}

func (b *Broadcaster) send(s websocket.Session, v interface{}) {
	if err := s.Conn.WriteJSON(v); err != nil {
		// Dead connections are cleaned up by their own lifecycle; a failed
		// send here is not fatal to the broadcast.
		b.log.WithField("session", s.ID).WithError(err).Debug("broadcast send failed")
	}
}
