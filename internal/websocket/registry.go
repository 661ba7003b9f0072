package websocket

import (
	"fmt"
	"sync"

	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

// Session binds a live connection to its server-assigned session ID and,
// after registration, a durable identity. A session whose Identity is nil is
// provisional: present in snapshots, absent from the identity index and the
// public presence list.
type Session struct {
	ID   string
	Conn interfaces.Conn

	// Identity is nil until registration succeeds. It is replaced as a
	// whole, never mutated in place, so copies handed out by Snapshot stay
	// consistent.
	Identity *types.Identity

	// NetworkAddress is advisory only, set by address_exchange envelopes.
	// It is never used for routing.
	NetworkAddress string
}

// Registered reports whether the session has completed registration.
func (s Session) Registered() bool { return s.Identity != nil }

// Registry is the single owner of all live sessions. Every mutation goes
// through its methods under one mutex, so the identity index can never be
// observed stale relative to the primary map.
type Registry struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	byIdentity map[string]string // identity ID -> session ID, latest registration wins
	nextID     uint64
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions:   make(map[string]*Session),
		byIdentity: make(map[string]string),
	}
}

// Insert installs a new provisional session for conn and returns it. Session
// IDs come from a process-lifetime monotonic counter and are never reused.
func (r *Registry) Insert(conn interfaces.Conn) Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	s := &Session{
		ID:   fmt.Sprintf("s_%d", r.nextID),
		Conn: conn,
	}
	r.sessions[s.ID] = s
	return *s
}

// UpdateIdentity sets the session's identity fields and the identity index in
// one step. Re-registration replaces the identity wholesale. When two live
// sessions register the same identity, the index points at the most recent
// registration.
func (r *Registry) UpdateIdentity(sessionID string, identity types.Identity) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}

	if s.Identity != nil && s.Identity.ID != identity.ID {
		if r.byIdentity[s.Identity.ID] == sessionID {
			delete(r.byIdentity, s.Identity.ID)
		}
	}

	id := identity
	s.Identity = &id
	r.byIdentity[identity.ID] = sessionID
	return *s, true
}

// SetNetworkAddress records the sender's last known network address.
func (r *Registry) SetNetworkAddress(sessionID, address string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return false
	}
	s.NetworkAddress = address
	return true
}

// Remove deletes the session and returns its final state. The identity index
// entry is dropped only if it still points at this session, so a newer
// registration of the same identity keeps its lookup.
func (r *Registry) Remove(sessionID string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, sessionID)
	if s.Identity != nil && r.byIdentity[s.Identity.ID] == sessionID {
		delete(r.byIdentity, s.Identity.ID)
	}
	return *s, true
}

// BySession looks a session up by its session ID.
func (r *Registry) BySession(sessionID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// ByIdentity looks a registered session up by identity ID. Provisional
// sessions are invisible here.
func (r *Registry) ByIdentity(identityID string) (Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessionID, ok := r.byIdentity[identityID]
	if !ok {
		return Session{}, false
	}
	s, ok := r.sessions[sessionID]
	if !ok {
		return Session{}, false
	}
	return *s, true
}

// Snapshot returns a point-in-time copy of all sessions, safe to iterate
// while the registry is concurrently mutated. Broadcast loops use this
// instead of holding the lock across sends.
func (r *Registry) Snapshot() []Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, *s)
	}
	return out
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
