package hub

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"rendezvous/internal/presence"
	"rendezvous/internal/router"
	"rendezvous/internal/websocket"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

type recordConn struct {
	mu   sync.Mutex
	sent []*types.Envelope
}

func (c *recordConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if env, ok := v.(*types.Envelope); ok {
		c.sent = append(c.sent, env)
	}
	return nil
}

func (c *recordConn) Close() error { return nil }

func (c *recordConn) envelopes() []*types.Envelope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*types.Envelope(nil), c.sent...)
}

type staticResolver map[string]*types.Identity

func (r staticResolver) Resolve(_ context.Context, opaqueID string) (*types.Identity, error) {
	id, ok := r[opaqueID]
	if !ok {
		return nil, interfaces.ErrIdentityNotFound
	}
	return id, nil
}

func newTestHub() (*Hub, *websocket.Registry) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	entry := logrus.NewEntry(log)

	registry := websocket.NewRegistry()
	broadcaster := presence.NewBroadcaster(registry, entry)
	resolver := staticResolver{"u42": {ID: "u42", Name: "Ann"}}
	rt := router.NewRouter(registry, resolver, broadcaster, entry)
	return NewHub(registry, rt, broadcaster, entry), registry
}

func TestAttach_AcksWithSessionID(t *testing.T) {
	h, registry := newTestHub()

	conn := &recordConn{}
	sessionID := h.Attach(conn)
	if sessionID != "s_1" {
		t.Errorf("first session ID = %q, want s_1", sessionID)
	}

	envs := conn.envelopes()
	if len(envs) != 1 || envs[0].Kind != types.KindRegisterAck || envs[0].SessionID != sessionID {
		t.Errorf("ack = %+v, want register_ack with %s", envs, sessionID)
	}
	if registry.Len() != 1 {
		t.Errorf("registry Len = %d, want 1", registry.Len())
	}
}

func TestDispatch_MalformedInputIsDroppedNotFatal(t *testing.T) {
	h, registry := newTestHub()

	conn := &recordConn{}
	sessionID := h.Attach(conn)
	before := len(conn.envelopes())

	for _, raw := range []string{`{{{`, `{}`, `{"kind":"teleport"}`, `{"kind":"register"}`} {
		h.Dispatch(context.Background(), sessionID, []byte(raw))
	}

	if got, ok := registry.BySession(sessionID); !ok || got.Registered() {
		t.Errorf("session state after garbage = %+v, %v; want live and provisional", got, ok)
	}
	if len(conn.envelopes()) != before {
		t.Error("dropped envelope still produced a reply")
	}

	// The connection keeps working afterwards.
	h.Dispatch(context.Background(), sessionID, []byte(`{"kind":"register","userId":"u42"}`))
	if got, _ := registry.BySession(sessionID); !got.Registered() {
		t.Error("valid register after garbage did not stick")
	}
}

func TestDetach_RegisteredBroadcastsUserLeft(t *testing.T) {
	h, _ := newTestHub()

	annConn, beaConn := &recordConn{}, &recordConn{}
	annID := h.Attach(annConn)
	h.Attach(beaConn)
	h.Dispatch(context.Background(), annID, []byte(`{"kind":"register","userId":"u42"}`))

	h.Detach(annID)

	var left *types.Envelope
	for _, env := range beaConn.envelopes() {
		if env.Kind == types.KindUserLeft {
			left = env
		}
	}
	if left == nil {
		t.Fatal("no user_left delivered to the remaining peer")
	}
	if left.SessionID != annID || left.IdentityID != "u42" || left.Name != "Ann" {
		t.Errorf("user_left = %+v", left)
	}
}

func TestDetach_ProvisionalIsSilent(t *testing.T) {
	h, registry := newTestHub()

	provConn, otherConn := &recordConn{}, &recordConn{}
	provID := h.Attach(provConn)
	h.Attach(otherConn)
	before := len(otherConn.envelopes())

	h.Detach(provID)

	if len(otherConn.envelopes()) != before {
		t.Error("provisional detach produced a broadcast")
	}
	if registry.Len() != 1 {
		t.Errorf("registry Len = %d, want 1", registry.Len())
	}
}

func TestDetach_UnknownSessionIsNoop(t *testing.T) {
	h, _ := newTestHub()
	h.Detach("s_404") // must not panic or broadcast
}
