package router

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"rendezvous/internal/presence"
	"rendezvous/internal/websocket"
	"rendezvous/pkg/interfaces"
	"rendezvous/pkg/types"
)

// Error envelope texts. One uniform policy for every unresolvable identity
// or target: reply with a typed error, never drop silently.
const (
	MsgNotRegistered       = "register before sending peer-to-peer envelopes"
	MsgTargetUnavailable   = "target unavailable"
	MsgUnknownUser         = "unknown user"
	MsgRegisterUnavailable = "registration temporarily unavailable"
)

// Router classifies inbound envelopes by kind and either mutates registry
// state, forwards a transformed envelope to a target session, or replies to
// the sender with a typed error. It never inspects signaling payloads beyond
// pass-through.
type Router struct {
	registry *websocket.Registry
	resolver interfaces.IdentityResolver
	presence *presence.Broadcaster
	log      *logrus.Entry
}

// NewRouter creates a message router.
func NewRouter(registry *websocket.Registry, resolver interfaces.IdentityResolver, presence *presence.Broadcaster, log *logrus.Entry) *Router {
	return &Router{
		registry: registry,
		resolver: resolver,
		presence: presence,
		log:      log,
	}
}

// Route processes one validated envelope from the given session. It is
// called on the session's read goroutine, so envelopes from the same sender
// reach shared state in the order received.
func (r *Router) Route(ctx context.Context, sessionID string, env *types.Envelope) {
	switch env.Kind {
	case types.KindRegister:
		r.handleRegister(ctx, sessionID, env)
	case types.KindPresenceQuery:
		r.presence.SendOnline(sessionID)
	case types.KindAddressExchange:
		r.handleAddressExchange(sessionID, env)
	case types.KindSignal:
		r.handleForward(sessionID, env, true)
	case types.KindPeerRequest, types.KindPeerResponse:
		r.handleForward(sessionID, env, false)
	default:
		// Unreachable: the parse boundary rejects unrecognized kinds.
		r.log.WithField("kind", env.Kind).Warn("unroutable envelope kind")
	}
}

// handleRegister resolves the opaque identifier and promotes the session to
// Registered. If the session closed while the resolver call was outstanding,
// the result is discarded: no registry mutation, no broadcast.
func (r *Router) handleRegister(ctx context.Context, sessionID string, env *types.Envelope) {
	identity, err := r.resolver.Resolve(ctx, env.UserID)
	if err != nil {
		if errors.Is(err, interfaces.ErrIdentityNotFound) {
			r.log.WithFields(logrus.Fields{
				"session": sessionID,
				"userId":  env.UserID,
			}).Warn("register with unknown identifier")
			r.sendError(sessionID, MsgUnknownUser, env.UserID)
		} else {
			r.log.WithField("session", sessionID).WithError(err).Error("identity resolver unavailable")
			r.sendError(sessionID, MsgRegisterUnavailable, "")
		}
		return
	}

	sess, ok := r.registry.UpdateIdentity(sessionID, *identity)
	if !ok {
		r.log.WithField("session", sessionID).Debug("session closed during registration")
		return
	}

	r.log.WithFields(logrus.Fields{
		"session":  sess.ID,
		"identity": identity.ID,
		"name":     identity.Name,
	}).Info("session registered")

	r.presence.BroadcastOnline()
}

// handleAddressExchange persists the sender's advisory address, then forwards
// it to the target. The address is never used for routing.
func (r *Router) handleAddressExchange(sessionID string, env *types.Envelope) {
	sender, ok := r.registry.BySession(sessionID)
	if !ok {
		return
	}
	if !sender.Registered() {
		r.sendError(sessionID, MsgNotRegistered, "")
		return
	}

	target, ok := r.resolveTarget(env.Target)
	if !ok {
		r.sendError(sessionID, MsgTargetUnavailable, env.Target)
		return
	}

	r.registry.SetNetworkAddress(sender.ID, env.Address)
	r.deliver(target, types.NewAddressForward(sender.ID, env.Address))
}

// handleForward relays a point-to-point envelope to its target with the
// sender's session ID attached and the payload untouched.
func (r *Router) handleForward(sessionID string, env *types.Envelope, requireRegistered bool) {
	sender, ok := r.registry.BySession(sessionID)
	if !ok {
		// In-flight envelope racing the close; drop.
		return
	}
	if requireRegistered && !sender.Registered() {
		r.sendError(sessionID, MsgNotRegistered, "")
		return
	}

	target, ok := r.resolveTarget(env.Target)
	if !ok {
		r.sendError(sessionID, MsgTargetUnavailable, env.Target)
		return
	}

	r.deliver(target, types.NewForward(env.Kind, sender.ID, env.Data))
}

// resolveTarget applies the ordered two-step target policy: try the ref as a
// session ID first, then as an identity ID. First match wins.
func (r *Router) resolveTarget(ref string) (websocket.Session, bool) {
	if s, ok := r.registry.BySession(ref); ok {
		return s, true
	}
	return r.registry.ByIdentity(ref)
}

func (r *Router) deliver(target websocket.Session, env *types.Envelope) {
	if err := target.Conn.WriteJSON(env); err != nil {
		r.log.WithField("target", target.ID).WithError(err).Debug("forward failed")
	}
}

func (r *Router) sendError(sessionID, message, targetRef string) {
	r.presence.SendOne(sessionID, types.NewError(message, targetRef))
}
