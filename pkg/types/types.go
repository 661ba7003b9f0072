package types

import "encoding/json"

// Kind discriminates wire envelopes. The set is closed: anything outside it
// is rejected at the parse boundary, never deep in handler logic.
type Kind string

// Client-sendable kinds.
const (
	KindRegister        Kind = "register"
	KindPresenceQuery   Kind = "presence_query"
	KindSignal          Kind = "signal"
	KindAddressExchange Kind = "address_exchange"
	KindPeerRequest     Kind = "peer_request"
	KindPeerResponse    Kind = "peer_response"
)

// Server-originated kinds.
const (
	KindRegisterAck Kind = "register_ack"
	KindOnlineUsers Kind = "online_users"
	KindUserLeft    Kind = "user_left"
	KindError       Kind = "error"
)

// Identity is a durable identity record resolved from the user store.
type Identity struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// OnlineUser is one entry of the public presence list. Provisional sessions
// never appear here.
type OnlineUser struct {
	SessionID  string `json:"sessionId"`
	IdentityID string `json:"identityId"`
	Name       string `json:"name,omitempty"`
}

// Envelope is the single wire unit: one JSON object per WebSocket text
// message. Fields are populated per kind; unused fields are omitted. Data is
// kept as raw JSON so signaling payloads pass through byte-for-byte.
type Envelope struct {
	Kind Kind `json:"kind"`

	// Target names the recipient of a point-to-point kind. It may be a
	// session ID or an identity ID; routing resolves session ID first.
	Target string `json:"target,omitempty"`

	// From is set by the server on forwarded envelopes and always carries
	// the sender's session ID.
	From string `json:"from,omitempty"`

	// UserID is the opaque identifier carried by a register envelope.
	UserID string `json:"userId,omitempty"`

	// Address is the advisory network address carried by address_exchange.
	Address string `json:"address,omitempty"`

	// Data is the opaque payload of signal, peer_request and peer_response.
	Data json.RawMessage `json:"data,omitempty"`

	// Message is the human-readable text of an error envelope.
	Message string `json:"message,omitempty"`

	// Server-originated presence fields.
	SessionID  string       `json:"sessionId,omitempty"`
	IdentityID string       `json:"identityId,omitempty"`
	Name       string       `json:"name,omitempty"`
	Users      []OnlineUser `json:"users,omitempty"`
}

// NewRegisterAck builds the envelope sent once, immediately after accept,
// carrying the session ID the client can use to address itself.
func NewRegisterAck(sessionID string) *Envelope {
	return &Envelope{Kind: KindRegisterAck, SessionID: sessionID}
}

// NewOnlineUsers builds a presence snapshot envelope.
func NewOnlineUsers(users []OnlineUser) *Envelope {
	if users == nil {
		users = []OnlineUser{}
	}
	return &Envelope{Kind: KindOnlineUsers, Users: users}
}

// NewUserLeft builds the envelope broadcast when a session is removed,
// carrying its last known public fields.
func NewUserLeft(sessionID, identityID, name string) *Envelope {
	return &Envelope{
		Kind:       KindUserLeft,
		SessionID:  sessionID,
		IdentityID: identityID,
		Name:       name,
	}
}

// NewError builds a typed error envelope. target is the offending target
// ref where known, empty otherwise.
func NewError(message, target string) *Envelope {
	return &Envelope{Kind: KindError, Message: message, Target: target}
}

// NewForward builds the transformed envelope delivered to the target of a
// point-to-point kind. from is the sender's session ID; the payload is
// passed through unmodified.
func NewForward(kind Kind, from string, data json.RawMessage) *Envelope {
	return &Envelope{Kind: kind, From: from, Data: data}
}

// NewAddressForward builds the address_exchange envelope delivered to the
// target.
func NewAddressForward(from, address string) *Envelope {
	return &Envelope{Kind: KindAddressExchange, From: from, Address: address}
}
