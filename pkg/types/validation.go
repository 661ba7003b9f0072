package types

import "encoding/json"

// ParseEnvelope decodes and validates one inbound wire message. Only
// client-sendable kinds pass; server-originated kinds arriving from a client
// are treated as unrecognized.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, ErrMalformedEnvelope
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Validate checks the closed kind enumeration and the per-kind required
// fields.
func (e *Envelope) Validate() error {
	switch e.Kind {
	case "":
		return ErrMissingKind
	case KindRegister:
		if e.UserID == "" {
			return ErrMissingUserID
		}
	case KindPresenceQuery:
		// No required fields.
	case KindSignal:
		if e.Target == "" {
			return ErrMissingTarget
		}
		if len(e.Data) == 0 {
			return ErrMissingData
		}
	case KindAddressExchange:
		if e.Target == "" {
			return ErrMissingTarget
		}
		if e.Address == "" {
			return ErrMissingAddress
		}
	case KindPeerRequest, KindPeerResponse:
		if e.Target == "" {
			return ErrMissingTarget
		}
	default:
		return ErrUnknownKind
	}
	return nil
}
