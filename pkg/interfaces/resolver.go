package interfaces

import (
	"context"
	"errors"

	"rendezvous/pkg/types"
)

// ErrIdentityNotFound reports that an opaque identifier does not map to any
// durable identity. Any other resolver error means the backing store is
// unavailable, not that the identifier is bad.
var ErrIdentityNotFound = errors.New("identity not found")

// IdentityResolver maps an opaque user identifier to a durable identity
// record. It is the only external dependency the relay may block on.
type IdentityResolver interface {
	Resolve(ctx context.Context, opaqueID string) (*types.Identity, error)
}
