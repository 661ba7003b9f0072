package types

import "errors"

// Parse-boundary errors. All of them mean "log and drop": a malformed
// envelope never reaches the router and never terminates the connection.
var (
	ErrMalformedEnvelope = errors.New("envelope is not a valid JSON object")
	ErrUnknownKind       = errors.New("unrecognized envelope kind")
	ErrMissingKind       = errors.New("envelope kind is required")
	ErrMissingUserID     = errors.New("register requires userId")
	ErrMissingTarget     = errors.New("point-to-point envelope requires target")
	ErrMissingAddress    = errors.New("address_exchange requires address")
	ErrMissingData       = errors.New("signaling envelope requires data")
)
