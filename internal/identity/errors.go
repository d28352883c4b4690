package identity

import "errors"

// Service errors. The web layer maps these to HTTP status codes; validation
// errors from the descriptor package propagate through Enroll and Login
// unchanged.
var (
	// ErrMissingField means a required request field was absent
	ErrMissingField = errors.New("missing required field")
	// ErrUnknownIdentity means no record exists for the identity key
	ErrUnknownIdentity = errors.New("unknown identity")
	// ErrNoMatch means the submitted descriptor did not match the enrolled one
	ErrNoMatch = errors.New("face does not match")
)
