// Package database defines the storage contract for enrolled identities and
// the shared types the backends implement it with.
package database

import (
	"context"
	"errors"
)

// ErrDuplicateIdentity is returned by Create when the identity key is already
// enrolled. Uniqueness is enforced by the backend's unique index, so
// concurrent creates for the same key yield exactly one winner.
var ErrDuplicateIdentity = errors.New("identity key already exists")

// IdentityReader provides read-only access to enrolled identities.
type IdentityReader interface {
	// Get retrieves an identity by key, returns nil if not found
	Get(ctx context.Context, identityKey string) (*Identity, error)
	// Has checks if an identity exists for the given key
	Has(ctx context.Context, identityKey string) (bool, error)
	// Count returns the total number of enrolled identities
	Count(ctx context.Context) (int, error)
	// List returns all enrolled identities, used to rebuild the
	// identification index on startup
	List(ctx context.Context) ([]Identity, error)
}

// IdentityRepository provides full access to enrolled identities.
type IdentityRepository interface {
	IdentityReader

	// Create persists a new identity. Returns ErrDuplicateIdentity when the
	// key is already enrolled; it never overwrites an existing record.
	Create(ctx context.Context, identity *Identity) error

	// SetVerified updates the auxiliary verified flag. This is the only
	// mutation allowed after creation.
	SetVerified(ctx context.Context, identityKey string, verified bool) error
}
