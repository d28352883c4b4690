// Package mock provides an in-memory implementation of the identity
// repository for unit tests and development serving.
package mock

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/balasai14/multi-face-reg/internal/database"
)

// IdentityRepository is an in-memory implementation of database.IdentityRepository.
type IdentityRepository struct {
	mu         sync.RWMutex
	identities map[string]*database.Identity

	// Error injection
	GetError         error
	HasError         error
	CountError       error
	ListError        error
	CreateError      error
	SetVerifiedError error
}

// NewIdentityRepository creates a new in-memory identity repository.
func NewIdentityRepository() *IdentityRepository {
	return &IdentityRepository{
		identities: make(map[string]*database.Identity),
	}
}

// Create persists a new identity, failing on key collision.
func (m *IdentityRepository) Create(ctx context.Context, identity *database.Identity) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.identities[identity.IdentityKey]; exists {
		return database.ErrDuplicateIdentity
	}

	stored := *identity
	stored.Descriptor = append([]float32(nil), identity.Descriptor...)
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	m.identities[identity.IdentityKey] = &stored
	return nil
}

// Get retrieves an identity by key, returns nil if not found.
func (m *IdentityRepository) Get(ctx context.Context, identityKey string) (*database.Identity, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	identity, ok := m.identities[identityKey]
	if !ok {
		return nil, nil
	}
	copied := *identity
	copied.Descriptor = append([]float32(nil), identity.Descriptor...)
	return &copied, nil
}

// Has checks if an identity exists for the given key.
func (m *IdentityRepository) Has(ctx context.Context, identityKey string) (bool, error) {
	if m.HasError != nil {
		return false, m.HasError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.identities[identityKey]
	return ok, nil
}

// Count returns the total number of enrolled identities.
func (m *IdentityRepository) Count(ctx context.Context) (int, error) {
	if m.CountError != nil {
		return 0, m.CountError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.identities), nil
}

// List returns all enrolled identities, ordered by creation time.
func (m *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	identities := make([]database.Identity, 0, len(m.identities))
	for _, identity := range m.identities {
		copied := *identity
		copied.Descriptor = append([]float32(nil), identity.Descriptor...)
		identities = append(identities, copied)
	}
	sort.Slice(identities, func(i, j int) bool {
		return identities[i].CreatedAt.Before(identities[j].CreatedAt)
	})
	return identities, nil
}

// SetVerified updates the auxiliary verified flag.
func (m *IdentityRepository) SetVerified(ctx context.Context, identityKey string, verified bool) error {
	if m.SetVerifiedError != nil {
		return m.SetVerifiedError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	identity, ok := m.identities[identityKey]
	if !ok {
		return fmt.Errorf("identity %q not found", identityKey)
	}
	identity.Verified = verified
	identity.UpdatedAt = time.Now()
	return nil
}
