// Package identity implements enrollment and descriptor-based verification
// of enrolled people. Each call is an independent unit of work; the only
// shared mutable state is the identity store, whose uniqueness guarantee is
// delegated to the repository's atomic create.
package identity

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/balasai14/multi-face-reg/internal/auth"
	"github.com/balasai14/multi-face-reg/internal/database"
	"github.com/balasai14/multi-face-reg/internal/descriptor"
)

// Profile is the minimal public view of an enrolled identity.
// It never carries the stored descriptor.
type Profile struct {
	IdentityKey string `json:"identityKey"`
	DisplayName string `json:"displayName"`
	Verified    bool   `json:"verified"`
}

// LoginResult carries a successful verification outcome.
type LoginResult struct {
	Token string
	User  Profile
}

// Service composes the descriptor validator, identity store, matcher and
// token issuer into the enrollment and verification flows.
type Service struct {
	repo      database.IdentityRepository
	validator *descriptor.Validator
	matcher   *descriptor.Matcher
	issuer    *auth.Issuer
}

// NewService creates an identity service.
func NewService(repo database.IdentityRepository, validator *descriptor.Validator, matcher *descriptor.Matcher, issuer *auth.Issuer) *Service {
	return &Service{
		repo:      repo,
		validator: validator,
		matcher:   matcher,
		issuer:    issuer,
	}
}

// Enroll registers a new identity and returns the stored record. The
// descriptor is persisted verbatim; enrollment deduplicates by declared key
// only, never by face similarity.
func (s *Service) Enroll(ctx context.Context, identityKey, displayName string, rawDescriptor json.RawMessage) (*database.Identity, error) {
	if identityKey == "" || displayName == "" || len(rawDescriptor) == 0 {
		return nil, fmt.Errorf("%w: identity key, display name and descriptor are required", ErrMissingField)
	}

	desc, err := s.validator.Parse(rawDescriptor)
	if err != nil {
		return nil, err
	}

	record := &database.Identity{
		ID:          uuid.New().String(),
		IdentityKey: identityKey,
		DisplayName: displayName,
		Descriptor:  desc,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		// ErrDuplicateIdentity passes through for the caller to map.
		return nil, err
	}

	return record, nil
}

// Login verifies a descriptor against the enrolled record and issues a
// session token on success. Unknown keys and failed matches are distinct
// errors so callers can tell enrollment problems from capture problems.
func (s *Service) Login(ctx context.Context, identityKey string, rawDescriptor json.RawMessage) (*LoginResult, error) {
	if identityKey == "" || len(rawDescriptor) == 0 {
		return nil, fmt.Errorf("%w: identity key and descriptor are required", ErrMissingField)
	}

	desc, err := s.validator.Parse(rawDescriptor)
	if err != nil {
		return nil, err
	}

	record, err := s.repo.Get(ctx, identityKey)
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	if record == nil {
		return nil, ErrUnknownIdentity
	}

	if !s.matcher.IsMatch(desc, record.Descriptor) {
		return nil, ErrNoMatch
	}

	// A successful match marks the enrollment as verified. The flag is
	// written once; repeat logins must not depend on the store accepting
	// a same-value update.
	if !record.Verified {
		if err := s.repo.SetVerified(ctx, record.IdentityKey, true); err != nil {
			return nil, fmt.Errorf("marking identity verified: %w", err)
		}
	}

	token, err := s.issuer.Issue(record.IdentityKey)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &LoginResult{
		Token: token,
		User: Profile{
			IdentityKey: record.IdentityKey,
			DisplayName: record.DisplayName,
			Verified:    true,
		},
	}, nil
}

// Lookup returns the public profile for an enrolled identity.
func (s *Service) Lookup(ctx context.Context, identityKey string) (*Profile, error) {
	if identityKey == "" {
		return nil, fmt.Errorf("%w: identity key is required", ErrMissingField)
	}

	record, err := s.repo.Get(ctx, identityKey)
	if err != nil {
		return nil, fmt.Errorf("looking up identity: %w", err)
	}
	if record == nil {
		return nil, ErrUnknownIdentity
	}

	return &Profile{
		IdentityKey: record.IdentityKey,
		DisplayName: record.DisplayName,
		Verified:    record.Verified,
	}, nil
}

// Count returns the number of enrolled identities.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}
