package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"

	"github.com/balasai14/multi-face-reg/internal/database"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pqUniqueViolation = "23505"

// IdentityRepository provides PostgreSQL-backed identity storage.
// The descriptor is stored in a pgvector column.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new PostgreSQL identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create persists a new identity. The unique index on identity_key makes the
// insert atomic with respect to concurrent enrollments: exactly one wins, the
// rest get database.ErrDuplicateIdentity.
func (r *IdentityRepository) Create(ctx context.Context, identity *database.Identity) error {
	query := `
		INSERT INTO identities (id, identity_key, display_name, descriptor, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`

	_, err := r.pool.Exec(ctx, query,
		identity.ID,
		identity.IdentityKey,
		identity.DisplayName,
		pgvector.NewVector(identity.Descriptor),
		identity.Verified,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return database.ErrDuplicateIdentity
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

// Get retrieves an identity by key, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, identityKey string) (*database.Identity, error) {
	query := `
		SELECT id, identity_key, display_name, descriptor, verified, created_at, updated_at
		FROM identities
		WHERE identity_key = $1
	`

	var identity database.Identity
	var vec pgvector.Vector

	err := r.pool.QueryRow(ctx, query, identityKey).Scan(
		&identity.ID,
		&identity.IdentityKey,
		&identity.DisplayName,
		&vec,
		&identity.Verified,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}

	identity.Descriptor = vec.Slice()
	return &identity, nil
}

// Has checks if an identity exists for the given key.
func (r *IdentityRepository) Has(ctx context.Context, identityKey string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM identities WHERE identity_key = $1)", identityKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}
	return exists, nil
}

// Count returns the total number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// List returns all enrolled identities, ordered by creation time.
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	query := `
		SELECT id, identity_key, display_name, descriptor, verified, created_at, updated_at
		FROM identities
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		var identity database.Identity
		var vec pgvector.Vector
		if err := rows.Scan(
			&identity.ID,
			&identity.IdentityKey,
			&identity.DisplayName,
			&vec,
			&identity.Verified,
			&identity.CreatedAt,
			&identity.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identity.Descriptor = vec.Slice()
		identities = append(identities, identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// SetVerified updates the auxiliary verified flag.
func (r *IdentityRepository) SetVerified(ctx context.Context, identityKey string, verified bool) error {
	result, err := r.pool.Exec(ctx,
		"UPDATE identities SET verified = $1, updated_at = NOW() WHERE identity_key = $2",
		verified, identityKey)
	if err != nil {
		return fmt.Errorf("set verified: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("identity %q not found", identityKey)
	}
	return nil
}
