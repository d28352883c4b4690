// Package mariadb provides a MariaDB identity storage backend as an
// alternative to PostgreSQL. Descriptors are stored as JSON text since
// MariaDB has no vector column type.
package mariadb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/balasai14/multi-face-reg/internal/database"
)

// mysqlDuplicateEntry is the MySQL/MariaDB error number for duplicate keys.
const mysqlDuplicateEntry = 1062

// Pool manages a MariaDB connection pool.
type Pool struct {
	db *sql.DB
}

// NewPool creates a new MariaDB connection pool.
func NewPool(dsn string) (*Pool, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	// Timestamps scan into time.Time only with ParseTime enabled.
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MariaDB DSN: %w", err)
	}
	cfg.ParseTime = true
	// RowsAffected must count matched rows, not changed rows, so a
	// same-value UPDATE is not mistaken for a missing record.
	cfg.ClientFoundRows = true

	db, err := sql.Open("mysql", cfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	return &Pool{db: db}, nil
}

// Close closes the connection pool.
func (p *Pool) Close() error {
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}

// Migrate creates the identities table if it does not exist.
func (p *Pool) Migrate(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS identities (
			id CHAR(36) PRIMARY KEY,
			identity_key VARCHAR(255) NOT NULL UNIQUE,
			display_name VARCHAR(255) NOT NULL,
			descriptor TEXT NOT NULL,
			verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("create identities table: %w", err)
	}
	return nil
}

// IdentityRepository provides MariaDB-backed identity storage.
type IdentityRepository struct {
	pool *Pool
}

// NewIdentityRepository creates a new MariaDB identity repository.
func NewIdentityRepository(pool *Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create persists a new identity. The unique index on identity_key keeps
// concurrent enrollments down to exactly one winner.
func (r *IdentityRepository) Create(ctx context.Context, identity *database.Identity) error {
	descriptorJSON, err := json.Marshal(identity.Descriptor)
	if err != nil {
		return fmt.Errorf("marshal descriptor: %w", err)
	}

	_, err = r.pool.db.ExecContext(ctx, `
		INSERT INTO identities (id, identity_key, display_name, descriptor, verified)
		VALUES (?, ?, ?, ?, ?)
	`, identity.ID, identity.IdentityKey, identity.DisplayName, string(descriptorJSON), identity.Verified)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return database.ErrDuplicateIdentity
		}
		return fmt.Errorf("create identity: %w", err)
	}
	return nil
}

// Get retrieves an identity by key, returns nil if not found.
func (r *IdentityRepository) Get(ctx context.Context, identityKey string) (*database.Identity, error) {
	row := r.pool.db.QueryRowContext(ctx, `
		SELECT id, identity_key, display_name, descriptor, verified, created_at, updated_at
		FROM identities
		WHERE identity_key = ?
	`, identityKey)

	identity, err := scanIdentity(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query identity: %w", err)
	}
	return identity, nil
}

// Has checks if an identity exists for the given key.
func (r *IdentityRepository) Has(ctx context.Context, identityKey string) (bool, error) {
	var exists bool
	err := r.pool.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM identities WHERE identity_key = ?)", identityKey).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check identity exists: %w", err)
	}
	return exists, nil
}

// Count returns the total number of enrolled identities.
func (r *IdentityRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM identities").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count identities: %w", err)
	}
	return count, nil
}

// List returns all enrolled identities, ordered by creation time.
func (r *IdentityRepository) List(ctx context.Context) ([]database.Identity, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, identity_key, display_name, descriptor, verified, created_at, updated_at
		FROM identities
		ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer rows.Close()

	var identities []database.Identity
	for rows.Next() {
		identity, err := scanIdentity(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan identity: %w", err)
		}
		identities = append(identities, *identity)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate identities: %w", err)
	}
	return identities, nil
}

// SetVerified updates the auxiliary verified flag.
func (r *IdentityRepository) SetVerified(ctx context.Context, identityKey string, verified bool) error {
	result, err := r.pool.db.ExecContext(ctx,
		"UPDATE identities SET verified = ? WHERE identity_key = ?", verified, identityKey)
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

// scanIdentity reads one identity row, decoding the JSON descriptor column.
func scanIdentity(scan func(dest ...any) error) (*database.Identity, error) {
	var identity database.Identity
	var descriptorJSON string

	if err := scan(
		&identity.ID,
		&identity.IdentityKey,
		&identity.DisplayName,
		&descriptorJSON,
		&identity.Verified,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(descriptorJSON), &identity.Descriptor); err != nil {
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}
	return &identity, nil
}
