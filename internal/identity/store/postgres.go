package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civreg/internal/identity/models"
	"civreg/pkg/platform/sentinel"
)

// Postgres persists identities. Schema lives in migrations/001_init.sql.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (s *Postgres) Upsert(ctx context.Context, identity *models.Identity) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO identities (uid, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			role = EXCLUDED.role,
			updated_at = EXCLUDED.updated_at`,
		identity.UID, identity.Email, string(identity.Role), identity.CreatedAt, identity.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert identity: %w", err)
	}
	return nil
}

// CreateIfAbsent inserts the identity unless one already exists for the UID.
// On conflict only the email is refreshed; the stored role wins, so a racing
// first contact can never downgrade a provisioned superuser.
func (s *Postgres) CreateIfAbsent(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO identities (uid, email, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (uid) DO UPDATE SET
			email = EXCLUDED.email,
			updated_at = EXCLUDED.updated_at
		RETURNING uid, email, role, created_at, updated_at`,
		identity.UID, identity.Email, string(identity.Role), identity.CreatedAt, identity.UpdatedAt,
	)
	return scanIdentity(row)
}

func (s *Postgres) FindByUID(ctx context.Context, uid string) (*models.Identity, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT uid, email, role, created_at, updated_at
		FROM identities
		WHERE uid = $1`,
		uid,
	)
	identity, err := scanIdentity(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return identity, nil
}

func scanIdentity(row pgx.Row) (*models.Identity, error) {
	var identity models.Identity
	var role string
	if err := row.Scan(&identity.UID, &identity.Email, &role, &identity.CreatedAt, &identity.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan identity: %w", err)
	}
	identity.Role = models.Role(role)
	return &identity, nil
}
