package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"civreg/internal/application/models"
	"civreg/pkg/platform/sentinel"
)

// Postgres persists applications. Schema lives in migrations/001_init.sql.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

const applicationColumns = `uid, full_name, dob, address, photo_ref, document_ref, status, artifact_ref, created_at, updated_at`

func (s *Postgres) Upsert(ctx context.Context, app *models.Application) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO applications (`+applicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (uid) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			dob = EXCLUDED.dob,
			address = EXCLUDED.address,
			photo_ref = EXCLUDED.photo_ref,
			document_ref = EXCLUDED.document_ref,
			status = EXCLUDED.status,
			artifact_ref = EXCLUDED.artifact_ref,
			updated_at = EXCLUDED.updated_at`,
		app.UID, app.FullName, app.DOB, app.Address, app.PhotoRef, app.DocumentRef,
		string(app.Status), app.ArtifactRef, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert application: %w", err)
	}
	return nil
}

func (s *Postgres) FindByUID(ctx context.Context, uid string) (*models.Application, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE uid = $1`, uid)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// List returns all applications in insertion order.
func (s *Postgres) List(ctx context.Context) ([]*models.Application, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+applicationColumns+` FROM applications ORDER BY created_at, uid`)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	return apps, nil
}

// Execute runs fn on the row locked with SELECT ... FOR UPDATE and commits
// only when fn succeeds. An error from fn rolls the transaction back, so a
// failed artifact generation never leaves a half-applied status change.
func (s *Postgres) Execute(ctx context.Context, uid string, fn func(app *models.Application) error) (*models.Application, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE uid = $1 FOR UPDATE`, uid)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}

	if err := fn(app); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE applications SET
			full_name = $2,
			dob = $3,
			address = $4,
			photo_ref = $5,
			document_ref = $6,
			status = $7,
			artifact_ref = $8,
			updated_at = $9
		WHERE uid = $1`,
		app.UID, app.FullName, app.DOB, app.Address, app.PhotoRef, app.DocumentRef,
		string(app.Status), app.ArtifactRef, app.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update application: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return app, nil
}

func scanApplication(row pgx.Row) (*models.Application, error) {
	var app models.Application
	var status string
	err := row.Scan(
		&app.UID, &app.FullName, &app.DOB, &app.Address, &app.PhotoRef,
		&app.DocumentRef, &status, &app.ArtifactRef, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan application: %w", err)
	}
	app.Status = models.Status(status)
	return &app, nil
}
