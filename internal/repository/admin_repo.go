package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Fraol-12/WhisperBox/internal/db"
	"github.com/Fraol-12/WhisperBox/internal/model"
)

type AdminRepo struct {
	pool *pgxpool.Pool
	timeouts
}

func NewAdminRepo(pool *pgxpool.Pool, timeout time.Duration) *AdminRepo {
	return &AdminRepo{pool: pool, timeouts: timeouts{d: timeout}}
}

// FindByEmail looks an admin up by normalized email.
func (r *AdminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	var a model.Admin
	var department string
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, name, department, email, password_hash, created_at
		FROM admins
		WHERE lower(email) = $1`, model.NormalizeEmail(email)).Scan(
		&a.ID, &a.Name, &department, &a.Email, &a.PasswordHash, &a.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("find admin: %w", classify(err))
	}
	a.Department = model.Department(department)
	return &a, nil
}

// Upsert creates the admin or, if the email is taken by an admin of the
// same department, replaces its name and password hash. A department is
// fixed at creation: an existing email in another department is left
// untouched and reported as ErrDuplicate on db.ConstraintAdminEmail.
// a.ID is filled in from the stored row.
func (r *AdminRepo) Upsert(ctx context.Context, a *model.Admin) error {
	ctx, cancel := r.with(ctx)
	defer cancel()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO admins (name, department, email, password_hash)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT ((lower(email))) DO UPDATE
		SET name = EXCLUDED.name,
		    password_hash = EXCLUDED.password_hash
		WHERE admins.department = EXCLUDED.department
		RETURNING id::text, created_at`,
		a.Name, string(a.Department), model.NormalizeEmail(a.Email), a.PasswordHash,
	).Scan(&a.ID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("upsert admin: %w", &ConstraintError{Constraint: db.ConstraintAdminEmail, Err: ErrDuplicate})
	}
	if err != nil {
		return fmt.Errorf("upsert admin: %w", classify(err))
	}
	a.Email = model.NormalizeEmail(a.Email)
	return nil
}

// DeleteAll removes every admin. Used by the seed tool's reset mode.
func (r *AdminRepo) DeleteAll(ctx context.Context) (int64, error) {
	ctx, cancel := r.with(ctx)
	defer cancel()

	tag, err := r.pool.Exec(ctx, `DELETE FROM admins`)
	if err != nil {
		return 0, fmt.Errorf("delete admins: %w", classify(err))
	}
	return tag.RowsAffected(), nil
}
