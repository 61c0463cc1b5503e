package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when an insert hits a unique constraint.
	ErrDuplicate = errors.New("duplicate")
	// ErrMissingParent is returned when an insert references a row that
	// does not exist.
	ErrMissingParent = errors.New("referenced row does not exist")
)

// ConstraintError wraps ErrDuplicate or ErrMissingParent with the name of
// the violated constraint.
type ConstraintError struct {
	Constraint string
	Err        error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Err, e.Constraint)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// ViolatedConstraint returns the constraint name carried by err, if any.
func ViolatedConstraint(err error) string {
	var ce *ConstraintError
	if errors.As(err, &ce) {
		return ce.Constraint
	}
	return ""
}

// classify maps driver errors onto the repository sentinels.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrDuplicate}
		case "23503":
			return &ConstraintError{Constraint: pgErr.ConstraintName, Err: ErrMissingParent}
		case "22P02":
			// invalid_text_representation, e.g. a malformed uuid
			return ErrNotFound
		}
	}
	return err
}

// timeouts bounds every store call so no request blocks on the database
// indefinitely.
type timeouts struct {
	d time.Duration
}

func (t timeouts) with(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.d)
}
