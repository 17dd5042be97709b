package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/apexlens/backoffice/internal/domain"
)

// SQLSTATE codes the repos care about.
const (
	codeUniqueViolation     = "23505"
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
)

// MapError translates driver errors into domain sentinels so callers above
// the adapter never import pgx. Context cancellation and deadline errors are
// wrapped but keep their own identity.
func MapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	wrap := func(sentinel error) error {
		return fmt.Errorf("%s %s: %w", entity, id, sentinel)
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return wrap(err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return wrap(domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeUniqueViolation:
			return wrap(domain.ErrAlreadyExists)
		case codeForeignKeyViolation:
			// The referenced row is gone; to the caller that is a missing
			// entity, not a constraint detail.
			return wrap(domain.ErrNotFound)
		case codeCheckViolation:
			return wrap(domain.ErrValidation)
		}
	}

	return wrap(err)
}
