package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/staynest/service-booking/internal/common/domain"
)

// Postgres SQLSTATE codes the repositories translate.
const (
	pgExclusionViolation   = "23P01"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgUniqueViolation      = "23505"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgNumericOutOfRange    = "22003"
)

// translateError maps constraint violations onto domain errors and leaves
// everything else untouched.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgExclusionViolation:
		return domain.NewBookingConflictError()
	case pgSerializationFailure, pgDeadlockDetected:
		return &domain.AppError{Kind: domain.KindConflict, Message: "concurrent modification, retry the request", Err: err}
	case pgUniqueViolation:
		return domain.NewConflictError("record already exists")
	case pgForeignKeyViolation:
		return &domain.AppError{Kind: domain.KindNotFound, Message: "referenced record does not exist", Err: err}
	case pgCheckViolation:
		return &domain.AppError{Kind: domain.KindInvalidRequest, Message: "value violates " + pgErr.ConstraintName, Err: err}
	case pgNumericOutOfRange:
		return &domain.AppError{Kind: domain.KindInvalidRequest, Message: "numeric value out of range", Err: err}
	default:
		return err
	}
}
