package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/staynest/service-booking/internal/common/domain"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		code string
		want error
	}{
		{pgExclusionViolation, domain.ErrBookingConflict},
		{pgSerializationFailure, domain.ErrConflict},
		{pgDeadlockDetected, domain.ErrConflict},
		{pgUniqueViolation, domain.ErrConflict},
		{pgForeignKeyViolation, domain.ErrNotFound},
		{pgCheckViolation, domain.ErrInvalidRequest},
		{pgNumericOutOfRange, domain.ErrInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: tt.code, ConstraintName: "c"})
			assert.ErrorIs(t, translateError(wrapped), tt.want)
		})
	}
}

func TestTranslateErrorPassesThroughOthers(t *testing.T) {
	plain := errors.New("connection reset")
	assert.Same(t, plain, translateError(plain))

	other := &pgconn.PgError{Code: "42P01"}
	assert.Equal(t, domain.KindInternal, domain.KindOf(translateError(other)))
}
