package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_IsMatchesKind(t *testing.T) {
	err := fmt.Errorf("create booking: %w", NewBookingConflictError())

	assert.True(t, errors.Is(err, ErrBookingConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, KindBookingConflict, KindOf(err))
}

func TestKindOf_PlainErrorIsInternal(t *testing.T) {
	err := errors.New("connection reset")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.False(t, IsDomainError(err))
}

func TestAppError_UnwrapsCause(t *testing.T) {
	cause := errors.New("boom")
	err := &AppError{Kind: KindConflict, Message: "lost update", Err: cause}

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "lost update: boom", err.Error())
}

func TestNewPaginatedResult(t *testing.T) {
	res := NewPaginatedResult([]int{1, 2}, 21, 2, 10)

	assert.Equal(t, 3, res.TotalPages)
	assert.Equal(t, []int{1, 2}, res.Items)

	empty := NewPaginatedResult[int](nil, 0, 1, 20)
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Equal(t, 20, Offset(2, 20))
	assert.Equal(t, 0, Offset(0, 20))
}
