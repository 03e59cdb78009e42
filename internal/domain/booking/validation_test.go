package booking

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/staynest/service-booking/internal/common/domain"
)

func TestValidateNotInPast(t *testing.T) {
	now := day("2024-06-10").Add(18 * time.Hour)

	assert.NoError(t, ValidateNotInPast(mustStay(t, "2024-06-10", "2024-06-12"), now))
	assert.ErrorIs(t, ValidateNotInPast(mustStay(t, "2024-06-09", "2024-06-12"), now), domain.ErrInvalidRequest)
}

func TestValidateStayers(t *testing.T) {
	assert.NoError(t, ValidateStayers(2, 2))
	assert.ErrorIs(t, ValidateStayers(3, 2), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateStayers(0, 2), domain.ErrInvalidRequest)
}

func TestValidateRequest(t *testing.T) {
	now := day("2024-06-10")
	stay := mustStay(t, "2024-06-11", "2024-06-12")

	assert.NoError(t, ValidateRequest(stay, 1, now))
	assert.ErrorIs(t, ValidateRequest(stay, -1, now), domain.ErrInvalidRequest)
}

func TestValidateRequestRejectsLongStays(t *testing.T) {
	now := day("2026-10-15")

	assert.NoError(t, ValidateRequest(mustStay(t, "2026-10-20", "2027-10-20"), 1, now))
	assert.ErrorIs(t, ValidateRequest(mustStay(t, "2026-10-20", "2027-10-21"), 1, now), domain.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateRequest(mustStay(t, "2026-10-20", "2400-10-20"), 1, now), domain.ErrInvalidRequest)
}

func TestValidateTotalPrice(t *testing.T) {
	assert.NoError(t, ValidateTotalPrice(MaxTotalPrice))
	assert.ErrorIs(t, ValidateTotalPrice(MaxTotalPrice.Add(decimal.RequireFromString("0.01"))), domain.ErrInvalidRequest)
}
