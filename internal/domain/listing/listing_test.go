package listing

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staynest/service-booking/internal/common/domain"
)

func TestNewListingValidation(t *testing.T) {
	_, err := NewListing(uuid.Nil, "Loft", "", 2, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = NewListing(uuid.New(), "Loft", "", 0, decimal.NewFromInt(50))
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	_, err = NewListing(uuid.New(), "Loft", "", 2, decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)

	l, err := NewListing(uuid.New(), "Loft", "", 2, decimal.RequireFromString("49.999"))
	require.NoError(t, err)
	assert.True(t, l.IsActive())
	assert.Equal(t, "50.00", l.NightlyRate().StringFixed(2))
}

func TestUpdateIsPartial(t *testing.T) {
	l, err := NewListing(uuid.New(), "Loft", "city centre", 2, decimal.NewFromInt(50))
	require.NoError(t, err)

	rate := decimal.NewFromInt(70)
	require.NoError(t, l.Update("", "", 4, &rate, nil))

	assert.Equal(t, "Loft", l.Title())
	assert.Equal(t, 4, l.MaxStayers())
	assert.True(t, rate.Equal(l.NightlyRate()))
	assert.Equal(t, int64(2), l.Version())
}

type stubRepo struct {
	Repository
	listing *Listing
}

func (s stubRepo) FindByID(_ context.Context, id uuid.UUID) (*Listing, error) {
	if s.listing == nil || s.listing.ID() != id {
		return nil, domain.NewNotFoundError("Listing", id.String())
	}
	return s.listing, nil
}

func TestRepositoryLookup(t *testing.T) {
	l, err := NewListing(uuid.New(), "Loft", "", 2, decimal.NewFromInt(50))
	require.NoError(t, err)
	lookup := NewRepositoryLookup(stubRepo{listing: l})

	got, err := lookup.GetActiveListing(context.Background(), l.ID())
	require.NoError(t, err)
	assert.Equal(t, l.ID(), got.ID())

	_, err = lookup.GetActiveListing(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrListingNotAvailable)

	l.Deactivate()
	_, err = lookup.GetActiveListing(context.Background(), l.ID())
	assert.ErrorIs(t, err, domain.ErrListingNotAvailable)
}
