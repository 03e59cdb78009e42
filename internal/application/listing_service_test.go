package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/common/domain"
	"github.com/staynest/service-booking/internal/repository/memory"
)

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) Invalidate(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func TestListingLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	cache := &mockInvalidator{}
	svc := NewListingService(store.Listings(), cache, zap.NewNop())
	owner := uuid.New()

	created, err := svc.CreateListing(ctx, owner, CreateListingRequest{
		Title:       "Cabin",
		MaxStayers:  3,
		NightlyRate: decimal.RequireFromString("75.5"),
	})
	require.NoError(t, err)
	assert.Equal(t, "75.50", created.NightlyRate)
	assert.True(t, created.IsActive)

	cache.On("Invalidate", mock.Anything, created.ID).Return(nil)

	rate := decimal.NewFromInt(90)
	updated, err := svc.UpdateListing(ctx, owner, created.ID, UpdateListingRequest{NightlyRate: &rate})
	require.NoError(t, err)
	assert.Equal(t, "90.00", updated.NightlyRate)
	assert.Equal(t, "Cabin", updated.Title)

	_, err = svc.UpdateListing(ctx, uuid.New(), created.ID, UpdateListingRequest{Title: "Mine now"})
	assert.ErrorIs(t, err, domain.ErrAccessDenied)

	require.NoError(t, svc.DeactivateListing(ctx, owner, created.ID))
	got, err := svc.GetListing(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	mine, err := svc.GetMyListings(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	cache.AssertNumberOfCalls(t, "Invalidate", 2)
}

func TestCreateListingValidation(t *testing.T) {
	svc := NewListingService(memory.NewStore().Listings(), nil, zap.NewNop())

	_, err := svc.CreateListing(context.Background(), uuid.New(), CreateListingRequest{Title: "Cabin", MaxStayers: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidRequest)
}
