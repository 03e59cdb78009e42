package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/common/kafka"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
	"github.com/staynest/service-booking/internal/repository/memory"
)

// fixedNow is 2024-06-10 09:00 UTC.
var fixedNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error {
	args := m.Called(ctx, topic, key, ce)
	return args.Error(0)
}

func (m *mockPublisher) eventTypes() []string {
	var types []string
	for _, call := range m.Calls {
		if call.Method == "PublishEvent" {
			types = append(types, call.Arguments.Get(3).(kafka.CloudEvent).Type)
		}
	}
	return types
}

type harness struct {
	store     *memory.Store
	service   *BookingService
	publisher *mockPublisher
	listing   *listingDomain.Listing
	owner     bookingDomain.Actor
	tenant    bookingDomain.Actor
	admin     bookingDomain.Actor
	clock     *time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := memory.NewStore()
	owner := bookingDomain.NewUserActor(uuid.New(), false)
	listing, err := listingDomain.NewListing(owner.ID, "Sea view flat", "", 4, decimal.RequireFromString("100.00"))
	require.NoError(t, err)
	require.NoError(t, store.Listings().Save(context.Background(), listing))

	publisher := &mockPublisher{}
	publisher.On("PublishEvent", mock.Anything, TopicBookingEvents, mock.Anything, mock.Anything).Return(nil)

	clock := fixedNow
	service := NewBookingService(
		store,
		store.Bookings(),
		store.History(),
		listingDomain.NewRepositoryLookup(store.Listings()),
		bookingDomain.NewNightlyPricingStrategy(),
		publisher,
		zap.NewNop(),
	).WithClock(func() time.Time { return clock })

	return &harness{
		store:     store,
		service:   service,
		publisher: publisher,
		listing:   listing,
		owner:     owner,
		tenant:    bookingDomain.NewUserActor(uuid.New(), false),
		admin:     bookingDomain.NewUserActor(uuid.New(), true),
		clock:     &clock,
	}
}

func (h *harness) request(in, out string, stayers int) CreateBookingRequest {
	return CreateBookingRequest{ListingID: h.listing.ID(), CheckIn: in, CheckOut: out, Stayers: stayers}
}

func (h *harness) book(t *testing.T, in, out string) *BookingDTO {
	t.Helper()
	dto, err := h.service.CreateBooking(context.Background(), h.tenant, h.request(in, out, 2))
	require.NoError(t, err)
	return dto
}

func (h *harness) history(t *testing.T, id uuid.UUID) []bookingDomain.StatusChange {
	t.Helper()
	rows, err := h.store.History().ListByBookingID(context.Background(), id)
	require.NoError(t, err)
	return rows
}
