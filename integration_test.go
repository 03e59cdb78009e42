//go:build integration

package main_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/application"
	"github.com/staynest/service-booking/internal/common/domain"
	"github.com/staynest/service-booking/internal/common/kafka"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	bookingEvents "github.com/staynest/service-booking/internal/events"
	"github.com/staynest/service-booking/internal/repository"
)

func futureDate(days int) string {
	return bookingDomain.DateOf(time.Now().UTC()).AddDate(0, 0, days).Format(bookingDomain.DateLayout)
}

// TestConcurrentCreate_ExactlyOneWins fires overlapping requests for the same
// listing from different tenants; Postgres must admit exactly one.
func TestConcurrentCreate_ExactlyOneWins(t *testing.T) {
	db := setupPostgres(t)
	svc := newBookingService(db, nil)
	listing := seedListing(t, db, uuid.New())

	const callers = 12
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			// Every range covers the night starting at day 32.
			req := application.CreateBookingRequest{
				ListingID: listing.ID(),
				CheckIn:   futureDate(30 + i%3),
				CheckOut:  futureDate(33 + i%2),
				Stayers:   1,
			}
			_, err := svc.CreateBooking(context.Background(), bookingDomain.NewUserActor(uuid.New(), false), req)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case domain.KindOf(err) == domain.KindBookingConflict:
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, conflicts)

	var active int64
	require.NoError(t, db.Model(&repository.BookingModel{}).
		Where("listing_id = ? AND status IN ?", listing.ID(), []string{"pending", "confirmed"}).
		Count(&active).Error)
	assert.EqualValues(t, 1, active)

	var historyRows int64
	require.NoError(t, db.Model(&repository.StatusHistoryModel{}).Count(&historyRows).Error)
	assert.EqualValues(t, 1, historyRows)
}

// TestExclusionConstraint_BacksUpApplicationCheck writes overlapping bookings
// straight through the repository, skipping the service's availability check.
func TestExclusionConstraint_BacksUpApplicationCheck(t *testing.T) {
	db := setupPostgres(t)
	listing := seedListing(t, db, uuid.New())
	repo := repository.NewGormBookingRepository(db)
	now := time.Now().UTC()

	stay := func(in, out int) bookingDomain.StayPeriod {
		today := bookingDomain.DateOf(now)
		p, err := bookingDomain.NewStayPeriod(today.AddDate(0, 0, in), today.AddDate(0, 0, out))
		require.NoError(t, err)
		return p
	}
	newBooking := func(p bookingDomain.StayPeriod) *bookingDomain.Booking {
		bk, err := bookingDomain.NewBooking(listing.ID(), listing.OwnerID(), uuid.New(), 1, p, decimal.RequireFromString("80.00"), now)
		require.NoError(t, err)
		return bk
	}

	first := newBooking(stay(10, 14))
	require.NoError(t, repo.Save(context.Background(), first))

	err := repo.Save(context.Background(), newBooking(stay(13, 15)))
	assert.ErrorIs(t, err, domain.ErrBookingConflict)

	// Touching ranges share no night.
	require.NoError(t, repo.Save(context.Background(), newBooking(stay(14, 16))))

	// Once the first booking is cancelled its dates free up.
	_, err = first.Cancel(bookingDomain.NewUserActor(first.TenantID(), false), now)
	require.NoError(t, err)
	first.IncrementVersion()
	require.NoError(t, repo.Update(context.Background(), first))
	require.NoError(t, repo.Save(context.Background(), newBooking(stay(10, 12))))
}

// TestConcurrentTransitions_OneWinner races confirm against cancel.
func TestConcurrentTransitions_OneWinner(t *testing.T) {
	db := setupPostgres(t)
	svc := newBookingService(db, nil)
	listing := seedListing(t, db, uuid.New())
	owner := bookingDomain.NewUserActor(listing.OwnerID(), false)

	for round := 0; round < 5; round++ {
		tenant := bookingDomain.NewUserActor(uuid.New(), false)
		created, err := svc.CreateBooking(context.Background(), tenant, application.CreateBookingRequest{
			ListingID: listing.ID(),
			CheckIn:   futureDate(40 + round*3),
			CheckOut:  futureDate(42 + round*3),
			Stayers:   1,
		})
		require.NoError(t, err)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = svc.RejectBooking(context.Background(), created.ID, owner, "")
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = svc.CancelBooking(context.Background(), created.ID, tenant)
		}()
		wg.Wait()

		failures := 0
		for _, err := range errs {
			if err != nil {
				failures++
				assert.ErrorIs(t, err, domain.ErrInvalidTransition, fmt.Sprintf("round %d", round))
			}
		}
		assert.Equal(t, 1, failures, "round %d", round)

		history, err := svc.GetBookingHistory(context.Background(), created.ID, owner)
		require.NoError(t, err)
		assert.Len(t, history, 2, "round %d", round)
	}
}

// TestHistory_EqualTimestampsKeepAppendOrder appends rows sharing one
// created_at and expects the last append first.
func TestHistory_EqualTimestampsKeepAppendOrder(t *testing.T) {
	db := setupPostgres(t)
	listing := seedListing(t, db, uuid.New())
	ctx := context.Background()
	now := time.Now().UTC()

	today := bookingDomain.DateOf(now)
	stay, err := bookingDomain.NewStayPeriod(today.AddDate(0, 0, 5), today.AddDate(0, 0, 7))
	require.NoError(t, err)
	bk, err := bookingDomain.NewBooking(listing.ID(), listing.OwnerID(), uuid.New(), 1, stay, decimal.RequireFromString("160.00"), now)
	require.NoError(t, err)
	require.NoError(t, repository.NewGormBookingRepository(db).Save(ctx, bk))

	history := repository.NewGormHistoryRepository(db)
	statuses := []bookingDomain.BookingStatus{
		bookingDomain.StatusPending,
		bookingDomain.StatusConfirmed,
		bookingDomain.StatusCancelled,
	}
	for _, status := range statuses {
		require.NoError(t, history.Append(ctx, bookingDomain.NewStatusChange(bk.ID(), status, "", nil, now)))
	}

	rows, err := history.ListByBookingID(ctx, bk.ID())
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, bookingDomain.StatusCancelled, rows[0].Status)
	assert.Equal(t, bookingDomain.StatusConfirmed, rows[1].Status)
	assert.Equal(t, bookingDomain.StatusPending, rows[2].Status)
}

// TestStayCheckedOut_CompletesBooking verifies that a stay.checked_out event
// on stay.events completes the booking and announces it on booking.events.
func TestStayCheckedOut_CompletesBooking(t *testing.T) {
	db := setupPostgres(t)
	brokers := setupKafka(t)

	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()
	svc := newBookingService(db, producer)

	listing := seedListing(t, db, uuid.New())
	tenantID := uuid.New()
	bookingID := seedConfirmedStay(t, db, listing, tenantID)

	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	consumer := bookingEvents.NewStayEventConsumer(brokers, groupID, svc, logger)
	defer func() { _ = consumer.Close() }()

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	publishTestEvent(t, brokers, bookingEvents.TopicStayEvents, "service-stay",
		bookingEvents.StayCheckedOut, bookingID.String(),
		bookingEvents.StayCheckedOutEvent{BookingID: bookingID})

	// Assert: booking transitions to "completed".
	model := waitForBookingStatus(t, db, bookingID, "completed", 15*time.Second)
	assert.EqualValues(t, 3, model.Version)

	var history []repository.StatusHistoryModel
	require.NoError(t, db.Where("booking_id = ?", bookingID).Order("created_at DESC, seq DESC").Find(&history).Error)
	require.Len(t, history, 3)
	assert.Equal(t, "completed", history[0].Status)
	assert.Nil(t, history[0].ChangedBy)

	// Assert: booking.completed on booking.events.
	ce := consumeOneEvent(t, brokers, application.TopicBookingEvents,
		bookingDomain.EventBookingCompleted, 15*time.Second)

	var completed bookingDomain.BookingStatusChangedEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, bookingID, completed.BookingID)
	assert.Equal(t, tenantID, completed.TenantID)
	assert.Equal(t, "completed", completed.Status)
}
