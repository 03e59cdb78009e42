package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/common/domain"
	"github.com/staynest/service-booking/internal/common/kafka"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

const (
	// TopicBookingEvents receives booking lifecycle events.
	TopicBookingEvents = "booking.events"

	eventSource         = "service-booking"
	completionBatchSize = 100
)

// EventPublisher publishes CloudEvents. *kafka.Producer satisfies it.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ListingID uuid.UUID `json:"listing_id" binding:"required"`
	CheckIn   string    `json:"check_in" binding:"required"`
	CheckOut  string    `json:"check_out" binding:"required"`
	Stayers   int       `json:"stayers" binding:"required"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID         uuid.UUID `json:"id"`
	ListingID  uuid.UUID `json:"listing_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	Stayers    int       `json:"stayers"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Nights     int       `json:"nights"`
	TotalPrice string    `json:"total_price"`
	Status     string    `json:"status"`
	Cancelable bool      `json:"cancelable"`
	Version    int64     `json:"version"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// StatusChangeDTO is one row of a booking's status history.
type StatusChangeDTO struct {
	ID        uuid.UUID  `json:"id"`
	Status    string     `json:"status"`
	Comment   string     `json:"comment"`
	ChangedBy *uuid.UUID `json:"changed_by"`
	CreatedAt time.Time  `json:"created_at"`
}

// BookingDetailDTO is a booking together with its history, newest first.
type BookingDetailDTO struct {
	BookingDTO
	History []StatusChangeDTO `json:"history"`
}

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	tx           bookingDomain.TxManager
	bookings     bookingDomain.BookingRepository
	history      bookingDomain.HistoryRepository
	listings     listingDomain.Lookup
	availability *AvailabilityService
	pricing      bookingDomain.PricingStrategy
	publisher    EventPublisher
	logger       *zap.Logger
	now          func() time.Time
}

// NewBookingService creates a new BookingService. publisher may be nil,
// in which case lifecycle events are not published.
func NewBookingService(
	tx bookingDomain.TxManager,
	bookings bookingDomain.BookingRepository,
	history bookingDomain.HistoryRepository,
	listings listingDomain.Lookup,
	pricing bookingDomain.PricingStrategy,
	publisher EventPublisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		tx:           tx,
		bookings:     bookings,
		history:      history,
		listings:     listings,
		availability: NewAvailabilityService(bookings, listings, pricing),
		pricing:      pricing,
		publisher:    publisher,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	s.availability.now = now
	return s
}

// Availability returns the availability checker used by the service.
func (s *BookingService) Availability() *AvailabilityService {
	return s.availability
}

// CreateBooking creates a pending booking for the tenant.
func (s *BookingService) CreateBooking(ctx context.Context, tenant bookingDomain.Actor, req CreateBookingRequest) (*BookingDTO, error) {
	now := s.now()

	stay, err := bookingDomain.ParseStayPeriod(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.ValidateRequest(stay, req.Stayers, now); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetActiveListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if listing.IsOwnedBy(tenant.ID) {
		return nil, domain.NewForbiddenError("you cannot book your own listing")
	}
	if err := bookingDomain.ValidateStayers(req.Stayers, listing.MaxStayers()); err != nil {
		return nil, err
	}

	available, err := s.availability.IsAvailable(ctx, listing.ID(), stay, nil)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, domain.NewBookingConflictError()
	}

	price := s.pricing.Calculate(listing.NightlyRate(), stay)
	if err := bookingDomain.ValidateTotalPrice(price); err != nil {
		return nil, err
	}

	bk, err := bookingDomain.NewBooking(listing.ID(), listing.OwnerID(), tenant.ID, req.Stayers, stay, price, now)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context, uow bookingDomain.UnitOfWork) error {
		if err := uow.Bookings().LockListing(ctx, listing.ID()); err != nil {
			return err
		}
		overlap, err := uow.Bookings().HasOverlap(ctx, listing.ID(), stay, nil)
		if err != nil {
			return err
		}
		if overlap {
			return domain.NewBookingConflictError()
		}
		if err := uow.Bookings().Save(ctx, bk); err != nil {
			return err
		}
		return uow.History().Append(ctx, bk.CreatedEntry())
	})
	if err != nil {
		return nil, s.storageError("create booking", err)
	}

	s.logger.Info("booking created",
		zap.String("booking_id", bk.ID().String()),
		zap.String("listing_id", bk.ListingID().String()),
		zap.String("stay", stay.String()),
		zap.String("total_price", bk.TotalPrice().StringFixed(2)),
	)
	s.publishEvent(ctx, bookingDomain.EventBookingRequested, bk.ID().String(), bookingDomain.NewBookingRequestedEvent(bk))

	result := s.toBookingDTO(bk)
	return &result, nil
}

// ConfirmBooking moves a pending booking to confirmed. Owner or admin only.
func (s *BookingService) ConfirmBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actor, bookingDomain.StatusConfirmed, "")
}

// RejectBooking moves a pending booking to rejected. Owner or admin only.
func (s *BookingService) RejectBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor, reason string) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actor, bookingDomain.StatusRejected, reason)
}

// CancelBooking cancels a booking before check-in. Tenant or admin only.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actor, bookingDomain.StatusCancelled, "")
}

// CompleteBooking marks a confirmed stay as completed once check-out has passed.
func (s *BookingService) CompleteBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDTO, error) {
	return s.transition(ctx, bookingID, actor, bookingDomain.StatusCompleted, "")
}

// transition re-reads the booking under lock and applies the change together
// with its history row.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID uuid.UUID,
	actor bookingDomain.Actor,
	target bookingDomain.BookingStatus,
	comment string,
) (*BookingDTO, error) {
	var (
		bk     *bookingDomain.Booking
		change bookingDomain.StatusChange
		err    error
	)
	// A lost optimistic update is retried once so the caller sees the
	// state the winner left behind.
	for attempt := 0; attempt < 2; attempt++ {
		err = s.tx.RunInTx(ctx, func(ctx context.Context, uow bookingDomain.UnitOfWork) error {
			var err error
			bk, err = uow.Bookings().FindByIDForUpdate(ctx, bookingID)
			if err != nil {
				return err
			}
			change, err = bk.TransitionTo(actor, target, comment, s.now())
			if err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := uow.Bookings().Update(ctx, bk); err != nil {
				return err
			}
			return uow.History().Append(ctx, change)
		})
		if !errors.Is(err, domain.ErrConflict) {
			break
		}
	}
	if err != nil {
		return nil, s.storageError(fmt.Sprintf("mark booking %s", target), err)
	}

	s.logger.Info("booking status changed",
		zap.String("booking_id", bk.ID().String()),
		zap.String("listing_id", bk.ListingID().String()),
		zap.String("status", string(target)),
	)
	s.publishEvent(ctx, bookingDomain.EventTypeFor(target), bk.ID().String(), bookingDomain.NewBookingStatusChangedEvent(bk, change))

	result := s.toBookingDTO(bk)
	return &result, nil
}

// CompleteFinishedStays completes every confirmed booking whose check-out has
// passed. Each booking is completed in its own transaction; failures are
// logged and do not stop the batch.
func (s *BookingService) CompleteFinishedStays(ctx context.Context) (int, error) {
	due, err := s.bookings.FindCompletable(ctx, s.now(), completionBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to find finished stays: %w", err)
	}

	completed := 0
	for _, bk := range due {
		if ctx.Err() != nil {
			return completed, ctx.Err()
		}
		if _, err := s.CompleteBooking(ctx, bk.ID(), bookingDomain.SystemActor); err != nil {
			s.logger.Warn("failed to complete finished stay",
				zap.String("booking_id", bk.ID().String()),
				zap.Error(err),
			)
			continue
		}
		completed++
	}
	return completed, nil
}

// GetBooking retrieves a booking with its history. Visible to its tenant,
// the listing owner and admins.
func (s *BookingService) GetBooking(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) (*BookingDetailDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.CanView(actor) {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}

	rows, err := s.history.ListByBookingID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("failed to load booking history: %w", err)
	}

	return &BookingDetailDTO{
		BookingDTO: s.toBookingDTO(bk),
		History:    toStatusChangeDTOs(rows),
	}, nil
}

// GetBookingHistory returns the status history of a booking, newest first.
func (s *BookingService) GetBookingHistory(ctx context.Context, bookingID uuid.UUID, actor bookingDomain.Actor) ([]StatusChangeDTO, error) {
	detail, err := s.GetBooking(ctx, bookingID, actor)
	if err != nil {
		return nil, err
	}
	return detail.History, nil
}

// ListTenantBookings retrieves paginated bookings made by a tenant.
func (s *BookingService) ListTenantBookings(ctx context.Context, tenantID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByTenantID(ctx, tenantID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list tenant bookings: %w", err)
	}
	result := domain.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// ListOwnerBookings retrieves paginated bookings received on an owner's listings.
func (s *BookingService) ListOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list owner bookings: %w", err)
	}
	result := domain.NewPaginatedResult(s.toBookingDTOs(bookings), total, page, limit)
	return &result, nil
}

// --- Admin methods ---

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}
	return s.toBookingDTOs(bookings), total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	byStatus := make(map[string]int64, len(counts))
	for _, status := range bookingDomain.AllStatuses() {
		byStatus[string(status)] = 0
	}
	var total int64
	for status, c := range counts {
		byStatus[status] = c
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      byStatus,
	}, nil
}

// --- Helpers ---

// storageError passes domain errors through and wraps everything else.
func (s *BookingService) storageError(op string, err error) error {
	if domain.IsDomainError(err) {
		return err
	}
	s.logger.Error("failed to "+op, zap.Error(err))
	return fmt.Errorf("failed to %s: %w", op, err)
}

func (s *BookingService) toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:         bk.ID(),
		ListingID:  bk.ListingID(),
		OwnerID:    bk.OwnerID(),
		TenantID:   bk.TenantID(),
		Stayers:    bk.Stayers(),
		CheckIn:    bk.Stay().CheckIn().Format(bookingDomain.DateLayout),
		CheckOut:   bk.Stay().CheckOut().Format(bookingDomain.DateLayout),
		Nights:     bk.Nights(),
		TotalPrice: bk.TotalPrice().StringFixed(2),
		Status:     string(bk.Status()),
		Cancelable: bk.Cancelable(s.now()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func (s *BookingService) toBookingDTOs(bookings []*bookingDomain.Booking) []BookingDTO {
	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = s.toBookingDTO(bk)
	}
	return dtos
}

func toStatusChangeDTOs(rows []bookingDomain.StatusChange) []StatusChangeDTO {
	dtos := make([]StatusChangeDTO, len(rows))
	for i, r := range rows {
		dtos[i] = StatusChangeDTO{
			ID:        r.ID,
			Status:    string(r.Status),
			Comment:   r.Comment,
			ChangedBy: r.ChangedBy,
			CreatedAt: r.CreatedAt,
		}
	}
	return dtos
}

func (s *BookingService) publishEvent(ctx context.Context, eventType, key string, data interface{}) {
	if s.publisher == nil {
		return
	}

	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.publisher.PublishEvent(ctx, TopicBookingEvents, key, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", TopicBookingEvents),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
