package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingRepository defines the persistence contract for booking aggregates.
type BookingRepository interface {
	// FindByID retrieves a booking by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByIDForUpdate retrieves a booking and locks it until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Booking, error)

	// FindByTenantID retrieves bookings made by a tenant with pagination.
	FindByTenantID(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// FindByOwnerID retrieves bookings on listings of an owner with pagination.
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*Booking, int64, error)

	// ListAll retrieves all bookings with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Booking, int64, error)

	// CountByStatus returns booking counts grouped by status (admin).
	CountByStatus(ctx context.Context) (map[string]int64, error)

	// HasOverlap reports whether an active booking on listingID overlaps stay.
	// excludeID, when non-nil, is ignored.
	HasOverlap(ctx context.Context, listingID uuid.UUID, stay StayPeriod, excludeID *uuid.UUID) (bool, error)

	// FindCompletable returns confirmed bookings whose check-out is on or before day.
	FindCompletable(ctx context.Context, day time.Time, limit int) ([]*Booking, error)

	// LockListing serializes booking creation for a listing until the transaction ends.
	LockListing(ctx context.Context, listingID uuid.UUID) error

	// Save persists a new booking.
	Save(ctx context.Context, booking *Booking) error

	// Update persists changes to an existing booking with optimistic locking.
	Update(ctx context.Context, booking *Booking) error
}

// HistoryRepository is the append-only status ledger.
type HistoryRepository interface {
	// Append stores a ledger row.
	Append(ctx context.Context, change StatusChange) error

	// ListByBookingID returns a booking's ledger, newest first.
	ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]StatusChange, error)
}

// UnitOfWork exposes repositories bound to one transaction.
type UnitOfWork interface {
	Bookings() BookingRepository
	History() HistoryRepository
}

// TxManager runs fn atomically: everything written through the unit of work
// commits when fn returns nil and is discarded otherwise.
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context, uow UnitOfWork) error) error
}
