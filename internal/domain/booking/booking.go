package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/internal/common/domain"
)

const createdComment = "Booking created"

// Booking is the aggregate root for the booking domain.
type Booking struct {
	id         uuid.UUID
	listingID  uuid.UUID
	ownerID    uuid.UUID
	tenantID   uuid.UUID
	stayers    int
	stay       StayPeriod
	totalPrice decimal.Decimal
	status     BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a new Booking aggregate with status=pending.
// ownerID is the listing owner at the time of booking.
func NewBooking(
	listingID uuid.UUID,
	ownerID uuid.UUID,
	tenantID uuid.UUID,
	stayers int,
	stay StayPeriod,
	totalPrice decimal.Decimal,
	now time.Time,
) (*Booking, error) {
	if listingID == uuid.Nil {
		return nil, domain.NewValidationError("listing ID is required")
	}
	if tenantID == uuid.Nil {
		return nil, domain.NewValidationError("tenant ID is required")
	}
	if ownerID == tenantID {
		return nil, domain.NewForbiddenError("you cannot book your own listing")
	}
	if stayers <= 0 {
		return nil, domain.NewValidationError("stayers must be a positive number")
	}
	if err := ValidateDateOrder(stay.CheckIn(), stay.CheckOut()); err != nil {
		return nil, err
	}
	if totalPrice.IsNegative() {
		return nil, domain.NewValidationError("total price cannot be negative")
	}

	now = now.UTC()
	return &Booking{
		id:         uuid.New(),
		listingID:  listingID,
		ownerID:    ownerID,
		tenantID:   tenantID,
		stayers:    stayers,
		stay:       stay,
		totalPrice: totalPrice.Round(2),
		status:     StatusPending,
		version:    1,
		createdAt:  now,
		updatedAt:  now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	listingID uuid.UUID,
	ownerID uuid.UUID,
	tenantID uuid.UUID,
	stayers int,
	stay StayPeriod,
	totalPrice decimal.Decimal,
	status BookingStatus,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:         id,
		listingID:  listingID,
		ownerID:    ownerID,
		tenantID:   tenantID,
		stayers:    stayers,
		stay:       stay,
		totalPrice: totalPrice,
		status:     status,
		version:    version,
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// ListingID returns the booked listing.
func (b *Booking) ListingID() uuid.UUID { return b.listingID }

// OwnerID returns the listing owner's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// TenantID returns the tenant's user ID.
func (b *Booking) TenantID() uuid.UUID { return b.tenantID }

// Stayers returns the number of guests.
func (b *Booking) Stayers() int { return b.stayers }

// Stay returns the booked nights.
func (b *Booking) Stay() StayPeriod { return b.stay }

// Nights returns the number of booked nights.
func (b *Booking) Nights() int { return b.stay.Nights() }

// TotalPrice returns the price of the whole stay.
func (b *Booking) TotalPrice() decimal.Decimal { return b.totalPrice }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// Relationship returns the owner and tenant of the booking.
func (b *Booking) Relationship() Relationship {
	return Relationship{OwnerID: b.ownerID, TenantID: b.tenantID}
}

// --- Behavior ---

// CanView reports whether actor may read the booking.
func (b *Booking) CanView(actor Actor) bool {
	if actor.IsAdmin || actor.IsSystem {
		return true
	}
	return actor.ID != uuid.Nil && (actor.ID == b.ownerID || actor.ID == b.tenantID)
}

// Cancelable reports whether the booking may still be cancelled at now:
// pending or confirmed with check-in strictly after today.
func (b *Booking) Cancelable(now time.Time) bool {
	return b.status.IsActive() && b.stay.CheckIn().After(DateOf(now))
}

// CreatedEntry returns the initial ledger row for a new booking.
func (b *Booking) CreatedEntry() StatusChange {
	tenant := b.tenantID
	return NewStatusChange(b.id, StatusPending, createdComment, &tenant, b.createdAt)
}

// TransitionTo moves the booking to target on behalf of actor and returns
// the ledger row describing the change. Access is checked before legality.
// An empty comment falls back to the transition's default.
func (b *Booking) TransitionTo(actor Actor, target BookingStatus, comment string, now time.Time) (StatusChange, error) {
	if err := b.Relationship().Authorize(actor, target); err != nil {
		return StatusChange{}, err
	}
	if err := CheckTransition(b.status, target, b.stay, now); err != nil {
		return StatusChange{}, err
	}
	if comment == "" {
		comment = DefaultComment(b.status, target)
	}

	b.status = target
	b.updatedAt = now.UTC()
	return NewStatusChange(b.id, target, comment, actor.HistoryID(), now), nil
}

// Confirm transitions the booking from pending to confirmed.
func (b *Booking) Confirm(actor Actor, now time.Time) (StatusChange, error) {
	return b.TransitionTo(actor, StatusConfirmed, "", now)
}

// Reject transitions the booking from pending to rejected with the given reason.
func (b *Booking) Reject(actor Actor, reason string, now time.Time) (StatusChange, error) {
	return b.TransitionTo(actor, StatusRejected, reason, now)
}

// Cancel transitions a pending or confirmed booking to cancelled before check-in.
func (b *Booking) Cancel(actor Actor, now time.Time) (StatusChange, error) {
	return b.TransitionTo(actor, StatusCancelled, "", now)
}

// Complete transitions a confirmed booking to completed once check-out has passed.
func (b *Booking) Complete(actor Actor, now time.Time) (StatusChange, error) {
	return b.TransitionTo(actor, StatusCompleted, "", now)
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
}
