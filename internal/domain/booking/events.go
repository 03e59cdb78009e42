package booking

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types published for bookings.
const (
	EventBookingRequested = "booking.requested"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingRejected  = "booking.rejected"
	EventBookingCancelled = "booking.cancelled"
	EventBookingCompleted = "booking.completed"
)

var statusEventTypes = map[BookingStatus]string{
	StatusPending:   EventBookingRequested,
	StatusConfirmed: EventBookingConfirmed,
	StatusRejected:  EventBookingRejected,
	StatusCancelled: EventBookingCancelled,
	StatusCompleted: EventBookingCompleted,
}

// EventTypeFor returns the event type announcing that a booking entered status.
func EventTypeFor(status BookingStatus) string {
	return statusEventTypes[status]
}

// BookingRequestedEvent announces a new pending booking.
type BookingRequestedEvent struct {
	BookingID  uuid.UUID `json:"booking_id"`
	ListingID  uuid.UUID `json:"listing_id"`
	OwnerID    uuid.UUID `json:"owner_id"`
	TenantID   uuid.UUID `json:"tenant_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Stayers    int       `json:"stayers"`
	TotalPrice string    `json:"total_price"`
	OccurredAt time.Time `json:"occurred_at"`
}

// BookingStatusChangedEvent announces a lifecycle transition.
type BookingStatusChangedEvent struct {
	BookingID  uuid.UUID  `json:"booking_id"`
	ListingID  uuid.UUID  `json:"listing_id"`
	OwnerID    uuid.UUID  `json:"owner_id"`
	TenantID   uuid.UUID  `json:"tenant_id"`
	Status     string     `json:"status"`
	Comment    string     `json:"comment,omitempty"`
	ChangedBy  *uuid.UUID `json:"changed_by,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// NewBookingRequestedEvent builds the event for a freshly created booking.
func NewBookingRequestedEvent(b *Booking) BookingRequestedEvent {
	return BookingRequestedEvent{
		BookingID:  b.ID(),
		ListingID:  b.ListingID(),
		OwnerID:    b.OwnerID(),
		TenantID:   b.TenantID(),
		CheckIn:    b.Stay().CheckIn().Format(DateLayout),
		CheckOut:   b.Stay().CheckOut().Format(DateLayout),
		Stayers:    b.Stayers(),
		TotalPrice: b.TotalPrice().StringFixed(2),
		OccurredAt: b.CreatedAt(),
	}
}

// NewBookingStatusChangedEvent builds the event for a recorded transition.
func NewBookingStatusChangedEvent(b *Booking, change StatusChange) BookingStatusChangedEvent {
	return BookingStatusChangedEvent{
		BookingID:  b.ID(),
		ListingID:  b.ListingID(),
		OwnerID:    b.OwnerID(),
		TenantID:   b.TenantID(),
		Status:     string(change.Status),
		Comment:    change.Comment,
		ChangedBy:  change.ChangedBy,
		OccurredAt: change.CreatedAt,
	}
}
