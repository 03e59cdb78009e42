package booking

import (
	"time"

	"github.com/google/uuid"
)

// StatusChange is one immutable row of a booking's status ledger.
type StatusChange struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	Status    BookingStatus
	Comment   string
	// ChangedBy is nil for system transitions or when the user was removed.
	ChangedBy *uuid.UUID
	CreatedAt time.Time
}

// NewStatusChange records that bookingID entered status.
func NewStatusChange(bookingID uuid.UUID, status BookingStatus, comment string, changedBy *uuid.UUID, at time.Time) StatusChange {
	return StatusChange{
		ID:        uuid.New(),
		BookingID: bookingID,
		Status:    status,
		Comment:   comment,
		ChangedBy: changedBy,
		CreatedAt: at.UTC(),
	}
}
