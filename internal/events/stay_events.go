package events

import "github.com/google/uuid"

// TopicStayEvents carries check-in/check-out notifications from the stay service.
const TopicStayEvents = "stay.events"

// StayCheckedOut is emitted when a guest has left the listing.
const StayCheckedOut = "stay.checked_out"

// StayCheckedOutEvent is the data payload of a stay.checked_out CloudEvent.
type StayCheckedOutEvent struct {
	BookingID uuid.UUID `json:"booking_id"`
}
