package booking

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
)

// Party identifies which relationship to a booking an actor must hold.
type Party int

const (
	PartyOwner Party = 1 << iota
	PartyTenant
	PartySystem
)

// Actor is the resolved identity performing an operation.
type Actor struct {
	ID      uuid.UUID
	IsAdmin bool
	// IsSystem marks internal callers such as the stay consumer and scheduler.
	IsSystem bool
}

// SystemActor is used for transitions not triggered by a user.
var SystemActor = Actor{IsSystem: true}

// NewUserActor builds an actor for an authenticated user.
func NewUserActor(id uuid.UUID, isAdmin bool) Actor {
	return Actor{ID: id, IsAdmin: isAdmin}
}

// HistoryID returns the actor reference stored in the ledger; nil for the system.
func (a Actor) HistoryID() *uuid.UUID {
	if a.IsSystem || a.ID == uuid.Nil {
		return nil
	}
	id := a.ID
	return &id
}

type transitionKey struct {
	from BookingStatus
	to   BookingStatus
}

// temporal guards a transition against the stay dates.
type temporal int

const (
	anyTime temporal = iota
	beforeCheckIn
	afterCheckOut
)

type transitionRule struct {
	parties Party
	when    temporal
	comment string
}

// transitionRules is the complete lifecycle. Admins may perform any listed transition.
var transitionRules = map[transitionKey]transitionRule{
	{StatusPending, StatusConfirmed}:   {parties: PartyOwner, when: anyTime, comment: "Confirmed by owner"},
	{StatusPending, StatusRejected}:    {parties: PartyOwner, when: anyTime, comment: "Rejected"},
	{StatusPending, StatusCancelled}:   {parties: PartyTenant, when: beforeCheckIn, comment: "Cancelled by tenant"},
	{StatusConfirmed, StatusCancelled}: {parties: PartyTenant, when: beforeCheckIn, comment: "Cancelled by tenant"},
	{StatusConfirmed, StatusCompleted}: {parties: PartySystem, when: afterCheckOut, comment: "Stay completed"},
}

// requiredParties returns who may move a booking into target, independent of its current status.
func requiredParties(target BookingStatus) Party {
	var parties Party
	for key, rule := range transitionRules {
		if key.to == target {
			parties |= rule.parties
		}
	}
	return parties
}

// CanTransition reports whether from -> to appears in the lifecycle table.
func CanTransition(from, to BookingStatus) bool {
	_, ok := transitionRules[transitionKey{from, to}]
	return ok
}

// DefaultComment returns the ledger comment used when the caller supplies none.
func DefaultComment(from, to BookingStatus) string {
	return transitionRules[transitionKey{from, to}].comment
}

// Relationship describes how an actor relates to a booking.
type Relationship struct {
	OwnerID  uuid.UUID
	TenantID uuid.UUID
}

func (r Relationship) partiesOf(actor Actor) Party {
	var p Party
	if actor.IsSystem {
		p |= PartySystem
	}
	if actor.ID != uuid.Nil && actor.ID == r.OwnerID {
		p |= PartyOwner
	}
	if actor.ID != uuid.Nil && actor.ID == r.TenantID {
		p |= PartyTenant
	}
	return p
}

// Authorize checks that actor may move the booking into target.
func (r Relationship) Authorize(actor Actor, target BookingStatus) error {
	if actor.IsAdmin {
		return nil
	}
	if r.partiesOf(actor)&requiredParties(target) == 0 {
		return domain.NewForbiddenError(fmt.Sprintf("not allowed to mark booking as %s", target))
	}
	return nil
}

// CheckTransition validates from -> to against the table and the stay dates at now.
func CheckTransition(from, to BookingStatus, stay StayPeriod, now time.Time) error {
	rule, ok := transitionRules[transitionKey{from, to}]
	if !ok {
		return domain.NewInvalidStateError(string(from), string(to))
	}
	today := DateOf(now)
	switch rule.when {
	case beforeCheckIn:
		if !stay.CheckIn().After(today) {
			return domain.NewInvalidTransitionError("booking can no longer be cancelled: check-in is not in the future")
		}
	case afterCheckOut:
		if stay.CheckOut().After(today) {
			return domain.NewInvalidTransitionError("booking cannot be completed before check-out")
		}
	}
	return nil
}
