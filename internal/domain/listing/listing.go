package listing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/staynest/service-booking/internal/common/domain"
)

// Listing is a bookable property as seen by the booking service.
type Listing struct {
	id          uuid.UUID
	ownerID     uuid.UUID
	title       string
	description string
	maxStayers  int
	nightlyRate decimal.Decimal
	isActive    bool
	version     int64
	createdAt   time.Time
	updatedAt   time.Time
}

// NewListing creates a new active listing with validated fields.
func NewListing(ownerID uuid.UUID, title, description string, maxStayers int, nightlyRate decimal.Decimal) (*Listing, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if maxStayers <= 0 {
		return nil, domain.NewValidationError("max_stayers must be positive")
	}
	if !nightlyRate.IsPositive() {
		return nil, domain.NewValidationError("nightly rate must be positive")
	}

	now := time.Now().UTC()
	return &Listing{
		id:          uuid.New(),
		ownerID:     ownerID,
		title:       title,
		description: description,
		maxStayers:  maxStayers,
		nightlyRate: nightlyRate.Round(2),
		isActive:    true,
		version:     1,
		createdAt:   now,
		updatedAt:   now,
	}, nil
}

// Reconstruct rebuilds a Listing from persistence data (no validation).
func Reconstruct(
	id, ownerID uuid.UUID,
	title, description string,
	maxStayers int,
	nightlyRate decimal.Decimal,
	isActive bool,
	version int64,
	createdAt, updatedAt time.Time,
) *Listing {
	return &Listing{
		id:          id,
		ownerID:     ownerID,
		title:       title,
		description: description,
		maxStayers:  maxStayers,
		nightlyRate: nightlyRate,
		isActive:    isActive,
		version:     version,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// --- Getters ---

func (l *Listing) ID() uuid.UUID                { return l.id }
func (l *Listing) OwnerID() uuid.UUID           { return l.ownerID }
func (l *Listing) Title() string                { return l.title }
func (l *Listing) Description() string          { return l.description }
func (l *Listing) MaxStayers() int              { return l.maxStayers }
func (l *Listing) NightlyRate() decimal.Decimal { return l.nightlyRate }
func (l *Listing) IsActive() bool               { return l.isActive }
func (l *Listing) Version() int64               { return l.version }
func (l *Listing) CreatedAt() time.Time         { return l.createdAt }
func (l *Listing) UpdatedAt() time.Time         { return l.updatedAt }

// --- Behavior ---

// IsOwnedBy checks if the listing belongs to the given owner.
func (l *Listing) IsOwnedBy(ownerID uuid.UUID) bool {
	return l.ownerID == ownerID
}

// Update applies partial updates. Zero values leave fields unchanged.
func (l *Listing) Update(title, description string, maxStayers int, nightlyRate *decimal.Decimal, isActive *bool) error {
	if maxStayers < 0 {
		return domain.NewValidationError("max_stayers must be positive")
	}
	if nightlyRate != nil && !nightlyRate.IsPositive() {
		return domain.NewValidationError("nightly rate must be positive")
	}
	if title != "" {
		l.title = title
	}
	if description != "" {
		l.description = description
	}
	if maxStayers > 0 {
		l.maxStayers = maxStayers
	}
	if nightlyRate != nil {
		l.nightlyRate = nightlyRate.Round(2)
	}
	if isActive != nil {
		l.isActive = *isActive
	}
	l.version++
	l.updatedAt = time.Now().UTC()
	return nil
}

// Deactivate hides the listing from new bookings.
func (l *Listing) Deactivate() {
	l.isActive = false
	l.version++
	l.updatedAt = time.Now().UTC()
}
