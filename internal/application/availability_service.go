package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

// AvailabilityDTO answers whether a listing can be booked for a stay.
type AvailabilityDTO struct {
	ListingID  uuid.UUID `json:"listing_id"`
	CheckIn    string    `json:"check_in"`
	CheckOut   string    `json:"check_out"`
	Nights     int       `json:"nights"`
	Available  bool      `json:"available"`
	TotalPrice string    `json:"total_price,omitempty"`
}

// AvailabilityService answers overlap queries against active bookings.
type AvailabilityService struct {
	bookings bookingDomain.BookingRepository
	listings listingDomain.Lookup
	pricing  bookingDomain.PricingStrategy
	now      func() time.Time
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	bookings bookingDomain.BookingRepository,
	listings listingDomain.Lookup,
	pricing bookingDomain.PricingStrategy,
) *AvailabilityService {
	return &AvailabilityService{
		bookings: bookings,
		listings: listings,
		pricing:  pricing,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// IsAvailable reports whether no pending or confirmed booking on listingID
// overlaps stay. excludeID, when set, is left out of the check.
func (s *AvailabilityService) IsAvailable(ctx context.Context, listingID uuid.UUID, stay bookingDomain.StayPeriod, excludeID *uuid.UUID) (bool, error) {
	overlap, err := s.bookings.HasOverlap(ctx, listingID, stay, excludeID)
	if err != nil {
		return false, fmt.Errorf("failed to check availability: %w", err)
	}
	return !overlap, nil
}

// CheckAvailability parses YYYY-MM-DD dates and reports availability with a
// price quote for an active listing.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, listingID uuid.UUID, checkIn, checkOut string) (*AvailabilityDTO, error) {
	stay, err := bookingDomain.ParseStayPeriod(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if err := bookingDomain.ValidateNotInPast(stay, s.now()); err != nil {
		return nil, err
	}
	if err := bookingDomain.ValidateStayLength(stay); err != nil {
		return nil, err
	}

	listing, err := s.listings.GetActiveListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	available, err := s.IsAvailable(ctx, listingID, stay, nil)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityDTO{
		ListingID: listingID,
		CheckIn:   stay.CheckIn().Format(bookingDomain.DateLayout),
		CheckOut:  stay.CheckOut().Format(bookingDomain.DateLayout),
		Nights:    stay.Nights(),
		Available: available,
	}
	if available {
		result.TotalPrice = s.pricing.Calculate(listing.NightlyRate(), stay).StringFixed(2)
	}
	return result, nil
}
