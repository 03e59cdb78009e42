package listing

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for listings.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Listing, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*Listing, error)
	Save(ctx context.Context, listing *Listing) error
	Update(ctx context.Context, listing *Listing) error
}

// Lookup resolves the listing a booking is made against.
type Lookup interface {
	// GetActiveListing returns the listing or a listing_not_available error
	// when it is missing or inactive.
	GetActiveListing(ctx context.Context, id uuid.UUID) (*Listing, error)
}
