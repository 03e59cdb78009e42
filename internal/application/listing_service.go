package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/staynest/service-booking/internal/common/domain"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

// CreateListingRequest is the request DTO for creating a listing.
type CreateListingRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	MaxStayers  int             `json:"max_stayers" binding:"required"`
	NightlyRate decimal.Decimal `json:"price_per_night"`
}

// UpdateListingRequest is the request DTO for updating a listing.
type UpdateListingRequest struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	MaxStayers  int              `json:"max_stayers"`
	NightlyRate *decimal.Decimal `json:"price_per_night"`
	IsActive    *bool            `json:"is_active"`
}

// ListingDTO is the API response representation of a listing.
type ListingDTO struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	MaxStayers  int       `json:"max_stayers"`
	NightlyRate string    `json:"price_per_night"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListingCacheInvalidator drops cached listing lookups after a change.
type ListingCacheInvalidator interface {
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// ListingService implements use cases for the listings bookings are made against.
type ListingService struct {
	repo   listingDomain.Repository
	cache  ListingCacheInvalidator
	logger *zap.Logger
}

// NewListingService creates a new ListingService. cache may be nil.
func NewListingService(repo listingDomain.Repository, cache ListingCacheInvalidator, logger *zap.Logger) *ListingService {
	return &ListingService{repo: repo, cache: cache, logger: logger}
}

// CreateListing creates a new active listing for the given owner.
func (s *ListingService) CreateListing(ctx context.Context, ownerID uuid.UUID, req CreateListingRequest) (*ListingDTO, error) {
	listing, err := listingDomain.NewListing(ownerID, req.Title, req.Description, req.MaxStayers, req.NightlyRate)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, listing); err != nil {
		s.logger.Error("failed to create listing", zap.Error(err))
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	s.logger.Info("listing created",
		zap.String("listing_id", listing.ID().String()),
		zap.String("owner_id", ownerID.String()),
	)
	result := toListingDTO(listing)
	return &result, nil
}

// GetMyListings returns all listings of the given owner.
func (s *ListingService) GetMyListings(ctx context.Context, ownerID uuid.UUID) ([]ListingDTO, error) {
	listings, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get listings: %w", err)
	}
	dtos := make([]ListingDTO, len(listings))
	for i, l := range listings {
		dtos[i] = toListingDTO(l)
	}
	return dtos, nil
}

// GetListing returns a single listing by ID.
func (s *ListingService) GetListing(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	result := toListingDTO(listing)
	return &result, nil
}

// UpdateListing updates a listing, verifying ownership.
func (s *ListingService) UpdateListing(ctx context.Context, ownerID, listingID uuid.UUID, req UpdateListingRequest) (*ListingDTO, error) {
	listing, err := s.ownedListing(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}

	if err := listing.Update(req.Title, req.Description, req.MaxStayers, req.NightlyRate, req.IsActive); err != nil {
		return nil, err
	}
	if err := s.save(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("listing updated", zap.String("listing_id", listingID.String()))
	result := toListingDTO(listing)
	return &result, nil
}

// DeactivateListing stops a listing from accepting new bookings, verifying ownership.
func (s *ListingService) DeactivateListing(ctx context.Context, ownerID, listingID uuid.UUID) error {
	listing, err := s.ownedListing(ctx, ownerID, listingID)
	if err != nil {
		return err
	}

	listing.Deactivate()
	if err := s.save(ctx, listing); err != nil {
		return err
	}

	s.logger.Info("listing deactivated", zap.String("listing_id", listingID.String()))
	return nil
}

func (s *ListingService) ownedListing(ctx context.Context, ownerID, listingID uuid.UUID) (*listingDomain.Listing, error) {
	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !listing.IsOwnedBy(ownerID) {
		return nil, domain.NewForbiddenError("you do not own this listing")
	}
	return listing, nil
}

func (s *ListingService) save(ctx context.Context, listing *listingDomain.Listing) error {
	if err := s.repo.Update(ctx, listing); err != nil {
		if domain.IsDomainError(err) {
			return err
		}
		s.logger.Error("failed to update listing", zap.Error(err))
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, listing.ID()); err != nil {
			s.logger.Warn("failed to invalidate listing cache",
				zap.String("listing_id", listing.ID().String()),
				zap.Error(err),
			)
		}
	}
	return nil
}

func toListingDTO(l *listingDomain.Listing) ListingDTO {
	return ListingDTO{
		ID:          l.ID(),
		OwnerID:     l.OwnerID(),
		Title:       l.Title(),
		Description: l.Description(),
		MaxStayers:  l.MaxStayers(),
		NightlyRate: l.NightlyRate().StringFixed(2),
		IsActive:    l.IsActive(),
		CreatedAt:   l.CreatedAt(),
		UpdatedAt:   l.UpdatedAt(),
	}
}
