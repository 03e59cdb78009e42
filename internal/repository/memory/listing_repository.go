package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

// ListingRepository implements listing.Repository over a Store.
type ListingRepository struct {
	store *Store
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	l, ok := r.store.listings[id]
	if !ok {
		return nil, domain.NewNotFoundError("Listing", id.String())
	}
	return cloneListing(l), nil
}

func (r *ListingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*listingDomain.Listing, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]*listingDomain.Listing, 0)
	for _, l := range r.store.listings {
		if l.OwnerID() == ownerID {
			out = append(out, cloneListing(l))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().After(out[j].CreatedAt()) })
	return out, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listingDomain.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, exists := r.store.listings[l.ID()]; exists {
		return domain.NewConflictError("listing already exists")
	}
	r.store.listings[l.ID()] = cloneListing(l)
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, l *listingDomain.Listing) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.listings[l.ID()]
	if !ok {
		return domain.NewNotFoundError("Listing", l.ID().String())
	}
	if current.Version() != l.Version()-1 {
		return domain.NewConflictError("listing was modified by another transaction")
	}
	r.store.listings[l.ID()] = cloneListing(l)
	return nil
}
