package listing

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
)

// RepositoryLookup resolves active listings straight from a Repository.
type RepositoryLookup struct {
	repo Repository
}

// NewRepositoryLookup creates a RepositoryLookup.
func NewRepositoryLookup(repo Repository) *RepositoryLookup {
	return &RepositoryLookup{repo: repo}
}

// GetActiveListing implements Lookup.
func (l *RepositoryLookup) GetActiveListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	found, err := l.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.NewListingNotAvailableError(id.String())
		}
		return nil, err
	}
	if !found.IsActive() {
		return nil, domain.NewListingNotAvailableError(id.String())
	}
	return found, nil
}
