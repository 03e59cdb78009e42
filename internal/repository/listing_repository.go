package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/staynest/service-booking/internal/common/domain"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

// ListingModel is the GORM model for the listings table.
type ListingModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OwnerID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title       string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	MaxStayers  int             `gorm:"not null"`
	NightlyRate decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	IsActive    bool            `gorm:"not null;default:true"`
	Version     int64           `gorm:"not null;default:1"`
	CreatedAt   time.Time       `gorm:"type:timestamptz;not null;default:now()"`
	UpdatedAt   time.Time       `gorm:"type:timestamptz;not null;default:now()"`
}

func (ListingModel) TableName() string { return "listings" }

// GormListingRepository implements listing.Repository using GORM.
type GormListingRepository struct {
	db *gorm.DB
}

func NewGormListingRepository(db *gorm.DB) *GormListingRepository {
	return &GormListingRepository{db: db}
}

func (r *GormListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listingDomain.Listing, error) {
	var model ListingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Listing", id.String())
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return toListingDomain(&model), nil
}

func (r *GormListingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*listingDomain.Listing, error) {
	var models []ListingModel
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find owner listings: %w", err)
	}
	listings := make([]*listingDomain.Listing, len(models))
	for i := range models {
		listings[i] = toListingDomain(&models[i])
	}
	return listings, nil
}

func (r *GormListingRepository) Save(ctx context.Context, l *listingDomain.Listing) error {
	if err := r.db.WithContext(ctx).Create(toListingModel(l)).Error; err != nil {
		return fmt.Errorf("failed to save listing: %w", translateError(err))
	}
	return nil
}

func (r *GormListingRepository) Update(ctx context.Context, l *listingDomain.Listing) error {
	model := toListingModel(l)
	previousVersion := l.Version() - 1

	result := r.db.WithContext(ctx).
		Model(&ListingModel{}).
		Where("id = ? AND version = ?", model.ID, previousVersion).
		Updates(map[string]interface{}{
			"title":        model.Title,
			"description":  model.Description,
			"max_stayers":  model.MaxStayers,
			"nightly_rate": model.NightlyRate,
			"is_active":    model.IsActive,
			"version":      model.Version,
			"updated_at":   model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update listing: %w", translateError(result.Error))
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("listing was modified by another transaction")
	}
	return nil
}

// --- Conversions ---

func toListingModel(l *listingDomain.Listing) *ListingModel {
	return &ListingModel{
		ID:          l.ID(),
		OwnerID:     l.OwnerID(),
		Title:       l.Title(),
		Description: l.Description(),
		MaxStayers:  l.MaxStayers(),
		NightlyRate: l.NightlyRate(),
		IsActive:    l.IsActive(),
		Version:     l.Version(),
		CreatedAt:   l.CreatedAt(),
		UpdatedAt:   l.UpdatedAt(),
	}
}

func toListingDomain(m *ListingModel) *listingDomain.Listing {
	return listingDomain.Reconstruct(
		m.ID, m.OwnerID,
		m.Title, m.Description,
		m.MaxStayers,
		m.NightlyRate,
		m.IsActive,
		m.Version,
		m.CreatedAt, m.UpdatedAt,
	)
}
