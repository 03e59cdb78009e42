package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/staynest/service-booking/internal/common/domain"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ListingID  uuid.UUID       `gorm:"type:uuid;not null;index:idx_bookings_listing_dates,priority:1"`
	OwnerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	TenantID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Stayers    int             `gorm:"not null"`
	CheckIn    time.Time       `gorm:"type:date;not null;index:idx_bookings_listing_dates,priority:2"`
	CheckOut   time.Time       `gorm:"type:date;not null"`
	TotalPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	Status     string          `gorm:"not null;size:20;index"`
	Version    int64           `gorm:"not null;default:1"`
	CreatedAt  time.Time       `gorm:"not null"`
	UpdatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findByID(r.db.WithContext(ctx), id)
}

// FindByIDForUpdate retrieves a booking with SELECT ... FOR UPDATE.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.findByID(r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), id)
}

func (r *GormBookingRepository) findByID(db *gorm.DB, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := db.Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", translateError(err))
	}
	return toDomainBooking(&model), nil
}

// FindByTenantID retrieves bookings made by a tenant with pagination.
func (r *GormBookingRepository) FindByTenantID(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "tenant", func(db *gorm.DB) *gorm.DB {
		return db.Where("tenant_id = ?", tenantID)
	}, page, limit)
}

// FindByOwnerID retrieves bookings on an owner's listings with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "owner", func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	}, page, limit)
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.paginate(ctx, "all", func(db *gorm.DB) *gorm.DB { return db }, page, limit)
}

func (r *GormBookingRepository) paginate(ctx context.Context, scope string, filter func(*gorm.DB) *gorm.DB, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := filter(r.db.WithContext(ctx).Model(&BookingModel{})).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count %s bookings: %w", scope, err)
	}

	var models []BookingModel
	if err := filter(r.db.WithContext(ctx)).
		Order("created_at DESC, id").
		Offset(domain.Offset(page, limit)).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find %s bookings: %w", scope, err)
	}

	return toDomainBookings(models), total, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var rows []statusCount
	if err := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	result := make(map[string]int64, len(rows))
	for _, row := range rows {
		result[row.Status] = row.Count
	}
	return result, nil
}

// HasOverlap reports whether an active booking on listingID overlaps stay.
func (r *GormBookingRepository) HasOverlap(ctx context.Context, listingID uuid.UUID, stay bookingDomain.StayPeriod, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("listing_id = ?", listingID).
		Where("status IN ?", activeStatuses()).
		Where("check_in < ? AND ? < check_out", stay.CheckOut(), stay.CheckIn())
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var exists bool
	if err := r.db.WithContext(ctx).
		Raw("SELECT EXISTS (?)", query.Select("1")).
		Scan(&exists).Error; err != nil {
		return false, fmt.Errorf("failed to check booking overlap: %w", err)
	}
	return exists, nil
}

// FindCompletable returns confirmed bookings whose check-out is on or before day.
func (r *GormBookingRepository) FindCompletable(ctx context.Context, day time.Time, limit int) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND check_out <= ?", string(bookingDomain.StatusConfirmed), bookingDomain.DateOf(day)).
		Order("check_out").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find completable bookings: %w", err)
	}
	return toDomainBookings(models), nil
}

// LockListing takes a transaction-scoped advisory lock keyed by the listing.
func (r *GormBookingRepository) LockListing(ctx context.Context, listingID uuid.UUID) error {
	if err := r.db.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtextextended(?, 0))", listingID.String()).Error; err != nil {
		return fmt.Errorf("failed to lock listing: %w", translateError(err))
	}
	return nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	if err := r.db.WithContext(ctx).Create(toBookingModel(bk)).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", translateError(err))
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// IncrementVersion was called before Update, so the stored row carries version-1.
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":      model.Status,
			"stayers":     model.Stayers,
			"check_in":    model.CheckIn,
			"check_out":   model.CheckOut,
			"total_price": model.TotalPrice,
			"version":     model.Version,
			"updated_at":  model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", translateError(result.Error))
	}

	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}

	return nil
}

// --- Conversions ---

func activeStatuses() []string {
	active := bookingDomain.ActiveStatuses()
	out := make([]string, len(active))
	for i, s := range active {
		out[i] = string(s)
	}
	return out
}

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:         bk.ID(),
		ListingID:  bk.ListingID(),
		OwnerID:    bk.OwnerID(),
		TenantID:   bk.TenantID(),
		Stayers:    bk.Stayers(),
		CheckIn:    bk.Stay().CheckIn(),
		CheckOut:   bk.Stay().CheckOut(),
		TotalPrice: bk.TotalPrice(),
		Status:     string(bk.Status()),
		Version:    bk.Version(),
		CreatedAt:  bk.CreatedAt(),
		UpdatedAt:  bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ListingID,
		m.OwnerID,
		m.TenantID,
		m.Stayers,
		bookingDomain.ReconstructStayPeriod(m.CheckIn, m.CheckOut),
		m.TotalPrice,
		bookingDomain.BookingStatus(m.Status),
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	)
}

func toDomainBookings(models []BookingModel) []*bookingDomain.Booking {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bookings[i] = toDomainBooking(&models[i])
	}
	return bookings
}
