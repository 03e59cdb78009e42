package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// StatusHistoryModel is the GORM model for the booking_status_history table.
type StatusHistoryModel struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID  `gorm:"type:uuid;not null;index:idx_history_booking_created,priority:1"`
	Status    string     `gorm:"not null;size:20"`
	Comment   string     `gorm:"type:text;not null;default:''"`
	ChangedBy *uuid.UUID `gorm:"type:uuid"`
	CreatedAt time.Time  `gorm:"not null;index:idx_history_booking_created,priority:2"`
	// Seq is assigned by the database and breaks ties between equal timestamps.
	Seq int64 `gorm:"->;-:migration"`
}

// TableName returns the table name for the GORM model.
func (StatusHistoryModel) TableName() string {
	return "booking_status_history"
}

// GormHistoryRepository is the GORM-based implementation of HistoryRepository.
type GormHistoryRepository struct {
	db *gorm.DB
}

// NewGormHistoryRepository creates a new GormHistoryRepository.
func NewGormHistoryRepository(db *gorm.DB) *GormHistoryRepository {
	return &GormHistoryRepository{db: db}
}

// Append inserts a ledger row. Rows are never updated or deleted.
func (r *GormHistoryRepository) Append(ctx context.Context, change bookingDomain.StatusChange) error {
	model := StatusHistoryModel{
		ID:        change.ID,
		BookingID: change.BookingID,
		Status:    string(change.Status),
		Comment:   change.Comment,
		ChangedBy: change.ChangedBy,
		CreatedAt: change.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to append booking history: %w", translateError(err))
	}
	return nil
}

// ListByBookingID returns the ledger of a booking, newest first.
func (r *GormHistoryRepository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.StatusChange, error) {
	var models []StatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at DESC, seq DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list booking history: %w", err)
	}

	rows := make([]bookingDomain.StatusChange, len(models))
	for i, m := range models {
		rows[i] = bookingDomain.StatusChange{
			ID:        m.ID,
			BookingID: m.BookingID,
			Status:    bookingDomain.BookingStatus(m.Status),
			Comment:   m.Comment,
			ChangedBy: m.ChangedBy,
			CreatedAt: m.CreatedAt,
		}
	}
	return rows, nil
}
