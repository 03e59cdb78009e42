package repository

import (
	"context"

	"gorm.io/gorm"

	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// GormTxManager runs units of work inside a database transaction.
type GormTxManager struct {
	db *gorm.DB
}

// NewGormTxManager creates a new GormTxManager.
func NewGormTxManager(db *gorm.DB) *GormTxManager {
	return &GormTxManager{db: db}
}

// RunInTx commits when fn returns nil and rolls back otherwise.
func (m *GormTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context, uow bookingDomain.UnitOfWork) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormUnit{
			bookings: NewGormBookingRepository(tx),
			history:  NewGormHistoryRepository(tx),
		})
	})
}

type gormUnit struct {
	bookings *GormBookingRepository
	history  *GormHistoryRepository
}

func (u *gormUnit) Bookings() bookingDomain.BookingRepository { return u.bookings }
func (u *gormUnit) History() bookingDomain.HistoryRepository  { return u.history }
