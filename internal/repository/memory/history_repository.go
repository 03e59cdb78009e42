package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// HistoryRepository implements booking.HistoryRepository over a Store.
type HistoryRepository struct {
	store *Store
	tx    *tx
}

func (r *HistoryRepository) Append(ctx context.Context, change bookingDomain.StatusChange) error {
	if r.tx != nil {
		if _, staged := r.tx.bookings[change.BookingID]; !staged && !r.committed(change.BookingID) {
			return domain.NewNotFoundError("Booking", change.BookingID.String())
		}
		r.tx.history = append(r.tx.history, change)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.bookings[change.BookingID]; !ok {
		return domain.NewNotFoundError("Booking", change.BookingID.String())
	}
	r.store.history[change.BookingID] = append(r.store.history[change.BookingID], change)
	return nil
}

func (r *HistoryRepository) committed(bookingID uuid.UUID) bool {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.bookings[bookingID]
	return ok
}

// ListByBookingID returns rows newest first.
func (r *HistoryRepository) ListByBookingID(ctx context.Context, bookingID uuid.UUID) ([]bookingDomain.StatusChange, error) {
	r.store.mu.RLock()
	rows := append([]bookingDomain.StatusChange(nil), r.store.history[bookingID]...)
	r.store.mu.RUnlock()

	if r.tx != nil {
		for _, change := range r.tx.history {
			if change.BookingID == bookingID {
				rows = append(rows, change)
			}
		}
	}

	out := make([]bookingDomain.StatusChange, len(rows))
	for i, row := range rows {
		out[len(rows)-1-i] = row
	}
	return out, nil
}
