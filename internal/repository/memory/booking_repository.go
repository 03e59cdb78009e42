package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
)

// BookingRepository implements booking.BookingRepository over a Store.
type BookingRepository struct {
	store *Store
	tx    *tx
}

// view returns committed bookings overlaid with this transaction's staged writes.
func (r *BookingRepository) view() map[uuid.UUID]*bookingDomain.Booking {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[uuid.UUID]*bookingDomain.Booking, len(r.store.bookings))
	for id, b := range r.store.bookings {
		out[id] = b
	}
	if r.tx != nil {
		for id, b := range r.tx.bookings {
			out[id] = b
		}
	}
	return out
}

func (r *BookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	b, ok := r.view()[id]
	if !ok {
		return nil, domain.NewNotFoundError("Booking", id.String())
	}
	return cloneBooking(b), nil
}

// FindByIDForUpdate needs no row lock since transactions are serialized.
func (r *BookingRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r *BookingRepository) FindByTenantID(ctx context.Context, tenantID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.page(func(b *bookingDomain.Booking) bool { return b.TenantID() == tenantID }, page, limit)
}

func (r *BookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.page(func(b *bookingDomain.Booking) bool { return b.OwnerID() == ownerID }, page, limit)
}

func (r *BookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	return r.page(func(*bookingDomain.Booking) bool { return true }, page, limit)
}

func (r *BookingRepository) page(match func(*bookingDomain.Booking) bool, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var matched []*bookingDomain.Booking
	for _, b := range r.view() {
		if match(b) {
			matched = append(matched, b)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt().Equal(matched[j].CreatedAt()) {
			return matched[i].ID().String() < matched[j].ID().String()
		}
		return matched[i].CreatedAt().After(matched[j].CreatedAt())
	})

	total := int64(len(matched))
	offset := domain.Offset(page, limit)
	if offset >= len(matched) {
		return []*bookingDomain.Booking{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}

	out := make([]*bookingDomain.Booking, 0, end-offset)
	for _, b := range matched[offset:end] {
		out = append(out, cloneBooking(b))
	}
	return out, total, nil
}

func (r *BookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, b := range r.view() {
		counts[string(b.Status())]++
	}
	return counts, nil
}

func (r *BookingRepository) HasOverlap(ctx context.Context, listingID uuid.UUID, stay bookingDomain.StayPeriod, excludeID *uuid.UUID) (bool, error) {
	for id, b := range r.view() {
		if excludeID != nil && id == *excludeID {
			continue
		}
		if b.ListingID() == listingID && b.Status().IsActive() && b.Stay().Overlaps(stay) {
			return true, nil
		}
	}
	return false, nil
}

func (r *BookingRepository) FindCompletable(ctx context.Context, day time.Time, limit int) ([]*bookingDomain.Booking, error) {
	cutoff := bookingDomain.DateOf(day)
	var out []*bookingDomain.Booking
	for _, b := range r.view() {
		if b.Status() == bookingDomain.StatusConfirmed && !b.Stay().CheckOut().After(cutoff) {
			out = append(out, cloneBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Stay().CheckOut().Before(out[j].Stay().CheckOut())
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LockListing is a no-op: the store already runs one transaction at a time.
func (r *BookingRepository) LockListing(ctx context.Context, listingID uuid.UUID) error {
	return nil
}

func (r *BookingRepository) Save(ctx context.Context, b *bookingDomain.Booking) error {
	if _, exists := r.view()[b.ID()]; exists {
		return domain.NewConflictError("booking already exists")
	}
	return r.write(b)
}

func (r *BookingRepository) Update(ctx context.Context, b *bookingDomain.Booking) error {
	current, ok := r.view()[b.ID()]
	if !ok {
		return domain.NewNotFoundError("Booking", b.ID().String())
	}
	if current.Version() != b.Version()-1 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return r.write(b)
}

func (r *BookingRepository) write(b *bookingDomain.Booking) error {
	if r.tx != nil {
		if conflictsLocked(r.view(), b) {
			return domain.NewBookingConflictError()
		}
		r.tx.stage(b)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if conflictsLocked(r.store.bookings, b) {
		return domain.NewBookingConflictError()
	}
	r.store.bookings[b.ID()] = cloneBooking(b)
	return nil
}
