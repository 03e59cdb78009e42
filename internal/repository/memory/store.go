package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/staynest/service-booking/internal/common/domain"
	bookingDomain "github.com/staynest/service-booking/internal/domain/booking"
	listingDomain "github.com/staynest/service-booking/internal/domain/listing"
)

// Store keeps bookings, their ledger and listings in process memory.
// Transactions run one at a time; writes are staged and applied on commit.
type Store struct {
	txMu sync.Mutex

	mu       sync.RWMutex
	bookings map[uuid.UUID]*bookingDomain.Booking
	history  map[uuid.UUID][]bookingDomain.StatusChange
	listings map[uuid.UUID]*listingDomain.Listing
}

// NewStore builds an empty Store.
func NewStore() *Store {
	return &Store{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
		history:  make(map[uuid.UUID][]bookingDomain.StatusChange),
		listings: make(map[uuid.UUID]*listingDomain.Listing),
	}
}

// Bookings returns a repository that reads and writes committed state directly.
func (s *Store) Bookings() bookingDomain.BookingRepository {
	return &BookingRepository{store: s}
}

// History returns a ledger that writes committed state directly.
func (s *Store) History() bookingDomain.HistoryRepository {
	return &HistoryRepository{store: s}
}

// Listings returns the listing repository.
func (s *Store) Listings() *ListingRepository {
	return &ListingRepository{store: s}
}

// RunInTx implements booking.TxManager. Repositories of the Store itself
// must not be used inside fn.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, uow bookingDomain.UnitOfWork) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	t := &tx{
		bookings: make(map[uuid.UUID]*bookingDomain.Booking),
	}
	if err := fn(ctx, &unit{store: s, tx: t}); err != nil {
		return err
	}
	return s.commit(t)
}

type tx struct {
	bookings map[uuid.UUID]*bookingDomain.Booking
	order    []uuid.UUID
	history  []bookingDomain.StatusChange
}

func (t *tx) stage(b *bookingDomain.Booking) {
	if _, ok := t.bookings[b.ID()]; !ok {
		t.order = append(t.order, b.ID())
	}
	t.bookings[b.ID()] = cloneBooking(b)
}

type unit struct {
	store *Store
	tx    *tx
}

func (u *unit) Bookings() bookingDomain.BookingRepository {
	return &BookingRepository{store: u.store, tx: u.tx}
}

func (u *unit) History() bookingDomain.HistoryRepository {
	return &HistoryRepository{store: u.store, tx: u.tx}
}

// commit applies staged writes after re-checking the no-overlap rule
// against committed state.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range t.order {
		if conflictsLocked(s.bookings, t.bookings[id]) {
			return domain.NewBookingConflictError()
		}
	}
	for _, id := range t.order {
		s.bookings[id] = t.bookings[id]
	}
	for _, change := range t.history {
		s.history[change.BookingID] = append(s.history[change.BookingID], change)
	}
	return nil
}

// conflictsLocked reports whether b would overlap another active booking.
func conflictsLocked(existing map[uuid.UUID]*bookingDomain.Booking, b *bookingDomain.Booking) bool {
	if !b.Status().IsActive() {
		return false
	}
	for id, other := range existing {
		if id == b.ID() || other.ListingID() != b.ListingID() || !other.Status().IsActive() {
			continue
		}
		if other.Stay().Overlaps(b.Stay()) {
			return true
		}
	}
	return false
}

func cloneBooking(b *bookingDomain.Booking) *bookingDomain.Booking {
	return bookingDomain.ReconstructBooking(
		b.ID(), b.ListingID(), b.OwnerID(), b.TenantID(),
		b.Stayers(), b.Stay(), b.TotalPrice(), b.Status(),
		b.Version(), b.CreatedAt(), b.UpdatedAt(),
	)
}

func cloneListing(l *listingDomain.Listing) *listingDomain.Listing {
	return listingDomain.Reconstruct(
		l.ID(), l.OwnerID(), l.Title(), l.Description(),
		l.MaxStayers(), l.NightlyRate(), l.IsActive(),
		l.Version(), l.CreatedAt(), l.UpdatedAt(),
	)
}
