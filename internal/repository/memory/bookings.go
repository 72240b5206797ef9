package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

type BookingRepository struct{ s *Store }

func keyOf(timeslotID int64, date time.Time) slotKey {
	return slotKey{timeslotID: timeslotID, date: date.Format(model.DateLayout)}
}

// Create вставляет бронь; уникальность активной брони на (слот, дата)
// проверяется индексом, как partial unique index в Postgres
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	defer r.s.lock(ctx)()

	indexed := booking.IsActive() && booking.TimeslotID != 0
	key := keyOf(booking.TimeslotID, booking.Date)
	if _, taken := r.s.st.activeSlots[key]; indexed && taken {
		return fmt.Errorf("create booking: %w", model.ErrSlotTaken)
	}

	booking.ID = r.s.st.nextID()
	booking.CreatedAt = r.s.now()
	r.s.st.bookings[booking.ID] = *booking
	if indexed {
		r.s.st.activeSlots[key] = booking.ID
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.bookings[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (r *BookingRepository) GetActiveBySlot(ctx context.Context, timeslotID int64, date time.Time) (*model.Booking, error) {
	defer r.s.lock(ctx)()
	id, ok := r.s.st.activeSlots[keyOf(timeslotID, date)]
	if !ok {
		return nil, nil
	}
	b := r.s.st.bookings[id]
	return &b, nil
}

func (r *BookingRepository) ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*model.Booking, error) {
	defer r.s.lock(ctx)()
	return r.s.listBookings(func(b model.Booking) bool {
		return b.GroupID == groupID && inRange(b.Date, from, to)
	}), nil
}

func (r *BookingRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	defer r.s.lock(ctx)()
	return r.s.listBookings(func(b model.Booking) bool {
		return inRange(b.Date, from, to)
	}), nil
}

func (r *BookingRepository) Cancel(ctx context.Context, id int64, at time.Time) (bool, error) {
	defer r.s.lock(ctx)()
	b, ok := r.s.st.bookings[id]
	if !ok || !b.IsActive() {
		return false, nil
	}
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &at
	r.s.st.bookings[id] = b
	delete(r.s.st.activeSlots, keyOf(b.TimeslotID, b.Date))
	return true, nil
}

func (r *BookingRepository) DeleteByTimeslotFrom(ctx context.Context, timeslotID int64, from time.Time) (int64, error) {
	defer r.s.lock(ctx)()
	var deleted int64
	for id, b := range r.s.st.bookings {
		if b.TimeslotID == timeslotID && !b.Date.Before(from) {
			delete(r.s.st.bookings, id)
			delete(r.s.st.activeSlots, keyOf(b.TimeslotID, b.Date))
			deleted++
		}
	}
	return deleted, nil
}

// LockGroup ничего не делает: WithinTx уже сериализует все транзакции
func (r *BookingRepository) LockGroup(ctx context.Context, groupID string) error {
	return nil
}

func inRange(date, from, to time.Time) bool {
	return !date.Before(from) && date.Before(to)
}

func (s *Store) listBookings(keep func(model.Booking) bool) []*model.Booking {
	bookings := make([]*model.Booking, 0)
	for _, b := range s.st.bookings {
		if keep(b) {
			bookings = append(bookings, &b)
		}
	}
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ID < b.ID
	})
	return bookings
}
