package ports

import (
	"context"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

type BookingRepo interface {
	// Create returns model.ErrSlotTaken when an active booking for the
	// same (timeslot, date) already exists. The check is a storage
	// uniqueness constraint, not a read.
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id int64) (*model.Booking, error)
	GetActiveBySlot(ctx context.Context, timeslotID int64, date time.Time) (*model.Booking, error)
	// ListByGroup returns bookings of a group dated within [from, to).
	ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*model.Booking, error)
	// ListByDateRange returns bookings of all groups dated within [from, to).
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Booking, error)
	// Cancel flips an active booking to cancelled. It reports false when
	// the booking was not active any more.
	Cancel(ctx context.Context, id int64, at time.Time) (bool, error)
	// DeleteByTimeslotFrom removes bookings of a timeslot dated on or after from.
	DeleteByTimeslotFrom(ctx context.Context, timeslotID int64, from time.Time) (int64, error)
	// LockGroup serializes quota checks of one group until the
	// surrounding transaction ends.
	LockGroup(ctx context.Context, groupID string) error
}
