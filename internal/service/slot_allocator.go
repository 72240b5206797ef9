package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"go.uber.org/zap"
)

// SlotAllocator grants and revokes exclusive ownership of one
// (timeslot, date) unit. The read-side checks only shortcut the common
// case; the storage uniqueness constraint decides concurrent races.
type SlotAllocator struct {
	tx        ports.TxManager
	places    ports.PlaceRepo
	timeslots ports.TimeslotRepo
	bookings  ports.BookingRepo
	clock     clock.Clock
	logger    *zap.Logger
}

func NewSlotAllocator(
	tx ports.TxManager,
	places ports.PlaceRepo,
	timeslots ports.TimeslotRepo,
	bookings ports.BookingRepo,
	c clock.Clock,
	logger *zap.Logger,
) *SlotAllocator {
	return &SlotAllocator{
		tx:        tx,
		places:    places,
		timeslots: timeslots,
		bookings:  bookings,
		clock:     c,
		logger:    logger,
	}
}

// Remaining возвращает остаток квоты группы в окне
func (a *SlotAllocator) Remaining(ctx context.Context, groupID string, w quota.Window) (int, error) {
	bookings, err := a.bookings.ListByGroup(ctx, groupID, w.Start, w.End)
	if err != nil {
		return 0, fmt.Errorf("list group bookings: %w", err)
	}
	return quota.Remaining(groupID, bookings, w.Window, w.Limit), nil
}

// Reserve бронирует слот на дату для группы
func (a *SlotAllocator) Reserve(ctx context.Context, groupID string, timeslotID int64, date time.Time, w quota.Window) (*model.Booking, error) {
	date = model.DateOf(date)
	if !w.Contains(date) {
		return nil, fmt.Errorf("%w: date %s is outside the active week", model.ErrInvalidInput, date.Format(model.DateLayout))
	}

	var booking *model.Booking
	err := a.tx.WithinTx(ctx, func(ctx context.Context) error {
		// Квоту группы проверяем под блокировкой, чтобы параллельные запросы не превысили её
		if err := a.bookings.LockGroup(ctx, groupID); err != nil {
			return err
		}

		slot, err := a.timeslots.GetByID(ctx, timeslotID)
		if err != nil {
			return fmt.Errorf("get timeslot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("timeslot %d: %w", timeslotID, model.ErrNotFound)
		}

		left, err := a.Remaining(ctx, groupID, w)
		if err != nil {
			return err
		}
		if left == 0 {
			return model.ErrQuotaExceeded
		}

		current, err := a.bookings.GetActiveBySlot(ctx, timeslotID, date)
		if err != nil {
			return fmt.Errorf("get active booking: %w", err)
		}
		if current != nil {
			return model.ErrSlotTaken
		}

		place, err := a.places.GetByID(ctx, slot.PlaceID)
		if err != nil {
			return fmt.Errorf("get place: %w", err)
		}
		if place == nil {
			return fmt.Errorf("place %d: %w", slot.PlaceID, model.ErrNotFound)
		}

		booking = &model.Booking{
			TimeslotID: slot.ID,
			PlaceID:    place.ID,
			PlaceName:  place.Name,
			Date:       date,
			Start:      slot.Start,
			End:        slot.End,
			GroupID:    groupID,
			Status:     model.BookingStatusActive,
		}
		return a.bookings.Create(ctx, booking)
	})
	if err != nil {
		if errors.Is(err, model.ErrQuotaExceeded) || errors.Is(err, model.ErrSlotTaken) {
			a.logger.Info("Reservation rejected",
				zap.String("group_id", groupID),
				zap.Int64("timeslot_id", timeslotID),
				zap.String("date", date.Format(model.DateLayout)),
				zap.String("reason", model.Kind(err)),
			)
		}
		return nil, model.Classify(err)
	}

	a.logger.Info("Booking reserved",
		zap.Int64("booking_id", booking.ID),
		zap.String("group_id", groupID),
		zap.Int64("timeslot_id", timeslotID),
		zap.String("date", date.Format(model.DateLayout)),
	)

	return booking, nil
}

// Cancel отменяет бронь. Повторная отмена ничего не меняет и не считается ошибкой.
func (a *SlotAllocator) Cancel(ctx context.Context, bookingID int64, requesterGroupID string, isAdmin bool) (*model.Booking, error) {
	booking, err := a.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("get booking: %w", err))
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, model.ErrNotFound)
	}
	if !isAdmin && !booking.OwnedBy(requesterGroupID) {
		return nil, model.ErrForbidden
	}
	if !booking.IsActive() {
		return booking, nil
	}

	now := a.clock.Now()
	changed, err := a.bookings.Cancel(ctx, bookingID, now)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("cancel booking: %w", err))
	}
	if !changed {
		// отменили параллельно, отдаём актуальное состояние
		latest, err := a.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, model.Classify(fmt.Errorf("get booking: %w", err))
		}
		if latest == nil {
			return nil, fmt.Errorf("booking %d: %w", bookingID, model.ErrNotFound)
		}
		return latest, nil
	}

	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now

	a.logger.Info("Booking cancelled",
		zap.Int64("booking_id", bookingID),
		zap.String("group_id", booking.GroupID),
		zap.Bool("by_admin", isAdmin && !booking.OwnedBy(requesterGroupID)),
	)

	return booking, nil
}
