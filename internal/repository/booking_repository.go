package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct {
	*base.Repository
}

func NewBookingRepository(b *base.Repository) *BookingRepository {
	return &BookingRepository{Repository: b}
}

const bookingColumns = `
	id, COALESCE(timeslot_id, 0), COALESCE(place_id, 0), place_name, booking_date,
	start_minute, end_minute, group_id, status, created_at, cancelled_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.TimeslotID,
		&booking.PlaceID,
		&booking.PlaceName,
		&booking.Date,
		(*int)(&booking.Start),
		(*int)(&booking.End),
		&booking.GroupID,
		&booking.Status,
		&booking.CreatedAt,
		&booking.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func nullID(id int64) *int64 {
	if id == 0 {
		return nil
	}
	return &id
}

// Create создаёт новое бронирование.
// Конфликт по bookings_active_slot_uniq возвращается как model.ErrSlotTaken.
func (r *BookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (timeslot_id, place_id, place_name, booking_date, start_minute, end_minute, group_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		nullID(booking.TimeslotID),
		nullID(booking.PlaceID),
		booking.PlaceName,
		booking.Date,
		int(booking.Start),
		int(booking.End),
		booking.GroupID,
		booking.Status,
	).Scan(&booking.ID, &booking.CreatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", translateError(err))
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetActiveBySlot получает активную бронь слота на дату
func (r *BookingRepository) GetActiveBySlot(ctx context.Context, timeslotID int64, date time.Time) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE timeslot_id = $1 AND booking_date = $2 AND status = 'active'
	`

	booking, err := scanBooking(r.QueryRow(ctx, query, timeslotID, date))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active booking by slot: %w", err)
	}

	return booking, nil
}

// ListByGroup возвращает брони группы в [from, to)
func (r *BookingRepository) ListByGroup(ctx context.Context, groupID string, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE group_id = $1 AND booking_date >= $2 AND booking_date < $3
		ORDER BY booking_date, start_minute, id
	`
	return r.list(ctx, query, groupID, from, to)
}

// ListByDateRange возвращает брони всех групп в [from, to)
func (r *BookingRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE booking_date >= $1 AND booking_date < $2
		ORDER BY booking_date, start_minute, id
	`
	return r.list(ctx, query, from, to)
}

func (r *BookingRepository) list(ctx context.Context, query string, args ...any) ([]*model.Booking, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}

// Cancel отменяет активную бронь; false если она уже не активна
func (r *BookingRepository) Cancel(ctx context.Context, id int64, at time.Time) (bool, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancelled_at = $2
		WHERE id = $1 AND status = 'active'
	`

	affected, err := r.ExecAffected(ctx, query, id, at)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}

	return affected > 0, nil
}

// DeleteByTimeslotFrom удаляет брони слота начиная с даты from
func (r *BookingRepository) DeleteByTimeslotFrom(ctx context.Context, timeslotID int64, from time.Time) (int64, error) {
	affected, err := r.ExecAffected(ctx,
		`DELETE FROM bookings WHERE timeslot_id = $1 AND booking_date >= $2`,
		timeslotID, from,
	)
	if err != nil {
		return 0, fmt.Errorf("delete bookings by timeslot: %w", err)
	}
	return affected, nil
}

// LockGroup берёт advisory lock на группу до конца транзакции
func (r *BookingRepository) LockGroup(ctx context.Context, groupID string) error {
	if _, err := r.Conn(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, groupID); err != nil {
		return fmt.Errorf("lock group: %w", err)
	}
	return nil
}
