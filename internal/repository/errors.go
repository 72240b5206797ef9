package repository

import (
	"errors"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"

	activeSlotConstraint = "bookings_active_slot_uniq"
)

// translateError переводит ошибки Postgres в доменные
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch {
	case pgErr.Code == uniqueViolation && pgErr.ConstraintName == activeSlotConstraint:
		return model.ErrSlotTaken
	case pgErr.Code == foreignKeyViolation:
		return model.ErrNotFound
	}
	return err
}
