package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestTranslateError(t *testing.T) {
	other := errors.New("connection reset")

	tests := []struct {
		name string
		in   error
		want error
	}{
		{
			name: "active slot conflict",
			in:   &pgconn.PgError{Code: "23505", ConstraintName: "bookings_active_slot_uniq"},
			want: model.ErrSlotTaken,
		},
		{
			name: "wrapped active slot conflict",
			in:   fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "bookings_active_slot_uniq"}),
			want: model.ErrSlotTaken,
		},
		{
			name: "missing parent row",
			in:   &pgconn.PgError{Code: "23503", ConstraintName: "timeslots_place_id_fkey"},
			want: model.ErrNotFound,
		},
		{
			name: "other driver error",
			in:   other,
			want: other,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, translateError(tt.in), tt.want)
		})
	}

	other23505 := &pgconn.PgError{Code: "23505", ConstraintName: "users_telegram_id_key"}
	assert.NotErrorIs(t, translateError(other23505), model.ErrSlotTaken)
}
