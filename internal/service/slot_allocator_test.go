package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveQuotaScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slots := f.addPlace(t, "Bolzplatz", 2)
	g := group("7@wh.de")

	var bookings []*model.Booking
	for _, day := range []time.Time{monday, tuesday, wednesday, thursday} {
		for _, slot := range slots {
			b, err := f.engine.Reserve(ctx, g, ReserveRequest{TimeslotID: slot.ID, Date: day})
			require.NoError(t, err)
			bookings = append(bookings, b)
		}
	}

	left, err := f.engine.Remaining(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 0, left)

	_, err = f.engine.Reserve(ctx, g, ReserveRequest{TimeslotID: slots[0].ID, Date: friday})
	assert.ErrorIs(t, err, model.ErrQuotaExceeded)

	_, err = f.engine.Cancel(ctx, g, bookings[3].ID)
	require.NoError(t, err)

	left, err = f.engine.Remaining(ctx, g.GroupID)
	require.NoError(t, err)
	assert.Equal(t, 1, left)

	_, err = f.engine.Reserve(ctx, g, ReserveRequest{TimeslotID: slots[0].ID, Date: friday})
	require.NoError(t, err)
}

func TestReserveSlotTakenAndFreedByCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	first, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: tuesday})
	require.NoError(t, err)

	_, err = f.engine.Reserve(ctx, group("2@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: tuesday})
	assert.ErrorIs(t, err, model.ErrSlotTaken)

	_, err = f.engine.Cancel(ctx, group("1@wh.de"), first.ID)
	require.NoError(t, err)

	second, err := f.engine.Reserve(ctx, group("2@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: tuesday})
	require.NoError(t, err)
	assert.Equal(t, "2@wh.de", second.GroupID)
}

func TestReserveConcurrentExclusivity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	const callers = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
		taken   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.engine.Reserve(ctx, group(fmt.Sprintf("%d@wh.de", i)), ReserveRequest{TimeslotID: slot.ID, Date: wednesday})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				granted++
			case errors.Is(err, model.ErrSlotTaken):
				taken++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, granted)
	assert.Equal(t, callers-1, taken)

	bookings, err := f.store.Bookings().ListByDateRange(ctx, wednesday, thursday)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestReserveConcurrentQuota(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.settings.SetWeeklyQuota(ctx, admin, 2))
	slots := f.addPlace(t, "Halle", 5)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for _, slot := range slots {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, err := f.engine.Reserve(ctx, group("3@wh.de"), ReserveRequest{TimeslotID: id, Date: monday})
			if err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}(slot.ID)
	}
	wg.Wait()

	assert.Equal(t, 2, granted)
}

func TestReserveValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	tests := []struct {
		name  string
		actor model.Actor
		req   ReserveRequest
		want  error
	}{
		{"no group", model.Actor{}, ReserveRequest{TimeslotID: slot.ID, Date: monday}, model.ErrForbidden},
		{"other group", group("1@wh.de"), ReserveRequest{GroupID: "2@wh.de", TimeslotID: slot.ID, Date: monday}, model.ErrForbidden},
		{"previous week", group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday.AddDate(0, 0, -7)}, model.ErrInvalidInput},
		{"next week", group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday.AddDate(0, 0, 7)}, model.ErrInvalidInput},
		{"weekend", group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: saturday}, model.ErrInvalidInput},
		{"unknown timeslot", group("1@wh.de"), ReserveRequest{TimeslotID: 9999, Date: monday}, model.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Reserve(ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReservePastDay(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]
	f.clock.Set(time.Date(2025, 3, 5, 10, 0, 0, 0, time.UTC))

	_, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: wednesday})
	assert.NoError(t, err)
}

func TestAdminReservesOnBehalf(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	b, err := f.engine.Reserve(ctx, admin, ReserveRequest{GroupID: "WTV@wh.de", TimeslotID: slot.ID, Date: friday})
	require.NoError(t, err)
	assert.Equal(t, "wtv@wh.de", b.GroupID)
	assert.Equal(t, "Halle", b.PlaceName)
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	b, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	require.NoError(t, err)

	_, err = f.engine.Cancel(ctx, group("2@wh.de"), b.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.engine.Cancel(ctx, group("1@wh.de"), 9999)
	assert.ErrorIs(t, err, model.ErrNotFound)

	cancelled, err := f.engine.Cancel(ctx, group("1@wh.de"), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	stamp := *cancelled.CancelledAt

	f.clock.Advance(time.Hour)
	again, err := f.engine.Cancel(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, again.Status)
	assert.True(t, stamp.Equal(*again.CancelledAt))
}

func TestAdminCancelsAnyBooking(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	b, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	require.NoError(t, err)

	cancelled, err := f.engine.Cancel(ctx, admin, b.ID)
	require.NoError(t, err)
	assert.False(t, cancelled.IsActive())
}

func TestReserveConstraintDecidesWhenPrecheckMisses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withBookings(func(r ports.BookingRepo) ports.BookingRepo {
		return staleReadBookings{r}
	}))
	slot := f.addPlace(t, "Halle", 1)[0]

	_, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	require.NoError(t, err)

	_, err = f.engine.Reserve(ctx, group("2@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	assert.ErrorIs(t, err, model.ErrSlotTaken)
	assert.Equal(t, "slot_taken", model.Kind(err))

	remaining, err := f.engine.Remaining(ctx, "2@wh.de")
	require.NoError(t, err)
	assert.Equal(t, 8, remaining)
}

// staleReadBookings не видит занятых ячеек, решает только ограничение хранилища.
type staleReadBookings struct {
	ports.BookingRepo
}

func (staleReadBookings) GetActiveBySlot(context.Context, int64, time.Time) (*model.Booking, error) {
	return nil, nil
}

type unavailableBookings struct {
	ports.BookingRepo
}

func (unavailableBookings) ListByGroup(context.Context, string, time.Time, time.Time) ([]*model.Booking, error) {
	return nil, errors.New("connection refused")
}

func TestReserveStorageUnavailable(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, withBookings(func(r ports.BookingRepo) ports.BookingRepo {
		return unavailableBookings{r}
	}))
	slot := f.addPlace(t, "Halle", 1)[0]

	_, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: monday})
	assert.ErrorIs(t, err, model.ErrStorageUnavailable)
	assert.Equal(t, "storage_unavailable", model.Kind(err))
}
