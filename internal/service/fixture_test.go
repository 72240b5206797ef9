package service

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/quota"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/memory"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	admin = model.Actor{IsAdmin: true}

	// воскресенье после смены недели: активна неделя 3–9 марта
	sundayAfternoon = time.Date(2025, 3, 2, 13, 0, 0, 0, time.UTC)

	monday    = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	tuesday   = monday.AddDate(0, 0, 1)
	wednesday = monday.AddDate(0, 0, 2)
	thursday  = monday.AddDate(0, 0, 3)
	friday    = monday.AddDate(0, 0, 4)
	saturday  = monday.AddDate(0, 0, 5)
)

type fixture struct {
	store       *memory.Store
	clock       *clock.Fixed
	settings    *SettingsService
	allocator   *SlotAllocator
	registry    *ClaimRegistry
	places      *PlaceService
	connections *ConnectionService
	users       *UserService
	engine      *BookingEngine
}

type fixtureOption func(*fixtureDeps)

type fixtureDeps struct {
	bookings ports.BookingRepo
}

func withBookings(wrap func(ports.BookingRepo) ports.BookingRepo) fixtureOption {
	return func(d *fixtureDeps) { d.bookings = wrap(d.bookings) }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	c := clock.NewFixed(sundayAfternoon)
	store := memory.New(c.Now)
	logger := zap.NewNop()

	deps := &fixtureDeps{bookings: store.Bookings()}
	for _, opt := range opts {
		opt(deps)
	}

	resolver := week.NewResolver(c, time.UTC)
	settings := NewSettingsService(store.Settings(), Policy{
		WeeklyQuota: quota.DefaultWeeklyLimit,
		Cutover:     week.DefaultRule(),
	}, logger)
	allocator := NewSlotAllocator(store, store.Places(), store.Timeslots(), deps.bookings, c, logger)
	registry := NewClaimRegistry(store, store.Connections(), store.Claims(), logger)
	places := NewPlaceService(store, store.Places(), store.Timeslots(), deps.bookings, resolver, logger)
	connections := NewConnectionService(store, store.Connections(), store.Claims(), logger)
	users := NewUserService(store.Users(), []int64{1000}, logger)
	engine := NewBookingEngine(
		settings, resolver, allocator, registry, places, connections,
		deps.bookings, store.Claims(),
		map[string]string{"wtv@wh.de": "WTV"},
		logger,
	)

	return &fixture{
		store:       store,
		clock:       c,
		settings:    settings,
		allocator:   allocator,
		registry:    registry,
		places:      places,
		connections: connections,
		users:       users,
		engine:      engine,
	}
}

func group(id string) model.Actor {
	return model.Actor{GroupID: id}
}

// addPlace создаёт площадку со слотами по одному часу начиная с 14:00
func (f *fixture) addPlace(t *testing.T, name string, slots int) []*model.Timeslot {
	t.Helper()
	ranges := make([]model.Timeslot, 0, slots)
	for i := 0; i < slots; i++ {
		ranges = append(ranges, model.Timeslot{
			Start: model.NewTimeOfDay(14+i, 0),
			End:   model.NewTimeOfDay(15+i, 0),
		})
	}
	place, err := f.places.CreatePlace(context.Background(), admin, name, ranges...)
	require.NoError(t, err)
	require.Len(t, place.Timeslots, slots)
	return place.Timeslots
}

func (f *fixture) addConnection(t *testing.T, line string, capacity int) *model.Connection {
	t.Helper()
	conn := &model.Connection{
		Line:      line,
		Departure: model.NewTimeOfDay(9, 15),
		Stop:      "Hauptbahnhof",
		Capacity:  capacity,
	}
	require.NoError(t, f.connections.Create(context.Background(), admin, conn))
	return conn
}
