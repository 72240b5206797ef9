package service

import (
	"context"
	"testing"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlaceValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.places.CreatePlace(ctx, group("1@wh.de"), "Halle")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = f.places.CreatePlace(ctx, admin, "   ")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	_, err = f.places.CreatePlace(ctx, admin, "Halle", model.Timeslot{
		Start: model.NewTimeOfDay(18, 0),
		End:   model.NewTimeOfDay(17, 0),
	})
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	places, err := f.places.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, places)
}

func TestListPlacesOrdersSlots(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	place, err := f.places.CreatePlace(ctx, admin, "Tennisplatz")
	require.NoError(t, err)
	_, err = f.places.AddTimeslot(ctx, admin, place.ID, model.NewTimeOfDay(18, 0), model.NewTimeOfDay(19, 0))
	require.NoError(t, err)
	_, err = f.places.AddTimeslot(ctx, admin, place.ID, model.NewTimeOfDay(16, 30), model.NewTimeOfDay(17, 30))
	require.NoError(t, err)
	f.addPlace(t, "Bolzplatz", 1)

	_, err = f.places.AddTimeslot(ctx, admin, 9999, model.NewTimeOfDay(16, 0), model.NewTimeOfDay(17, 0))
	assert.ErrorIs(t, err, model.ErrNotFound)

	places, err := f.places.ListPlaces(ctx)
	require.NoError(t, err)
	require.Len(t, places, 2)
	assert.Equal(t, "Bolzplatz", places[0].Name)
	assert.Equal(t, "Tennisplatz", places[1].Name)
	require.Len(t, places[1].Timeslots, 2)
	assert.Equal(t, "16:30", places[1].Timeslots[0].Start.String())

	require.NoError(t, f.places.RenamePlace(ctx, admin, place.ID, "Tennis"))
	err = f.places.RenamePlace(ctx, admin, 9999, "Tennis")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeleteTimeslotRemovesFutureBookingsOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slot := f.addPlace(t, "Halle", 1)[0]

	past := &model.Booking{
		TimeslotID: slot.ID,
		PlaceID:    slot.PlaceID,
		PlaceName:  "Halle",
		Date:       monday.AddDate(0, 0, -7),
		Start:      slot.Start,
		End:        slot.End,
		GroupID:    "1@wh.de",
		Status:     model.BookingStatusActive,
	}
	require.NoError(t, f.store.Bookings().Create(ctx, past))

	future, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slot.ID, Date: tuesday})
	require.NoError(t, err)

	err = f.places.DeleteTimeslot(ctx, group("1@wh.de"), slot.ID)
	assert.ErrorIs(t, err, model.ErrForbidden)

	require.NoError(t, f.places.DeleteTimeslot(ctx, admin, slot.ID))

	gone, err := f.store.Bookings().GetByID(ctx, future.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	kept, err := f.store.Bookings().GetByID(ctx, past.ID)
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.Zero(t, kept.TimeslotID)
	assert.Equal(t, "Halle", kept.PlaceName)

	err = f.places.DeleteTimeslot(ctx, admin, slot.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDeletePlaceCascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	slots := f.addPlace(t, "Halle", 2)

	b, err := f.engine.Reserve(ctx, group("1@wh.de"), ReserveRequest{TimeslotID: slots[1].ID, Date: wednesday})
	require.NoError(t, err)

	require.NoError(t, f.places.DeletePlace(ctx, admin, slots[0].PlaceID))

	places, err := f.places.ListPlaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, places)

	gone, err := f.store.Bookings().GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	left, err := f.engine.Remaining(ctx, "1@wh.de")
	require.NoError(t, err)
	assert.Equal(t, 8, left)
}
