package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

type PlaceRepository struct{ s *Store }

func (r *PlaceRepository) Create(ctx context.Context, place *model.Place) error {
	defer r.s.lock(ctx)()
	place.ID = r.s.st.nextID()
	place.CreatedAt = r.s.now()
	stored := *place
	stored.Timeslots = nil
	r.s.st.places[place.ID] = stored
	return nil
}

func (r *PlaceRepository) GetByID(ctx context.Context, id int64) (*model.Place, error) {
	defer r.s.lock(ctx)()
	p, ok := r.s.st.places[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *PlaceRepository) List(ctx context.Context) ([]*model.Place, error) {
	defer r.s.lock(ctx)()
	places := make([]*model.Place, 0, len(r.s.st.places))
	for _, p := range r.s.st.places {
		places = append(places, &p)
	}
	sort.Slice(places, func(i, j int) bool {
		if places[i].Name != places[j].Name {
			return places[i].Name < places[j].Name
		}
		return places[i].ID < places[j].ID
	})
	return places, nil
}

func (r *PlaceRepository) Rename(ctx context.Context, id int64, name string) error {
	defer r.s.lock(ctx)()
	p, ok := r.s.st.places[id]
	if !ok {
		return fmt.Errorf("place %d: %w", id, model.ErrNotFound)
	}
	p.Name = name
	r.s.st.places[id] = p
	return nil
}

// Delete удаляет площадку вместе с её слотами, как ON DELETE CASCADE
func (r *PlaceRepository) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.places[id]; !ok {
		return fmt.Errorf("place %d: %w", id, model.ErrNotFound)
	}
	delete(r.s.st.places, id)
	for slotID, slot := range r.s.st.timeslots {
		if slot.PlaceID == id {
			r.s.deleteTimeslot(slotID)
		}
	}
	for bookingID, b := range r.s.st.bookings {
		if b.PlaceID == id {
			b.PlaceID = 0
			r.s.st.bookings[bookingID] = b
		}
	}
	return nil
}

type TimeslotRepository struct{ s *Store }

func (r *TimeslotRepository) Create(ctx context.Context, slot *model.Timeslot) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.places[slot.PlaceID]; !ok {
		return fmt.Errorf("create timeslot: place %d: %w", slot.PlaceID, model.ErrNotFound)
	}
	slot.ID = r.s.st.nextID()
	slot.CreatedAt = r.s.now()
	r.s.st.timeslots[slot.ID] = *slot
	return nil
}

func (r *TimeslotRepository) GetByID(ctx context.Context, id int64) (*model.Timeslot, error) {
	defer r.s.lock(ctx)()
	slot, ok := r.s.st.timeslots[id]
	if !ok {
		return nil, nil
	}
	return &slot, nil
}

func (r *TimeslotRepository) List(ctx context.Context) ([]*model.Timeslot, error) {
	defer r.s.lock(ctx)()
	return r.s.listTimeslots(func(model.Timeslot) bool { return true }), nil
}

func (r *TimeslotRepository) ListByPlace(ctx context.Context, placeID int64) ([]*model.Timeslot, error) {
	defer r.s.lock(ctx)()
	return r.s.listTimeslots(func(t model.Timeslot) bool { return t.PlaceID == placeID }), nil
}

func (r *TimeslotRepository) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.timeslots[id]; !ok {
		return fmt.Errorf("timeslot %d: %w", id, model.ErrNotFound)
	}
	r.s.deleteTimeslot(id)
	return nil
}

func (s *Store) listTimeslots(keep func(model.Timeslot) bool) []*model.Timeslot {
	slots := make([]*model.Timeslot, 0)
	for _, t := range s.st.timeslots {
		if keep(t) {
			slots = append(slots, &t)
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Start != slots[j].Start {
			return slots[i].Start < slots[j].Start
		}
		return slots[i].ID < slots[j].ID
	})
	return slots
}

// deleteTimeslot отвязывает брони от слота, как ON DELETE SET NULL
func (s *Store) deleteTimeslot(id int64) {
	delete(s.st.timeslots, id)
	for key := range s.st.activeSlots {
		if key.timeslotID == id {
			delete(s.st.activeSlots, key)
		}
	}
	for bookingID, b := range s.st.bookings {
		if b.TimeslotID == id {
			b.TimeslotID = 0
			s.st.bookings[bookingID] = b
		}
	}
}
