package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"go.uber.org/zap"
)

// PlaceService administers places and their timeslots.
type PlaceService struct {
	tx        ports.TxManager
	places    ports.PlaceRepo
	timeslots ports.TimeslotRepo
	bookings  ports.BookingRepo
	resolver  *week.Resolver
	logger    *zap.Logger
}

func NewPlaceService(
	tx ports.TxManager,
	places ports.PlaceRepo,
	timeslots ports.TimeslotRepo,
	bookings ports.BookingRepo,
	resolver *week.Resolver,
	logger *zap.Logger,
) *PlaceService {
	return &PlaceService{
		tx:        tx,
		places:    places,
		timeslots: timeslots,
		bookings:  bookings,
		resolver:  resolver,
		logger:    logger,
	}
}

// ListPlaces возвращает площадки со слотами
func (s *PlaceService) ListPlaces(ctx context.Context) ([]*model.Place, error) {
	places, err := s.places.List(ctx)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list places: %w", err))
	}

	slots, err := s.timeslots.List(ctx)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list timeslots: %w", err))
	}

	byPlace := make(map[int64][]*model.Timeslot, len(places))
	for _, slot := range slots {
		byPlace[slot.PlaceID] = append(byPlace[slot.PlaceID], slot)
	}
	for _, p := range places {
		p.Timeslots = byPlace[p.ID]
	}

	return places, nil
}

// CreatePlace создаёт площадку и, если переданы, её первые слоты
func (s *PlaceService) CreatePlace(ctx context.Context, actor model.Actor, name string, slots ...model.Timeslot) (*model.Place, error) {
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}
	name, err := model.ValidatePlaceName(name)
	if err != nil {
		return nil, err
	}
	for i := range slots {
		if err := slots[i].Validate(); err != nil {
			return nil, err
		}
	}

	place := &model.Place{Name: name}
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.places.Create(ctx, place); err != nil {
			return err
		}
		for i := range slots {
			slot := &model.Timeslot{PlaceID: place.ID, Start: slots[i].Start, End: slots[i].End}
			if err := s.timeslots.Create(ctx, slot); err != nil {
				return err
			}
			place.Timeslots = append(place.Timeslots, slot)
		}
		return nil
	})
	if err != nil {
		return nil, model.Classify(err)
	}

	s.logger.Info("Place created",
		zap.Int64("place_id", place.ID),
		zap.String("name", place.Name),
		zap.Int("timeslots", len(place.Timeslots)),
	)

	return place, nil
}

// RenamePlace переименовывает площадку
func (s *PlaceService) RenamePlace(ctx context.Context, actor model.Actor, id int64, name string) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}
	name, err := model.ValidatePlaceName(name)
	if err != nil {
		return err
	}
	if err := s.places.Rename(ctx, id, name); err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Place renamed", zap.Int64("place_id", id), zap.String("name", name))
	return nil
}

// DeletePlace удаляет площадку, её слоты и будущие брони
func (s *PlaceService) DeletePlace(ctx context.Context, actor model.Actor, id int64) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		place, err := s.places.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get place: %w", err)
		}
		if place == nil {
			return fmt.Errorf("place %d: %w", id, model.ErrNotFound)
		}

		slots, err := s.timeslots.ListByPlace(ctx, id)
		if err != nil {
			return fmt.Errorf("list timeslots: %w", err)
		}
		for _, slot := range slots {
			n, err := s.bookings.DeleteByTimeslotFrom(ctx, slot.ID, s.resolver.Today())
			if err != nil {
				return err
			}
			removed += n
		}

		return s.places.Delete(ctx, id)
	})
	if err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Place deleted",
		zap.Int64("place_id", id),
		zap.Int64("future_bookings_removed", removed),
	)
	return nil
}

// AddTimeslot добавляет слот площадке
func (s *PlaceService) AddTimeslot(ctx context.Context, actor model.Actor, placeID int64, start, end model.TimeOfDay) (*model.Timeslot, error) {
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}

	slot := &model.Timeslot{PlaceID: placeID, Start: start, End: end}
	if err := slot.Validate(); err != nil {
		return nil, err
	}

	place, err := s.places.GetByID(ctx, placeID)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("get place: %w", err))
	}
	if place == nil {
		return nil, fmt.Errorf("place %d: %w", placeID, model.ErrNotFound)
	}

	if err := s.timeslots.Create(ctx, slot); err != nil {
		return nil, model.Classify(err)
	}

	s.logger.Info("Timeslot added",
		zap.Int64("timeslot_id", slot.ID),
		zap.Int64("place_id", placeID),
		zap.Stringer("start", slot.Start),
		zap.Stringer("end", slot.End),
	)

	return slot, nil
}

// DeleteTimeslot удаляет слот и его будущие брони; прошлые остаются
func (s *PlaceService) DeleteTimeslot(ctx context.Context, actor model.Actor, id int64) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		slot, err := s.timeslots.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get timeslot: %w", err)
		}
		if slot == nil {
			return fmt.Errorf("timeslot %d: %w", id, model.ErrNotFound)
		}

		removed, err = s.bookings.DeleteByTimeslotFrom(ctx, id, s.resolver.Today())
		if err != nil {
			return err
		}

		return s.timeslots.Delete(ctx, id)
	})
	if err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Timeslot deleted",
		zap.Int64("timeslot_id", id),
		zap.Int64("future_bookings_removed", removed),
	)
	return nil
}
