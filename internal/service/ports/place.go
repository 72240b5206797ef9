package ports

import (
	"context"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

// Get-методы возвращают (nil, nil), если запись не найдена

type PlaceRepo interface {
	Create(ctx context.Context, place *model.Place) error
	GetByID(ctx context.Context, id int64) (*model.Place, error)
	List(ctx context.Context) ([]*model.Place, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
}

type TimeslotRepo interface {
	Create(ctx context.Context, slot *model.Timeslot) error
	GetByID(ctx context.Context, id int64) (*model.Timeslot, error)
	List(ctx context.Context) ([]*model.Timeslot, error)
	ListByPlace(ctx context.Context, placeID int64) ([]*model.Timeslot, error)
	Delete(ctx context.Context, id int64) error
}
