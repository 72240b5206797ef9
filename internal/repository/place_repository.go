package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type PlaceRepository struct {
	*base.Repository
}

func NewPlaceRepository(b *base.Repository) *PlaceRepository {
	return &PlaceRepository{Repository: b}
}

// Create создаёт новую площадку
func (r *PlaceRepository) Create(ctx context.Context, place *model.Place) error {
	query := `
		INSERT INTO places (name)
		VALUES ($1)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, place.Name).Scan(&place.ID, &place.CreatedAt)
	if err != nil {
		return fmt.Errorf("create place: %w", err)
	}

	return nil
}

// GetByID получает площадку по ID
func (r *PlaceRepository) GetByID(ctx context.Context, id int64) (*model.Place, error) {
	query := `SELECT id, name, created_at FROM places WHERE id = $1`

	var place model.Place
	err := r.QueryRow(ctx, query, id).Scan(&place.ID, &place.Name, &place.CreatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get place by id: %w", err)
	}

	return &place, nil
}

// List возвращает все площадки по имени
func (r *PlaceRepository) List(ctx context.Context) ([]*model.Place, error) {
	query := `SELECT id, name, created_at FROM places ORDER BY name, id`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list places: %w", err)
	}
	defer rows.Close()

	places := make([]*model.Place, 0)
	for rows.Next() {
		var place model.Place
		if err := rows.Scan(&place.ID, &place.Name, &place.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan place: %w", err)
		}
		places = append(places, &place)
	}

	return places, rows.Err()
}

// Rename переименовывает площадку
func (r *PlaceRepository) Rename(ctx context.Context, id int64, name string) error {
	affected, err := r.ExecAffected(ctx, `UPDATE places SET name = $2 WHERE id = $1`, id, name)
	if err != nil {
		return fmt.Errorf("rename place: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("rename place: %w", model.ErrNotFound)
	}
	return nil
}

// Delete удаляет площадку; слоты удаляются каскадом, брони теряют ссылку
func (r *PlaceRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM places WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete place: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete place: %w", model.ErrNotFound)
	}
	return nil
}

type TimeslotRepository struct {
	*base.Repository
}

func NewTimeslotRepository(b *base.Repository) *TimeslotRepository {
	return &TimeslotRepository{Repository: b}
}

const timeslotColumns = `id, place_id, start_minute, end_minute, created_at`

func scanTimeslot(row pgx.Row) (*model.Timeslot, error) {
	var slot model.Timeslot
	err := row.Scan(
		&slot.ID,
		&slot.PlaceID,
		(*int)(&slot.Start),
		(*int)(&slot.End),
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

// Create создаёт новый слот площадки
func (r *TimeslotRepository) Create(ctx context.Context, slot *model.Timeslot) error {
	query := `
		INSERT INTO timeslots (place_id, start_minute, end_minute)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, slot.PlaceID, int(slot.Start), int(slot.End)).
		Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("create timeslot: %w", translateError(err))
	}

	return nil
}

// GetByID получает слот по ID
func (r *TimeslotRepository) GetByID(ctx context.Context, id int64) (*model.Timeslot, error) {
	query := `SELECT ` + timeslotColumns + ` FROM timeslots WHERE id = $1`

	slot, err := scanTimeslot(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get timeslot by id: %w", err)
	}

	return slot, nil
}

// List возвращает все слоты
func (r *TimeslotRepository) List(ctx context.Context) ([]*model.Timeslot, error) {
	query := `SELECT ` + timeslotColumns + ` FROM timeslots ORDER BY start_minute, id`
	return r.list(ctx, query)
}

// ListByPlace возвращает слоты площадки по времени начала
func (r *TimeslotRepository) ListByPlace(ctx context.Context, placeID int64) ([]*model.Timeslot, error) {
	query := `SELECT ` + timeslotColumns + ` FROM timeslots WHERE place_id = $1 ORDER BY start_minute, id`
	return r.list(ctx, query, placeID)
}

func (r *TimeslotRepository) list(ctx context.Context, query string, args ...any) ([]*model.Timeslot, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list timeslots: %w", err)
	}
	defer rows.Close()

	slots := make([]*model.Timeslot, 0)
	for rows.Next() {
		slot, err := scanTimeslot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timeslot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// Delete удаляет слот; прошлые брони сохраняются без ссылки
func (r *TimeslotRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM timeslots WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete timeslot: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete timeslot: %w", model.ErrNotFound)
	}
	return nil
}
