package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type ConnectionRepository struct {
	*base.Repository
}

func NewConnectionRepository(b *base.Repository) *ConnectionRepository {
	return &ConnectionRepository{Repository: b}
}

const connectionColumns = `id, line, departure_minute, stop, capacity, created_at`

func scanConnection(row pgx.Row) (*model.Connection, error) {
	var conn model.Connection
	err := row.Scan(
		&conn.ID,
		&conn.Line,
		(*int)(&conn.Departure),
		&conn.Stop,
		&conn.Capacity,
		&conn.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// Create создаёт новое соединение
func (r *ConnectionRepository) Create(ctx context.Context, conn *model.Connection) error {
	query := `
		INSERT INTO connections (line, departure_minute, stop, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, conn.Line, int(conn.Departure), conn.Stop, conn.Capacity).
		Scan(&conn.ID, &conn.CreatedAt)
	if err != nil {
		return fmt.Errorf("create connection: %w", err)
	}

	return nil
}

// GetByID получает соединение по ID
func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*model.Connection, error) {
	return r.get(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1`, id)
}

// LockByID читает соединение с блокировкой строки до конца транзакции
func (r *ConnectionRepository) LockByID(ctx context.Context, id int64) (*model.Connection, error) {
	return r.get(ctx, `SELECT `+connectionColumns+` FROM connections WHERE id = $1 FOR UPDATE`, id)
}

func (r *ConnectionRepository) get(ctx context.Context, query string, id int64) (*model.Connection, error) {
	conn, err := scanConnection(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get connection by id: %w", err)
	}
	return conn, nil
}

// List возвращает соединения по времени отправления
func (r *ConnectionRepository) List(ctx context.Context) ([]*model.Connection, error) {
	rows, err := r.Query(ctx, `SELECT `+connectionColumns+` FROM connections ORDER BY departure_minute, id`)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	conns := make([]*model.Connection, 0)
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, conn)
	}

	return conns, rows.Err()
}

// UpdateCapacity меняет число мест
func (r *ConnectionRepository) UpdateCapacity(ctx context.Context, id int64, capacity int) error {
	affected, err := r.ExecAffected(ctx, `UPDATE connections SET capacity = $2 WHERE id = $1`, id, capacity)
	if err != nil {
		return fmt.Errorf("update connection capacity: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update connection capacity: %w", model.ErrNotFound)
	}
	return nil
}

// Delete удаляет соединение; заявки на него удаляются каскадом
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM connections WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete connection: %w", model.ErrNotFound)
	}
	return nil
}
