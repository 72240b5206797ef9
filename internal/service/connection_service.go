package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"go.uber.org/zap"
)

// ConnectionService administers shared connections.
type ConnectionService struct {
	tx          ports.TxManager
	connections ports.ConnectionRepo
	claims      ports.ClaimRepo
	logger      *zap.Logger
}

func NewConnectionService(tx ports.TxManager, connections ports.ConnectionRepo, claims ports.ClaimRepo, logger *zap.Logger) *ConnectionService {
	return &ConnectionService{
		tx:          tx,
		connections: connections,
		claims:      claims,
		logger:      logger,
	}
}

// List возвращает соединения с числом занятых мест
func (s *ConnectionService) List(ctx context.Context) ([]model.ConnectionUsage, error) {
	conns, err := s.connections.List(ctx)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("list connections: %w", err))
	}
	usage, err := s.claims.Usage(ctx)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("claims usage: %w", err))
	}

	result := make([]model.ConnectionUsage, 0, len(conns))
	for _, c := range conns {
		result = append(result, model.ConnectionUsage{Connection: c, Used: usage[c.ID]})
	}
	return result, nil
}

// OverAllocated возвращает соединения, где заявок больше, чем мест.
// Такое возможно только после уменьшения вместимости админом.
func (s *ConnectionService) OverAllocated(ctx context.Context) ([]model.ConnectionUsage, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	var over []model.ConnectionUsage
	for _, u := range all {
		if u.OverAllocated() {
			over = append(over, u)
		}
	}
	return over, nil
}

// Create создаёт соединение; вместимость по умолчанию 3
func (s *ConnectionService) Create(ctx context.Context, actor model.Actor, conn *model.Connection) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}
	if conn.Capacity == 0 {
		conn.Capacity = model.DefaultConnectionCapacity
	}
	if err := conn.Validate(); err != nil {
		return err
	}

	if err := s.connections.Create(ctx, conn); err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Connection created",
		zap.Int64("connection_id", conn.ID),
		zap.String("label", conn.Label()),
		zap.Int("capacity", conn.Capacity),
	)
	return nil
}

// SetCapacity меняет вместимость. Уже сделанные заявки не удаляются.
func (s *ConnectionService) SetCapacity(ctx context.Context, actor model.Actor, id int64, capacity int) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}
	if capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", model.ErrInvalidInput)
	}

	if err := s.connections.UpdateCapacity(ctx, id, capacity); err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Connection capacity changed", zap.Int64("connection_id", id), zap.Int("capacity", capacity))
	return nil
}

// Delete удаляет соединение вместе с заявками на него
func (s *ConnectionService) Delete(ctx context.Context, actor model.Actor, id int64) error {
	if !actor.IsAdmin {
		return model.ErrForbidden
	}

	var removed int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		conn, err := s.connections.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("get connection: %w", err)
		}
		if conn == nil {
			return fmt.Errorf("connection %d: %w", id, model.ErrNotFound)
		}

		removed, err = s.claims.DeleteByConnection(ctx, id)
		if err != nil {
			return err
		}
		return s.connections.Delete(ctx, id)
	})
	if err != nil {
		return model.Classify(err)
	}

	s.logger.Info("Connection deleted",
		zap.Int64("connection_id", id),
		zap.Int64("claims_removed", removed),
	)
	return nil
}
