package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"go.uber.org/zap"
)

// OverAllocationSource отдаёт соединения, где заявок больше, чем мест
type OverAllocationSource interface {
	OverAllocated(ctx context.Context) ([]model.ConnectionUsage, error)
}

// CapacityAuditor периодически ищет переполненные соединения и пишет их в лог,
// чтобы админ мог снять лишние заявки
type CapacityAuditor struct {
	source   OverAllocationSource
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
}

// NewCapacityAuditor создаёт аудитор
func NewCapacityAuditor(source OverAllocationSource, interval time.Duration, logger *zap.Logger) *CapacityAuditor {
	return &CapacityAuditor{
		source:   source,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Run проверяет сразу при старте и затем по тикеру до отмены контекста или Stop
func (a *CapacityAuditor) Run(ctx context.Context) error {
	a.logger.Info("Starting capacity auditor", zap.Duration("interval", a.interval))

	a.Audit(ctx)

	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Audit(ctx)
		case <-a.stopChan:
			a.logger.Info("Capacity auditor stopped")
			return nil
		case <-ctx.Done():
			a.logger.Info("Capacity auditor cancelled")
			return nil
		}
	}
}

// Stop останавливает аудитор
func (a *CapacityAuditor) Stop() {
	close(a.stopChan)
}

// Audit выполняет одну проверку и возвращает число переполненных соединений
func (a *CapacityAuditor) Audit(ctx context.Context) int {
	over, err := a.source.OverAllocated(ctx)
	if err != nil {
		a.logger.Error("Failed to audit connection capacity", zap.Error(err))
		return 0
	}

	for _, u := range over {
		a.logger.Warn("Connection over-allocated",
			zap.Int64("connection_id", u.Connection.ID),
			zap.String("label", u.Connection.Label()),
			zap.Int("used", u.Used),
			zap.Int("capacity", u.Connection.Capacity),
		)
	}
	return len(over)
}
