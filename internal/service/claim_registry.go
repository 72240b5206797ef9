package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxDestinationLength = 255

// ClaimRequest describes one group's claim for an outing.
// PreviousClaimID is set when the caller edits a claim it already holds.
type ClaimRequest struct {
	GroupID         string
	Target          model.ClaimTarget
	Destination     string
	PreviousClaimID uuid.UUID
}

// ClaimRegistry keeps at most one claim per group and never lets the
// claims on a connection exceed its capacity.
type ClaimRegistry struct {
	tx          ports.TxManager
	connections ports.ConnectionRepo
	claims      ports.ClaimRepo
	logger      *zap.Logger
}

func NewClaimRegistry(tx ports.TxManager, connections ports.ConnectionRepo, claims ports.ClaimRepo, logger *zap.Logger) *ClaimRegistry {
	return &ClaimRegistry{
		tx:          tx,
		connections: connections,
		claims:      claims,
		logger:      logger,
	}
}

// Upsert сохраняет заявку группы. Собственная прежняя заявка группы
// не учитывается при проверке вместимости.
func (r *ClaimRegistry) Upsert(ctx context.Context, req ClaimRequest) (*model.Claim, error) {
	if err := req.Target.Validate(); err != nil {
		return nil, err
	}
	destination := strings.TrimSpace(req.Destination)
	if destination == "" {
		return nil, fmt.Errorf("%w: destination is required", model.ErrInvalidInput)
	}
	if utf8.RuneCountInString(destination) > maxDestinationLength {
		return nil, fmt.Errorf("%w: destination is too long", model.ErrInvalidInput)
	}

	claim := &model.Claim{
		GroupID:     req.GroupID,
		Destination: destination,
	}
	if req.Target.IsConnection() {
		id := req.Target.ConnectionID
		claim.ConnectionID = &id
	} else {
		label := strings.TrimSpace(req.Target.CustomLabel)
		claim.CustomLabel = &label
	}

	err := r.tx.WithinTx(ctx, func(ctx context.Context) error {
		excludeID := req.PreviousClaimID
		if excludeID != uuid.Nil {
			previous, err := r.claims.GetByID(ctx, excludeID)
			if err != nil {
				return fmt.Errorf("get previous claim: %w", err)
			}
			// чужую заявку редактировать нельзя; пропавшая считается новой
			if previous != nil && previous.GroupID != req.GroupID {
				return model.ErrForbidden
			}
		}

		if claim.ConnectionID != nil {
			conn, err := r.connections.LockByID(ctx, *claim.ConnectionID)
			if err != nil {
				return fmt.Errorf("lock connection: %w", err)
			}
			if conn == nil {
				return fmt.Errorf("connection %d: %w", *claim.ConnectionID, model.ErrNotFound)
			}

			taken, err := r.claims.CountOthers(ctx, conn.ID, req.GroupID, excludeID)
			if err != nil {
				return fmt.Errorf("count claims: %w", err)
			}
			if taken >= conn.Capacity {
				return model.ErrCapacityExceeded
			}
			claim.Connection = conn
		}

		return r.claims.Upsert(ctx, claim)
	})
	if err != nil {
		if errors.Is(err, model.ErrCapacityExceeded) {
			r.logger.Info("Claim rejected, connection full",
				zap.String("group_id", req.GroupID),
				zap.Int64("connection_id", req.Target.ConnectionID),
			)
		}
		return nil, model.Classify(err)
	}

	r.logger.Info("Claim saved",
		zap.String("claim_id", claim.ID.String()),
		zap.String("group_id", claim.GroupID),
		zap.Int64("connection_id", req.Target.ConnectionID),
		zap.String("destination", claim.Destination),
	)

	return claim, nil
}

// Delete удаляет заявку владельца или любую заявку для админа
func (r *ClaimRegistry) Delete(ctx context.Context, claimID uuid.UUID, requesterGroupID string, isAdmin bool) error {
	claim, err := r.claims.GetByID(ctx, claimID)
	if err != nil {
		return model.Classify(fmt.Errorf("get claim: %w", err))
	}
	if claim == nil {
		return fmt.Errorf("claim %s: %w", claimID, model.ErrNotFound)
	}
	if !isAdmin && (requesterGroupID == "" || claim.GroupID != requesterGroupID) {
		return model.ErrForbidden
	}

	if err := r.claims.Delete(ctx, claimID); err != nil {
		return model.Classify(err)
	}

	r.logger.Info("Claim deleted",
		zap.String("claim_id", claimID.String()),
		zap.String("group_id", claim.GroupID),
	)
	return nil
}

// UsageByResource возвращает число заявок на соединение
func (r *ClaimRegistry) UsageByResource(ctx context.Context, connectionID int64) (int, error) {
	usage, err := r.claims.Usage(ctx)
	if err != nil {
		return 0, model.Classify(err)
	}
	return usage[connectionID], nil
}
