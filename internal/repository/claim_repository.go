package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ClaimRepository struct {
	*base.Repository
}

func NewClaimRepository(b *base.Repository) *ClaimRepository {
	return &ClaimRepository{Repository: b}
}

const claimColumns = `id, group_id, connection_id, custom_label, destination, updated_at`

func scanClaim(row pgx.Row) (*model.Claim, error) {
	var claim model.Claim
	err := row.Scan(
		&claim.ID,
		&claim.GroupID,
		&claim.ConnectionID,
		&claim.CustomLabel,
		&claim.Destination,
		&claim.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &claim, nil
}

// Upsert сохраняет заявку группы; существующая заявка сохраняет свой id
func (r *ClaimRepository) Upsert(ctx context.Context, claim *model.Claim) error {
	if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}

	query := `
		INSERT INTO claims (id, group_id, connection_id, custom_label, destination, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (group_id) DO UPDATE
		SET connection_id = EXCLUDED.connection_id,
		    custom_label  = EXCLUDED.custom_label,
		    destination   = EXCLUDED.destination,
		    updated_at    = EXCLUDED.updated_at
		RETURNING id, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		claim.ID,
		claim.GroupID,
		claim.ConnectionID,
		claim.CustomLabel,
		claim.Destination,
	).Scan(&claim.ID, &claim.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert claim: %w", translateError(err))
	}

	return nil
}

// GetByID получает заявку по ID
func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Claim, error) {
	return r.get(ctx, `SELECT `+claimColumns+` FROM claims WHERE id = $1`, id)
}

// GetByGroup получает заявку группы
func (r *ClaimRepository) GetByGroup(ctx context.Context, groupID string) (*model.Claim, error) {
	return r.get(ctx, `SELECT `+claimColumns+` FROM claims WHERE group_id = $1`, groupID)
}

func (r *ClaimRepository) get(ctx context.Context, query string, arg any) (*model.Claim, error) {
	claim, err := scanClaim(r.QueryRow(ctx, query, arg))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get claim: %w", err)
	}
	return claim, nil
}

// List возвращает все заявки, свежие первыми
func (r *ClaimRepository) List(ctx context.Context) ([]*model.Claim, error) {
	rows, err := r.Query(ctx, `SELECT `+claimColumns+` FROM claims ORDER BY updated_at DESC, group_id`)
	if err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	defer rows.Close()

	claims := make([]*model.Claim, 0)
	for rows.Next() {
		claim, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim: %w", err)
		}
		claims = append(claims, claim)
	}

	return claims, rows.Err()
}

// CountOthers считает чужие заявки на соединение
func (r *ClaimRepository) CountOthers(ctx context.Context, connectionID int64, excludeGroup string, excludeID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM claims
		WHERE connection_id = $1 AND group_id <> $2 AND id <> $3
	`

	var n int
	if err := r.QueryRow(ctx, query, connectionID, excludeGroup, excludeID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return n, nil
}

// Usage возвращает число заявок по каждому соединению
func (r *ClaimRepository) Usage(ctx context.Context) (map[int64]int, error) {
	rows, err := r.Query(ctx, `
		SELECT connection_id, COUNT(*)
		FROM claims
		WHERE connection_id IS NOT NULL
		GROUP BY connection_id
	`)
	if err != nil {
		return nil, fmt.Errorf("claims usage: %w", err)
	}
	defer rows.Close()

	usage := make(map[int64]int)
	for rows.Next() {
		var (
			id int64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan claims usage: %w", err)
		}
		usage[id] = n
	}

	return usage, rows.Err()
}

// Delete удаляет заявку
func (r *ClaimRepository) Delete(ctx context.Context, id uuid.UUID) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("delete claim: %w", model.ErrNotFound)
	}
	return nil
}

// DeleteByConnection удаляет все заявки на соединение
func (r *ClaimRepository) DeleteByConnection(ctx context.Context, connectionID int64) (int64, error) {
	affected, err := r.ExecAffected(ctx, `DELETE FROM claims WHERE connection_id = $1`, connectionID)
	if err != nil {
		return 0, fmt.Errorf("delete claims by connection: %w", err)
	}
	return affected, nil
}
