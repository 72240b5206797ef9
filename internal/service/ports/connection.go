package ports

import (
	"context"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/google/uuid"
)

type ConnectionRepo interface {
	Create(ctx context.Context, conn *model.Connection) error
	GetByID(ctx context.Context, id int64) (*model.Connection, error)
	// LockByID reads the connection and holds a row lock on it until the
	// surrounding transaction ends.
	LockByID(ctx context.Context, id int64) (*model.Connection, error)
	List(ctx context.Context) ([]*model.Connection, error)
	UpdateCapacity(ctx context.Context, id int64, capacity int) error
	Delete(ctx context.Context, id int64) error
}

type ClaimRepo interface {
	// Upsert stores the claim keyed by its group. If the group already has
	// a claim, it is replaced and keeps its id; claim.ID is updated.
	Upsert(ctx context.Context, claim *model.Claim) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Claim, error)
	GetByGroup(ctx context.Context, groupID string) (*model.Claim, error)
	List(ctx context.Context) ([]*model.Claim, error)
	// CountOthers counts claims on connectionID that neither belong to
	// excludeGroup nor have id excludeID.
	CountOthers(ctx context.Context, connectionID int64, excludeGroup string, excludeID uuid.UUID) (int, error)
	// Usage returns the number of claims per connection id.
	Usage(ctx context.Context) (map[int64]int, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByConnection(ctx context.Context, connectionID int64) (int64, error)
}
