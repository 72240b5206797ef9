package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/google/uuid"
)

type ConnectionRepository struct{ s *Store }

func (r *ConnectionRepository) Create(ctx context.Context, conn *model.Connection) error {
	defer r.s.lock(ctx)()
	conn.ID = r.s.st.nextID()
	conn.CreatedAt = r.s.now()
	r.s.st.connections[conn.ID] = *conn
	return nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id int64) (*model.Connection, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.connections[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

// LockByID: строковая блокировка не нужна, транзакции и так последовательны
func (r *ConnectionRepository) LockByID(ctx context.Context, id int64) (*model.Connection, error) {
	return r.GetByID(ctx, id)
}

func (r *ConnectionRepository) List(ctx context.Context) ([]*model.Connection, error) {
	defer r.s.lock(ctx)()
	conns := make([]*model.Connection, 0, len(r.s.st.connections))
	for _, c := range r.s.st.connections {
		conns = append(conns, &c)
	}
	sort.Slice(conns, func(i, j int) bool {
		if conns[i].Departure != conns[j].Departure {
			return conns[i].Departure < conns[j].Departure
		}
		return conns[i].ID < conns[j].ID
	})
	return conns, nil
}

func (r *ConnectionRepository) UpdateCapacity(ctx context.Context, id int64, capacity int) error {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.connections[id]
	if !ok {
		return fmt.Errorf("connection %d: %w", id, model.ErrNotFound)
	}
	c.Capacity = capacity
	r.s.st.connections[id] = c
	return nil
}

// Delete удаляет соединение и заявки на него, как ON DELETE CASCADE
func (r *ConnectionRepository) Delete(ctx context.Context, id int64) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.connections[id]; !ok {
		return fmt.Errorf("connection %d: %w", id, model.ErrNotFound)
	}
	delete(r.s.st.connections, id)
	r.s.deleteClaimsOn(id)
	return nil
}

type ClaimRepository struct{ s *Store }

func (r *ClaimRepository) Upsert(ctx context.Context, claim *model.Claim) error {
	defer r.s.lock(ctx)()

	if claim.ConnectionID != nil {
		if _, ok := r.s.st.connections[*claim.ConnectionID]; !ok {
			return fmt.Errorf("upsert claim: connection %d: %w", *claim.ConnectionID, model.ErrNotFound)
		}
	}

	if existing, ok := r.s.st.claimGroups[claim.GroupID]; ok {
		claim.ID = existing
	} else if claim.ID == uuid.Nil {
		claim.ID = uuid.New()
	}

	claim.UpdatedAt = r.s.now()
	stored := *claim
	stored.Connection = nil
	r.s.st.claims[claim.ID] = stored
	r.s.st.claimGroups[claim.GroupID] = claim.ID
	return nil
}

func (r *ClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Claim, error) {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.claims[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *ClaimRepository) GetByGroup(ctx context.Context, groupID string) (*model.Claim, error) {
	defer r.s.lock(ctx)()
	id, ok := r.s.st.claimGroups[groupID]
	if !ok {
		return nil, nil
	}
	c := r.s.st.claims[id]
	return &c, nil
}

func (r *ClaimRepository) List(ctx context.Context) ([]*model.Claim, error) {
	defer r.s.lock(ctx)()
	claims := make([]*model.Claim, 0, len(r.s.st.claims))
	for _, c := range r.s.st.claims {
		claims = append(claims, &c)
	}
	sort.Slice(claims, func(i, j int) bool {
		if !claims[i].UpdatedAt.Equal(claims[j].UpdatedAt) {
			return claims[i].UpdatedAt.After(claims[j].UpdatedAt)
		}
		return claims[i].GroupID < claims[j].GroupID
	})
	return claims, nil
}

func (r *ClaimRepository) CountOthers(ctx context.Context, connectionID int64, excludeGroup string, excludeID uuid.UUID) (int, error) {
	defer r.s.lock(ctx)()
	n := 0
	for id, c := range r.s.st.claims {
		if !c.Targets(connectionID) || c.GroupID == excludeGroup || id == excludeID {
			continue
		}
		n++
	}
	return n, nil
}

func (r *ClaimRepository) Usage(ctx context.Context) (map[int64]int, error) {
	defer r.s.lock(ctx)()
	usage := make(map[int64]int)
	for _, c := range r.s.st.claims {
		if c.ConnectionID != nil {
			usage[*c.ConnectionID]++
		}
	}
	return usage, nil
}

func (r *ClaimRepository) Delete(ctx context.Context, id uuid.UUID) error {
	defer r.s.lock(ctx)()
	c, ok := r.s.st.claims[id]
	if !ok {
		return fmt.Errorf("claim %s: %w", id, model.ErrNotFound)
	}
	delete(r.s.st.claims, id)
	delete(r.s.st.claimGroups, c.GroupID)
	return nil
}

func (r *ClaimRepository) DeleteByConnection(ctx context.Context, connectionID int64) (int64, error) {
	defer r.s.lock(ctx)()
	return r.s.deleteClaimsOn(connectionID), nil
}

func (s *Store) deleteClaimsOn(connectionID int64) int64 {
	var deleted int64
	for id, c := range s.st.claims {
		if c.Targets(connectionID) {
			delete(s.st.claims, id)
			delete(s.st.claimGroups, c.GroupID)
			deleted++
		}
	}
	return deleted
}
