package memory

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

type UserRepository struct{ s *Store }

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.users[user.TelegramID]; ok {
		return fmt.Errorf("create user: telegram id %d already registered", user.TelegramID)
	}
	user.ID = r.s.st.nextID()
	user.CreatedAt = r.s.now()
	r.s.st.users[user.TelegramID] = *user
	return nil
}

func (r *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.st.users[telegramID]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	defer r.s.lock(ctx)()
	if _, ok := r.s.st.users[user.TelegramID]; !ok {
		return fmt.Errorf("user %d: %w", user.TelegramID, model.ErrNotFound)
	}
	r.s.st.users[user.TelegramID] = *user
	return nil
}

type SettingsRepository struct{ s *Store }

func (r *SettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	defer r.s.lock(ctx)()
	v, ok := r.s.st.settings[key]
	return v, ok, nil
}

func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	defer r.s.lock(ctx)()
	r.s.st.settings[key] = value
	return nil
}
