package service

import (
	"context"
	"fmt"
	"slices"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service/ports"
	"go.uber.org/zap"
)

// UserService maps Telegram accounts to groups.
type UserService struct {
	userRepo ports.UserRepo
	adminIDs []int64
	logger   *zap.Logger
}

// NewUserService создаёт сервис; adminIDs получают права админа при регистрации
func NewUserService(userRepo ports.UserRepo, adminIDs []int64, logger *zap.Logger) *UserService {
	return &UserService{
		userRepo: userRepo,
		adminIDs: adminIDs,
		logger:   logger,
	}
}

// RegisterUser регистрирует или обновляет пользователя
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*model.User, error) {
	// Проверяем существует ли пользователь
	existingUser, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("check existing user: %w", err))
	}

	bootstrapAdmin := slices.Contains(s.adminIDs, telegramID)

	// Если пользователь уже существует, обновляем данные
	if existingUser != nil {
		existingUser.Username = username
		existingUser.FirstName = firstName
		existingUser.LastName = lastName
		existingUser.IsAdmin = existingUser.IsAdmin || bootstrapAdmin

		if err := s.userRepo.Update(ctx, existingUser); err != nil {
			return nil, model.Classify(fmt.Errorf("update user: %w", err))
		}

		s.logger.Debug("User updated",
			zap.Int64("telegram_id", telegramID),
			zap.String("username", username),
		)

		return existingUser, nil
	}

	// Создаём нового пользователя, группу назначает админ
	user := &model.User{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		LastName:   lastName,
		IsAdmin:    bootstrapAdmin,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, model.Classify(fmt.Errorf("create user: %w", err))
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.Int64("telegram_id", telegramID),
		zap.String("username", username),
		zap.Bool("is_admin", user.IsAdmin),
	)

	return user, nil
}

// GetByTelegramID получает пользователя по Telegram ID
func (s *UserService) GetByTelegramID(ctx context.Context, telegramID int64) (*model.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, model.Classify(err)
	}
	return user, nil
}

// AssignGroup привязывает аккаунт к группе (только админ)
func (s *UserService) AssignGroup(ctx context.Context, actor model.Actor, telegramID int64, groupID string) (*model.User, error) {
	if !actor.IsAdmin {
		return nil, model.ErrForbidden
	}
	groupID, err := model.ValidateGroupID(groupID)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, model.Classify(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", telegramID, model.ErrNotFound)
	}

	user.GroupID = groupID
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, model.Classify(fmt.Errorf("update user: %w", err))
	}

	s.logger.Info("User assigned to group",
		zap.Int64("telegram_id", telegramID),
		zap.String("group_id", groupID),
	)

	return user, nil
}
