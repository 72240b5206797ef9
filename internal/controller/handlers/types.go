package handlers

import (
	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	userService       *service.UserService
	engine            *service.BookingEngine
	placeService      *service.PlaceService
	connectionService *service.ConnectionService
	settingsService   *service.SettingsService
	stateManager      *state.Manager
	logger            *zap.Logger
}

func NewHandlers(
	userService *service.UserService,
	engine *service.BookingEngine,
	placeService *service.PlaceService,
	connectionService *service.ConnectionService,
	settingsService *service.SettingsService,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		userService:       userService,
		engine:            engine,
		placeService:      placeService,
		connectionService: connectionService,
		settingsService:   settingsService,
		stateManager:      stateManager,
		logger:            logger,
	}
}
