package callbacks

import (
	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"go.uber.org/zap"
)

// Handler содержит общие зависимости для всех callback handlers
type Handler struct {
	UserService  *service.UserService
	Engine       *service.BookingEngine
	StateManager *state.Manager
	Logger       *zap.Logger
}

func NewHandler(
	userService *service.UserService,
	engine *service.BookingEngine,
	stateManager *state.Manager,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		UserService:  userService,
		Engine:       engine,
		StateManager: stateManager,
		Logger:       logger,
	}
}
