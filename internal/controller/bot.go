package controller

import (
	"context"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/callbacks"
	"github.com/Freeeeeet/placebooking_bot/internal/controller/handlers"
	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Services сервисы, которые использует бот
type Services struct {
	Users       *service.UserService
	Engine      *service.BookingEngine
	Places      *service.PlaceService
	Connections *service.ConnectionService
	Settings    *service.SettingsService
}

type BotController struct {
	bot             *bot.Bot
	handlers        *handlers.Handlers
	callbackHandler *callbacks.Handler
	stateManager    *state.Manager
	logger          *zap.Logger
}

func NewBotController(botInstance *bot.Bot, services Services, now func() time.Time, logger *zap.Logger) *BotController {
	// Диалоги живут в памяти процесса
	stateManager := state.NewManager(now)

	cmdHandlers := handlers.NewHandlers(
		services.Users,
		services.Engine,
		services.Places,
		services.Connections,
		services.Settings,
		stateManager,
		logger,
	)

	callbackHandler := callbacks.NewHandler(
		services.Users,
		services.Engine,
		stateManager,
		logger,
	)

	return &BotController{
		bot:             botInstance,
		handlers:        cmdHandlers,
		callbackHandler: callbackHandler,
		stateManager:    stateManager,
		logger:          logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	exact := map[string]bot.HandlerFunc{
		"/start":       c.handlers.HandleStart,
		"/help":        c.handlers.HandleHelp,
		"/week":        c.handlers.HandleWeek,
		"/mybookings":  c.handlers.HandleMyBookings,
		"/quota":       c.handlers.HandleQuota,
		"/connections": c.handlers.HandleConnections,
		"/myclaim":     c.handlers.HandleMyClaim,
		"/cancel":      c.handlers.HandleCancel,
		"/overview":    c.handlers.HandleOverview,
		"/places":      c.handlers.HandlePlaces,
	}
	for pattern, handler := range exact {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypeExact, handler)
	}

	// Команды админа с аргументами
	withArgs := map[string]bot.HandlerFunc{
		"/setlimit":      c.handlers.HandleSetLimit,
		"/assign":        c.handlers.HandleAssign,
		"/addplace":      c.handlers.HandleAddPlace,
		"/delplace":      c.handlers.HandleDeletePlace,
		"/addslot":       c.handlers.HandleAddSlot,
		"/delslot":       c.handlers.HandleDeleteSlot,
		"/addconnection": c.handlers.HandleAddConnection,
		"/setcapacity":   c.handlers.HandleSetCapacity,
		"/delconnection": c.handlers.HandleDeleteConnection,
	}
	for pattern, handler := range withArgs {
		c.bot.RegisterHandler(bot.HandlerTypeMessageText, pattern, bot.MatchTypePrefix, handler)
	}

	// Обычный текст уходит в диалоги
	c.bot.RegisterHandlerMatchFunc(handlers.IsDialogText, c.handlers.HandleTextMessage)

	// Обработчик нажатий на inline кнопки
	c.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, "", bot.MatchTypePrefix, c.callbackHandler.HandleCallbackQuery)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "week", Description: "📅 Wochenplan"},
		{Command: "mybookings", Description: "📋 Eure Buchungen"},
		{Command: "quota", Description: "🎟 Verbleibendes Kontingent"},
		{Command: "connections", Description: "🚌 Verbindungen"},
		{Command: "myclaim", Description: "🎯 Eure Verbindung"},
		{Command: "help", Description: "❓ Hilfe"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает long polling и блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")

	go c.sweepDialogs(ctx)
	c.bot.Start(ctx)

	c.logger.Info("Bot stopped")
	return nil
}

func (c *BotController) sweepDialogs(ctx context.Context) {
	ticker := time.NewTicker(state.DialogTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.stateManager.Sweep(); n > 0 {
				c.logger.Debug("Expired dialogs removed", zap.Int("count", n))
			}
		}
	}
}
