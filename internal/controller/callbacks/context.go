package callbacks

import (
	"context"
	"errors"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

var errUnknownUser = errors.New("user not registered")

// HandlerContext общие данные одного callback
type HandlerContext struct {
	Ctx        context.Context
	Bot        *bot.Bot
	Callback   *models.CallbackQuery
	Handler    *Handler
	Message    *models.Message
	User       *model.User
	TelegramID int64
	ChatID     int64
}

func newHandlerContext(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler) *HandlerContext {
	hc := &HandlerContext{
		Ctx:        ctx,
		Bot:        b,
		Callback:   callback,
		Handler:    h,
		TelegramID: callback.From.ID,
	}
	if callback.Message.Message != nil {
		hc.Message = callback.Message.Message
		hc.ChatID = hc.Message.Chat.ID
	}
	return hc
}

// loadUser загружает пользователя с группой (или админа)
func (hc *HandlerContext) loadUser() error {
	user, err := hc.Handler.UserService.GetByTelegramID(hc.Ctx, hc.TelegramID)
	if err != nil {
		return err
	}
	if user == nil {
		return errUnknownUser
	}
	if user.GroupID == "" && !user.IsAdmin {
		return model.ErrForbidden
	}
	hc.User = user
	return nil
}

// withUser загружает пользователя и вызывает handler; при ошибке отвечает alert
func withUser(ctx context.Context, b *bot.Bot, callback *models.CallbackQuery, h *Handler, handler func(*HandlerContext)) {
	hc := newHandlerContext(ctx, b, callback, h)
	if err := hc.loadUser(); err != nil {
		if errors.Is(err, errUnknownUser) {
			hc.AnswerAlert("❌ Unbekannter Benutzer. Bitte zuerst /start senden.")
			return
		}
		hc.Fail("load user", err)
		return
	}
	handler(hc)
}

func (hc *HandlerContext) Actor() model.Actor {
	return hc.User.Actor()
}

// Answer отвечает на callback query
func (hc *HandlerContext) Answer(text string) {
	hc.answer(text, false)
}

// AnswerAlert отвечает на callback query с alert
func (hc *HandlerContext) AnswerAlert(text string) {
	hc.answer(text, true)
}

func (hc *HandlerContext) answer(text string, alert bool) {
	_, err := hc.Bot.AnswerCallbackQuery(hc.Ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: hc.Callback.ID,
		Text:            text,
		ShowAlert:       alert,
	})
	if err != nil {
		hc.Handler.Logger.Debug("Failed to answer callback", zap.Error(err))
	}
}

// Fail отвечает alert с текстом ошибки; сбои хранилища логируются
func (hc *HandlerContext) Fail(op string, err error) {
	if errors.Is(model.Classify(err), model.ErrStorageUnavailable) {
		hc.Handler.Logger.Error("Callback failed",
			zap.String("op", op),
			zap.Int64("telegram_id", hc.TelegramID),
			zap.Error(err))
	}
	hc.AnswerAlert(view.ErrorText(err))
}

// EditMessage редактирует сообщение с кнопкой
func (hc *HandlerContext) EditMessage(text string, keyboard *models.InlineKeyboardMarkup) {
	if hc.Message == nil {
		return
	}

	params := &bot.EditMessageTextParams{
		ChatID:    hc.ChatID,
		MessageID: hc.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil {
		params.ReplyMarkup = keyboard
	}
	_, err := hc.Bot.EditMessageText(hc.Ctx, params)
	// "message is not modified" не ошибка
	if err != nil && !strings.Contains(err.Error(), "message is not modified") {
		hc.Handler.Logger.Error("Failed to edit message", zap.Error(err))
	}
}

// SendMessage отправляет новое сообщение
func (hc *HandlerContext) SendMessage(text string) {
	_, err := hc.Bot.SendMessage(hc.Ctx, &bot.SendMessageParams{
		ChatID:    hc.ChatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		hc.Handler.Logger.Error("Failed to send message", zap.Error(err))
	}
}
