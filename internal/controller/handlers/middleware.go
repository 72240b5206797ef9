package handlers

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

// requireUser проверяет что пользователь зарегистрирован
func (h *Handlers) requireUser(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	if update.Message == nil || update.Message.From == nil {
		return nil, false
	}

	telegramID := update.Message.From.ID
	user, err := h.userService.GetByTelegramID(ctx, telegramID)
	if err != nil {
		h.logger.Error("Failed to get user", zap.Int64("telegram_id", telegramID), zap.Error(err))
		h.sendError(ctx, b, update.Message.Chat.ID, view.ErrorText(err))
		return nil, false
	}

	if user == nil {
		h.sendError(ctx, b, update.Message.Chat.ID, "❌ Unbekannter Benutzer. Bitte zuerst /start senden.")
		return nil, false
	}

	return user, true
}

// requireGroup пропускает только пользователей с группой (или админов)
func (h *Handlers) requireGroup(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if user.GroupID == "" && !user.IsAdmin {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"⏳ Dein Konto ist noch keiner Gruppe zugeordnet. Ein Admin erledigt das mit /assign.")
		return nil, false
	}

	return user, true
}

// requireAdmin пропускает только админов
func (h *Handlers) requireAdmin(ctx context.Context, b *bot.Bot, update *models.Update) (*model.User, bool) {
	user, ok := h.requireUser(ctx, b, update)
	if !ok {
		return nil, false
	}

	if !user.IsAdmin {
		h.sendError(ctx, b, update.Message.Chat.ID, view.ErrorText(model.ErrForbidden))
		return nil, false
	}

	return user, true
}

// replyError отвечает текстом ошибки; сбои хранилища дополнительно логируются
func (h *Handlers) replyError(ctx context.Context, b *bot.Bot, chatID int64, op string, err error) {
	if errors.Is(model.Classify(err), model.ErrStorageUnavailable) {
		h.logger.Error("Command failed", zap.String("op", op), zap.Error(err))
	}
	h.sendError(ctx, b, chatID, view.ErrorText(err))
}

// sendError отправляет сообщение об ошибке и логирует если не удалось
func (h *Handlers) sendError(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send error message",
			zap.Int64("chat_id", chatID),
			zap.String("text", text),
			zap.Error(err),
		)
	}
}

// sendHTML отправляет HTML-сообщение с необязательной клавиатурой
func (h *Handlers) sendHTML(ctx context.Context, b *bot.Bot, chatID int64, text string, keyboard *models.InlineKeyboardMarkup) {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	}
	if keyboard != nil && len(keyboard.InlineKeyboard) > 0 {
		params.ReplyMarkup = keyboard
	}
	if _, err := b.SendMessage(ctx, params); err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// commandArgs возвращает аргументы команды: "/addslot 1 14:00-15:00" -> ["1", "14:00-15:00"]
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// commandTail возвращает всё после команды одной строкой
func commandTail(text string) string {
	_, tail, _ := strings.Cut(strings.TrimSpace(text), " ")
	return strings.TrimSpace(tail)
}
