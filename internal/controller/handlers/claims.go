package handlers

import (
	"context"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"
)

// HandleConnections показывает соединения с загрузкой
func (h *Handlers) HandleConnections(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireGroup(ctx, b, update); !ok {
		return
	}

	usage, err := h.engine.Connections(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "connections", err)
		return
	}

	text, keyboard := view.Connections(usage)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, keyboard)
}

func (h *Handlers) HandleMyClaim(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireGroup(ctx, b, update)
	if !ok {
		return
	}

	claim, err := h.engine.MyClaim(ctx, user.Actor())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "my claim", err)
		return
	}

	text, keyboard := view.Claim(claim)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, keyboard)
}

// handleClaimDestination завершает выбор соединения: текст сообщения это цель поездки
func (h *Handlers) handleClaimDestination(ctx context.Context, b *bot.Bot, update *models.Update) {
	telegramID := update.Message.From.ID
	chatID := update.Message.Chat.ID

	user, ok := h.requireGroup(ctx, b, update)
	if !ok {
		h.stateManager.ClearState(telegramID)
		return
	}

	destination := strings.TrimSpace(update.Message.Text)
	if destination == "" {
		h.sendError(ctx, b, chatID, "❌ Bitte ein Ziel angeben.")
		return
	}

	req := service.ClaimRequest{Destination: destination}
	if v, ok := h.stateManager.GetData(telegramID, state.KeyConnectionID); ok {
		req.Target.ConnectionID, _ = v.(int64)
	}
	if v, ok := h.stateManager.GetData(telegramID, state.KeyCustomLabel); ok {
		req.Target.CustomLabel, _ = v.(string)
	}
	if v, ok := h.stateManager.GetData(telegramID, state.KeyPreviousClaimID); ok {
		req.PreviousClaimID, _ = v.(uuid.UUID)
	}

	claim, err := h.engine.Claim(ctx, user.Actor(), req)
	if err != nil {
		h.stateManager.ClearState(telegramID)
		h.replyError(ctx, b, chatID, "claim", err)
		return
	}
	h.stateManager.ClearState(telegramID)

	text, keyboard := view.Claim(claim)
	h.sendHTML(ctx, b, chatID, "✅ Gespeichert.\n\n"+text, keyboard)
}
