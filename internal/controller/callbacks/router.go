package callbacks

import (
	"context"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleCallbackQuery распределяет нажатия inline кнопок
func (h *Handler) HandleCallbackQuery(ctx context.Context, b *bot.Bot, update *models.Update) {
	callback := update.CallbackQuery
	if callback == nil {
		return
	}
	data := callback.Data

	h.Logger.Debug("Routing callback",
		zap.String("data", data),
		zap.Int64("user_id", callback.From.ID))

	switch {
	case data == view.CallbackNoop:
		newHandlerContext(ctx, b, callback, h).Answer("")
	case data == view.CallbackRefreshWeek:
		withUser(ctx, b, callback, h, handleRefreshWeek)
	case strings.HasPrefix(data, view.CallbackBook):
		withUser(ctx, b, callback, h, handleBook)
	case strings.HasPrefix(data, view.CallbackCancel):
		withUser(ctx, b, callback, h, handleCancel)
	case strings.HasPrefix(data, view.CallbackClaimCustom):
		withUser(ctx, b, callback, h, handleClaimCustom)
	case strings.HasPrefix(data, view.CallbackClaim):
		withUser(ctx, b, callback, h, handleClaimConnection)
	case strings.HasPrefix(data, view.CallbackUnclaim):
		withUser(ctx, b, callback, h, handleUnclaim)
	default:
		h.Logger.Warn("Unknown callback", zap.String("data", data))
		newHandlerContext(ctx, b, callback, h).Answer("")
	}
}
