package handlers

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleWeek показывает доску активной недели
func (h *Handlers) HandleWeek(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireGroup(ctx, b, update)
	if !ok {
		return
	}

	board, err := h.engine.WeekBoard(ctx, user.Actor())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "week board", err)
		return
	}

	text, keyboard := view.Board(board)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, keyboard)
}

// HandleMyBookings показывает брони группы в активной неделе
func (h *Handlers) HandleMyBookings(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireGroup(ctx, b, update)
	if !ok {
		return
	}

	bookings, err := h.engine.MyBookings(ctx, user.Actor())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "my bookings", err)
		return
	}
	remaining, err := h.engine.Remaining(ctx, user.GroupID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "remaining", err)
		return
	}

	text, keyboard := view.Bookings(bookings, remaining)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, keyboard)
}

func (h *Handlers) HandleQuota(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireGroup(ctx, b, update)
	if !ok {
		return
	}

	win, err := h.engine.QuotaWindow(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "quota window", err)
		return
	}
	remaining, err := h.engine.Remaining(ctx, user.GroupID)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "remaining", err)
		return
	}

	text := fmt.Sprintf("🎟 Woche %s – %s\nNoch <b>%d</b> von %d Buchungen frei.",
		view.FormatFullDate(win.Start), view.FormatFullDate(win.LastDay()), remaining, win.Limit)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, nil)
}
