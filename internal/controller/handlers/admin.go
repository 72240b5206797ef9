package handlers

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// HandleOverview недельная сводка по всем группам
func (h *Handlers) HandleOverview(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	overview, err := h.engine.AdminOverview(ctx, user.Actor())
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "overview", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, view.Overview(overview), nil)
}

// HandleSetLimit: /setlimit 8
func (h *Handlers) HandleSetLimit(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.sendError(ctx, b, update.Message.Chat.ID, "Verwendung: /setlimit <n>")
		return
	}
	limit, err := strconv.Atoi(args[0])
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "set limit", model.ErrInvalidInput)
		return
	}

	if err := h.settingsService.SetWeeklyQuota(ctx, user.Actor(), limit); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "set limit", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Wochenlimit ist jetzt %d.", limit), nil)
}

// HandleAssign: /assign 123456 7@wh.de
func (h *Handlers) HandleAssign(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "Verwendung: /assign <telegram_id> <gruppe>")
		return
	}
	telegramID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "assign", model.ErrInvalidInput)
		return
	}

	assigned, err := h.userService.AssignGroup(ctx, user.Actor(), telegramID, args[1])
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "assign", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ %d gehört jetzt zu <b>%s</b>.",
		telegramID, html.EscapeString(h.engine.DisplayName(assigned.GroupID))), nil)
}

func (h *Handlers) HandlePlaces(ctx context.Context, b *bot.Bot, update *models.Update) {
	if _, ok := h.requireAdmin(ctx, b, update); !ok {
		return
	}

	places, err := h.placeService.ListPlaces(ctx)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "list places", err)
		return
	}

	var sb strings.Builder
	sb.WriteString("🏟 <b>Plätze</b>\n")
	if len(places) == 0 {
		sb.WriteString("\nKeine Plätze angelegt.")
	}
	for _, p := range places {
		fmt.Fprintf(&sb, "\n#%d %s\n", p.ID, html.EscapeString(p.Name))
		for _, ts := range p.Timeslots {
			fmt.Fprintf(&sb, "  #%d %s\n", ts.ID, view.FormatTimeRange(ts.Start, ts.End))
		}
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, sb.String(), nil)
}

// HandleAddPlace: /addplace Sporthalle
func (h *Handlers) HandleAddPlace(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	place, err := h.placeService.CreatePlace(ctx, user.Actor(), commandTail(update.Message.Text))
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "add place", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Platz #%d <b>%s</b> angelegt. Zeitfenster: /addslot %d HH:MM-HH:MM", place.ID, html.EscapeString(place.Name), place.ID), nil)
}

func (h *Handlers) HandleDeletePlace(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	id, ok := h.singleID(ctx, b, update, "/delplace <id>")
	if !ok {
		return
	}
	if err := h.placeService.DeletePlace(ctx, user.Actor(), id); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "delete place", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, "✅ Platz gelöscht. Künftige Buchungen wurden entfernt.", nil)
}

// HandleAddSlot: /addslot 1 14:00-15:30
func (h *Handlers) HandleAddSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "Verwendung: /addslot <platz_id> <HH:MM-HH:MM>")
		return
	}
	placeID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "add slot", model.ErrInvalidInput)
		return
	}
	start, end, err := model.ParseTimeRange(args[1])
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "add slot", err)
		return
	}

	slot, err := h.placeService.AddTimeslot(ctx, user.Actor(), placeID, start, end)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "add slot", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Zeitfenster #%d %s angelegt.", slot.ID, view.FormatTimeRange(slot.Start, slot.End)), nil)
}

func (h *Handlers) HandleDeleteSlot(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	id, ok := h.singleID(ctx, b, update, "/delslot <id>")
	if !ok {
		return
	}
	if err := h.placeService.DeleteTimeslot(ctx, user.Actor(), id); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "delete slot", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, "✅ Zeitfenster gelöscht. Künftige Buchungen wurden entfernt.", nil)
}

// HandleAddConnection: /addconnection Bus 42; 09:15; Hauptbahnhof; 3
func (h *Handlers) HandleAddConnection(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	conn, err := parseConnection(commandTail(update.Message.Text))
	if err != nil {
		h.sendError(ctx, b, update.Message.Chat.ID,
			"Verwendung: /addconnection <linie>; <HH:MM>; <haltestelle>[; <plätze>]")
		return
	}

	if err := h.connectionService.Create(ctx, user.Actor(), conn); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "add connection", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID,
		fmt.Sprintf("✅ Verbindung #%d %s mit %d Plätzen angelegt.", conn.ID, html.EscapeString(conn.Label()), conn.Capacity), nil)
}

// HandleSetCapacity: /setcapacity 3 5
func (h *Handlers) HandleSetCapacity(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	args := commandArgs(update.Message.Text)
	if len(args) != 2 {
		h.sendError(ctx, b, update.Message.Chat.ID, "Verwendung: /setcapacity <id> <n>")
		return
	}
	id, errID := strconv.ParseInt(args[0], 10, 64)
	capacity, errCap := strconv.Atoi(args[1])
	if errID != nil || errCap != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "set capacity", model.ErrInvalidInput)
		return
	}

	if err := h.connectionService.SetCapacity(ctx, user.Actor(), id, capacity); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "set capacity", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, fmt.Sprintf("✅ Verbindung #%d hat jetzt %d Plätze.", id, capacity), nil)
}

func (h *Handlers) HandleDeleteConnection(ctx context.Context, b *bot.Bot, update *models.Update) {
	user, ok := h.requireAdmin(ctx, b, update)
	if !ok {
		return
	}

	id, ok := h.singleID(ctx, b, update, "/delconnection <id>")
	if !ok {
		return
	}
	if err := h.connectionService.Delete(ctx, user.Actor(), id); err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "delete connection", err)
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, "✅ Verbindung und ihre Reservierungen gelöscht.", nil)
}

func (h *Handlers) singleID(ctx context.Context, b *bot.Bot, update *models.Update, usage string) (int64, bool) {
	args := commandArgs(update.Message.Text)
	if len(args) != 1 {
		h.sendError(ctx, b, update.Message.Chat.ID, "Verwendung: "+usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		h.sendError(ctx, b, update.Message.Chat.ID, view.ErrorText(model.ErrInvalidInput))
		return 0, false
	}
	return id, true
}

// parseConnection разбирает "Bus 42; 09:15; Hauptbahnhof; 3", вместимость необязательна
func parseConnection(s string) (*model.Connection, error) {
	parts := strings.Split(s, ";")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, fmt.Errorf("%w: expected 3 or 4 fields", model.ErrInvalidInput)
	}
	departure, err := model.ParseTimeOfDay(parts[1])
	if err != nil {
		return nil, err
	}
	conn := &model.Connection{
		Line:      strings.TrimSpace(parts[0]),
		Departure: departure,
		Stop:      strings.TrimSpace(parts[2]),
	}
	if len(parts) == 4 {
		capacity, err := strconv.Atoi(strings.TrimSpace(parts[3]))
		if err != nil {
			return nil, fmt.Errorf("%w: capacity must be a number", model.ErrInvalidInput)
		}
		conn.Capacity = capacity
	}
	return conn, nil
}
