package callbacks

import (
	"strconv"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/google/uuid"
)

// handleClaimConnection начинает диалог выбора соединения
func handleClaimConnection(hc *HandlerContext) {
	id, err := strconv.ParseInt(strings.TrimPrefix(hc.Callback.Data, view.CallbackClaim), 10, 64)
	if err != nil || id <= 0 {
		hc.Fail("parse claim", model.ErrInvalidInput)
		return
	}
	startDestinationDialog(hc, map[string]any{state.KeyConnectionID: id})
}

func handleClaimCustom(hc *HandlerContext) {
	idx, err := strconv.Atoi(strings.TrimPrefix(hc.Callback.Data, view.CallbackClaimCustom))
	if err != nil || idx < 0 || idx >= len(view.CustomOptions) {
		hc.Fail("parse claim", model.ErrInvalidInput)
		return
	}
	startDestinationDialog(hc, map[string]any{state.KeyCustomLabel: view.CustomOptions[idx]})
}

// startDestinationDialog запоминает выбор и спрашивает цель поездки.
// Существующая заявка группы передаётся как предыдущая, чтобы правка не блокировала саму себя.
func startDestinationDialog(hc *HandlerContext, data map[string]any) {
	current, err := hc.Handler.Engine.MyClaim(hc.Ctx, hc.Actor())
	if err != nil {
		hc.Fail("my claim", err)
		return
	}
	if current != nil {
		data[state.KeyPreviousClaimID] = current.ID
	}

	hc.Handler.StateManager.Start(hc.TelegramID, state.StateClaimDestination, data)
	hc.Answer("")
	hc.SendMessage("📍 Wohin geht es? Bitte das Ziel schreiben (/cancel zum Abbrechen).")
}

func handleUnclaim(hc *HandlerContext) {
	id, err := uuid.Parse(strings.TrimPrefix(hc.Callback.Data, view.CallbackUnclaim))
	if err != nil {
		hc.Fail("parse unclaim", model.ErrInvalidInput)
		return
	}

	if err := hc.Handler.Engine.Unclaim(hc.Ctx, hc.Actor(), id); err != nil {
		hc.Fail("unclaim", err)
		return
	}

	hc.Answer("🗑 Zurückgezogen")
	text, keyboard := view.Claim(nil)
	hc.EditMessage(text, keyboard)
}
