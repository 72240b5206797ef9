package handlers

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/state"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "📚 <b>Befehle</b>\n\n" +
	"/week – Wochenplan und freie Termine\n" +
	"/mybookings – Eure Buchungen dieser Woche\n" +
	"/quota – Verbleibendes Wochenkontingent\n" +
	"/connections – Verbindungen und freie Plätze\n" +
	"/myclaim – Eure gewählte Verbindung\n" +
	"/cancel – Laufenden Dialog abbrechen\n\n" +
	"<b>Admin</b>\n" +
	"/overview – Wochenübersicht aller Gruppen\n" +
	"/setlimit &lt;n&gt; – Wochenlimit setzen\n" +
	"/assign &lt;telegram_id&gt; &lt;gruppe&gt; – Konto einer Gruppe zuordnen\n" +
	"/places – Plätze und Zeitfenster\n" +
	"/addplace &lt;name&gt; – Platz anlegen\n" +
	"/delplace &lt;id&gt; – Platz löschen\n" +
	"/addslot &lt;platz_id&gt; &lt;HH:MM-HH:MM&gt; – Zeitfenster anlegen\n" +
	"/delslot &lt;id&gt; – Zeitfenster löschen\n" +
	"/addconnection &lt;linie&gt;; &lt;HH:MM&gt;; &lt;haltestelle&gt;[; &lt;plätze&gt;]\n" +
	"/setcapacity &lt;id&gt; &lt;n&gt; – Plätze einer Verbindung ändern\n" +
	"/delconnection &lt;id&gt; – Verbindung löschen"

// HandleStart регистрирует пользователя и показывает его статус
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	from := update.Message.From
	user, err := h.userService.RegisterUser(ctx, from.ID, from.Username, from.FirstName, from.LastName)
	if err != nil {
		h.replyError(ctx, b, update.Message.Chat.ID, "register", err)
		return
	}

	var status string
	switch {
	case user.GroupID != "":
		status = fmt.Sprintf("Du bist der Gruppe <b>%s</b> zugeordnet.", html.EscapeString(h.engine.DisplayName(user.GroupID)))
	case user.IsAdmin:
		status = "Du bist Admin."
	default:
		status = fmt.Sprintf("Dein Konto ist noch keiner Gruppe zugeordnet. Schick einem Admin deine ID: <code>%d</code>", from.ID)
	}
	if user.IsAdmin && user.GroupID != "" {
		status += " Du bist außerdem Admin."
	}

	text := fmt.Sprintf("👋 Hallo, %s!\n\n%s\n\n%s", html.EscapeString(user.FirstName), status, helpText)
	h.sendHTML(ctx, b, update.Message.Chat.ID, text, nil)
}

func (h *Handlers) HandleHelp(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.sendHTML(ctx, b, update.Message.Chat.ID, helpText, nil)
}

// HandleCancel обрабатывает команду /cancel - отмена текущего диалога
func (h *Handlers) HandleCancel(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	if h.stateManager.GetState(telegramID) == state.StateNone {
		h.sendHTML(ctx, b, update.Message.Chat.ID, "Es läuft gerade kein Dialog.", nil)
		return
	}

	h.stateManager.ClearState(telegramID)
	h.sendHTML(ctx, b, update.Message.Chat.ID, "✅ Abgebrochen.", nil)
}

// IsDialogText отбирает обычный текст (не команды) для диалогов
func IsDialogText(update *models.Update) bool {
	return update.Message != nil && update.Message.Text != "" && !strings.HasPrefix(update.Message.Text, "/")
}

// HandleTextMessage обрабатывает текстовые сообщения в зависимости от состояния пользователя
func (h *Handlers) HandleTextMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	if !IsDialogText(update) || update.Message.From == nil {
		return
	}

	telegramID := update.Message.From.ID
	currentState := h.stateManager.GetState(telegramID)

	h.logger.Debug("Dialog message",
		zap.Int64("telegram_id", telegramID),
		zap.String("state", string(currentState)))

	switch currentState {
	case state.StateClaimDestination:
		h.handleClaimDestination(ctx, b, update)
	default:
		h.sendHTML(ctx, b, update.Message.Chat.ID, "Unbekannte Eingabe. Siehe /help", nil)
	}
}
