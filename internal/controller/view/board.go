package view

import (
	"fmt"
	"html"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
	"github.com/go-telegram/bot/models"
)

// Префиксы callback data
const (
	CallbackBook        = "book:"         // book:<timeslot_id>:<date>
	CallbackCancel      = "cancel:"       // cancel:<booking_id>
	CallbackClaim       = "claim:"        // claim:<connection_id>
	CallbackClaimCustom = "claim_custom:" // claim_custom:<option index>
	CallbackUnclaim     = "unclaim:"      // unclaim:<claim uuid>
	CallbackRefreshWeek = "week"
	CallbackNoop        = "noop"
)

// CustomOptions варианты выбора без соединения
var CustomOptions = []string{"Zu Fuß", "Mit dem Fahrrad", "Andere"}

// BookCallback собирает callback data для бронирования ячейки
func BookCallback(timeslotID int64, date string) string {
	return fmt.Sprintf("%s%d:%s", CallbackBook, timeslotID, date)
}

// Board рендерит недельную доску: текст и по кнопке на свободную ячейку
func Board(board *service.Board) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📅 <b>Woche %s – %s</b>\n", FormatFullDate(board.Window.Start), FormatFullDate(board.Window.LastDay()))
	fmt.Fprintf(&sb, "Verbleibende Buchungen: <b>%d</b> von %d\n", board.Remaining, board.Window.Limit)

	kb := NewBuilder()
	if len(board.Places) == 0 {
		sb.WriteString("\nNoch keine Plätze angelegt.")
	}

	for _, place := range board.Places {
		fmt.Fprintf(&sb, "\n🏟 <b>%s</b>\n", html.EscapeString(place.Place.Name))
		for _, slot := range place.Slots {
			fmt.Fprintf(&sb, "%s\n", FormatTimeRange(slot.Timeslot.Start, slot.Timeslot.End))
			row := make([]models.InlineKeyboardButton, 0, len(slot.Cells))
			for _, cell := range slot.Cells {
				day := weekdayShort[cell.Date.Weekday()]
				switch {
				case cell.Mine:
					fmt.Fprintf(&sb, "  %s: ✅ ihr\n", day)
					row = append(row, Button("✅ "+day, fmt.Sprintf("%s%d", CallbackCancel, cell.BookingID)))
				case !cell.Free():
					fmt.Fprintf(&sb, "  %s: %s\n", day, html.EscapeString(cell.OwnerName))
					row = append(row, Button("⛔ "+day, CallbackNoop))
				case cell.Past:
					row = append(row, Button("· "+day, CallbackNoop))
				default:
					row = append(row, Button(day, BookCallback(slot.Timeslot.ID, cell.Date.Format(model.DateLayout))))
				}
			}
			kb.Row(row...)
		}
	}
	kb.Row(Button("🔄 Aktualisieren", CallbackRefreshWeek))
	return sb.String(), kb.Build()
}

// Bookings рендерит список броней группы с кнопками отмены
func Bookings(bookings []*model.Booking, remaining int) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	kb := NewBuilder()
	if len(bookings) == 0 {
		sb.WriteString("📭 Ihr habt diese Woche noch nichts gebucht.\n")
	} else {
		sb.WriteString("📋 <b>Eure Buchungen</b>\n\n")
	}
	for _, b := range bookings {
		sb.WriteString(FormatBooking(b))
		sb.WriteString("\n")
		if b.IsActive() {
			kb.Row(Button("❌ "+FormatDate(b.Date)+" "+b.Start.String(), fmt.Sprintf("%s%d", CallbackCancel, b.ID)))
		}
	}
	fmt.Fprintf(&sb, "\nVerbleibend: <b>%d</b>", remaining)
	return sb.String(), kb.Build()
}

// Connections рендерит список соединений с загрузкой и кнопками выбора
func Connections(usage []model.ConnectionUsage) (string, *models.InlineKeyboardMarkup) {
	var sb strings.Builder
	kb := NewBuilder()
	sb.WriteString("🚌 <b>Verbindungen</b>\n\n")
	if len(usage) == 0 {
		sb.WriteString("Keine Verbindungen angelegt.\n")
	}
	for _, u := range usage {
		mark := "🟢"
		if u.Full() {
			mark = "🔴"
		}
		fmt.Fprintf(&sb, "%s %s (%d/%d)\n", mark, html.EscapeString(u.Connection.Label()), u.Used, u.Connection.Capacity)
		if !u.Full() {
			kb.Row(Button(u.Connection.Label(), fmt.Sprintf("%s%d", CallbackClaim, u.Connection.ID)))
		}
	}
	row := make([]models.InlineKeyboardButton, 0, len(CustomOptions))
	for i, opt := range CustomOptions {
		row = append(row, Button(opt, fmt.Sprintf("%s%d", CallbackClaimCustom, i)))
	}
	kb.Row(row...)
	return sb.String(), kb.Build()
}

// Claim рендерит выбор группы
func Claim(c *model.Claim) (string, *models.InlineKeyboardMarkup) {
	if c == nil {
		return "Ihr habt noch keine Verbindung gewählt. Siehe /connections", nil
	}
	option := ""
	switch {
	case c.Connection != nil:
		option = c.Connection.Label()
	case c.CustomLabel != nil:
		option = *c.CustomLabel
	}
	text := fmt.Sprintf("🎯 <b>Eure Wahl</b>\n%s\nZiel: %s", html.EscapeString(option), html.EscapeString(c.Destination))
	kb := NewBuilder().Row(Button("🗑 Zurückziehen", CallbackUnclaim+c.ID.String()))
	return text, kb.Build()
}

// Overview рендерит недельную сводку для админа
func Overview(o *service.Overview) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 <b>Übersicht %s – %s</b> (Limit %d)\n\n", FormatFullDate(o.Window.Start), FormatFullDate(o.Window.LastDay()), o.Window.Limit)
	for _, g := range o.Groups {
		fmt.Fprintf(&sb, "%s: %d gebucht, %d frei\n", html.EscapeString(g.Name), g.Used, g.Remaining)
	}
	if len(o.Bookings) > 0 {
		sb.WriteString("\n")
	}
	for _, b := range o.Bookings {
		fmt.Fprintf(&sb, "%s · %s\n", FormatBooking(b), html.EscapeString(b.GroupID))
	}
	return sb.String()
}
