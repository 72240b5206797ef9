// Package view renders engine results as German Telegram messages.
package view

import (
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

var weekdayShort = []string{"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"}

// FormatDate форматирует дату как "Di 04.03."
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%s %s", weekdayShort[t.Weekday()], t.Format("02.01."))
}

// FormatFullDate форматирует дату как "04.03.2025"
func FormatFullDate(t time.Time) string {
	return t.Format("02.01.2006")
}

func FormatTimeRange(start, end model.TimeOfDay) string {
	return fmt.Sprintf("%s–%s", start, end)
}

// FormatBooking одна строка для списка броней
func FormatBooking(b *model.Booking) string {
	line := fmt.Sprintf("%s %s, %s", FormatDate(b.Date), FormatTimeRange(b.Start, b.End), html.EscapeString(b.PlaceName))
	if !b.IsActive() {
		line = "<s>" + line + "</s> (storniert)"
	}
	return line
}

// ErrorText переводит ошибку движка в сообщение для пользователя
func ErrorText(err error) string {
	switch {
	case errors.Is(err, model.ErrQuotaExceeded):
		return "❌ Euer Wochenkontingent ist aufgebraucht."
	case errors.Is(err, model.ErrSlotTaken):
		return "❌ Dieser Termin ist schon vergeben."
	case errors.Is(err, model.ErrCapacityExceeded):
		return "❌ Diese Verbindung ist voll."
	case errors.Is(err, model.ErrForbidden):
		return "❌ Dafür fehlt dir die Berechtigung."
	case errors.Is(err, model.ErrNotFound):
		return "❌ Nicht gefunden."
	case errors.Is(err, model.ErrInvalidInput):
		return "❌ Ungültige Eingabe."
	default:
		return "❌ Speicher gerade nicht erreichbar. Bitte später erneut versuchen."
	}
}
