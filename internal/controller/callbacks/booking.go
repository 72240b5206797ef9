package callbacks

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/placebooking_bot/internal/controller/view"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/service"
)

// parseBookData разбирает "book:<timeslot_id>:<date>"
func parseBookData(data string) (int64, string, error) {
	rest := strings.TrimPrefix(data, view.CallbackBook)
	idPart, date, ok := strings.Cut(rest, ":")
	if !ok {
		return 0, "", fmt.Errorf("%w: malformed book callback", model.ErrInvalidInput)
	}
	id, err := strconv.ParseInt(idPart, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: malformed timeslot id", model.ErrInvalidInput)
	}
	return id, date, nil
}

func handleBook(hc *HandlerContext) {
	timeslotID, dateText, err := parseBookData(hc.Callback.Data)
	if err != nil {
		hc.Fail("parse book", err)
		return
	}
	date, err := model.ParseDate(dateText)
	if err != nil {
		hc.Fail("parse book", err)
		return
	}

	booking, err := hc.Handler.Engine.Reserve(hc.Ctx, hc.Actor(), service.ReserveRequest{
		TimeslotID: timeslotID,
		Date:       date,
	})
	if err != nil {
		hc.Fail("reserve", err)
		refreshWeek(hc)
		return
	}

	hc.Answer(fmt.Sprintf("✅ Gebucht: %s %s", view.FormatDate(booking.Date), booking.Start))
	refreshWeek(hc)
}

func handleCancel(hc *HandlerContext) {
	id, err := strconv.ParseInt(strings.TrimPrefix(hc.Callback.Data, view.CallbackCancel), 10, 64)
	if err != nil {
		hc.Fail("parse cancel", model.ErrInvalidInput)
		return
	}

	booking, err := hc.Handler.Engine.Cancel(hc.Ctx, hc.Actor(), id)
	if err != nil {
		hc.Fail("cancel", err)
		return
	}

	hc.Answer(fmt.Sprintf("🗑 Storniert: %s %s", view.FormatDate(booking.Date), booking.Start))
	refreshWeek(hc)
}

func handleRefreshWeek(hc *HandlerContext) {
	hc.Answer("")
	refreshWeek(hc)
}

// refreshWeek перерисовывает доску в исходном сообщении
func refreshWeek(hc *HandlerContext) {
	board, err := hc.Handler.Engine.WeekBoard(hc.Ctx, hc.Actor())
	if err != nil {
		hc.Fail("week board", err)
		return
	}
	text, keyboard := view.Board(board)
	hc.EditMessage(text, keyboard)
}
