package quota

import (
	"testing"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var june = week.Window{
	Start: time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC),
	End:   time.Date(2025, time.June, 9, 0, 0, 0, 0, time.UTC),
}

func booking(group string, day int, status model.BookingStatus) *model.Booking {
	return &model.Booking{
		GroupID: group,
		Date:    time.Date(2025, time.June, day, 0, 0, 0, 0, time.UTC),
		Status:  status,
	}
}

func TestRemaining(t *testing.T) {
	bookings := []*model.Booking{
		booking("7@wh.de", 2, model.BookingStatusActive),
		booking("7@wh.de", 3, model.BookingStatusActive),
		booking("7@wh.de", 4, model.BookingStatusCancelled),
		booking("7@wh.de", 9, model.BookingStatusActive), // следующая неделя
		booking("7@wh.de", 1, model.BookingStatusActive), // прошлая неделя
		booking("8@wh.de", 5, model.BookingStatusActive),
	}

	assert.Equal(t, 2, Used("7@wh.de", bookings, june))
	assert.Equal(t, 6, Remaining("7@wh.de", bookings, june, 8))
	assert.Equal(t, 7, Remaining("8@wh.de", bookings, june, 8))
	assert.Equal(t, 8, Remaining("9@wh.de", bookings, june, 8))
}

func TestRemainingNeverNegative(t *testing.T) {
	bookings := []*model.Booking{
		booking("7@wh.de", 2, model.BookingStatusActive),
		booking("7@wh.de", 3, model.BookingStatusActive),
		booking("7@wh.de", 4, model.BookingStatusActive),
	}

	assert.Equal(t, 0, Remaining("7@wh.de", bookings, june, 2))
	assert.Equal(t, 0, Remaining("7@wh.de", bookings, june, 0))
}

func TestSummarize(t *testing.T) {
	bookings := []*model.Booking{
		booking("8@wh.de", 2, model.BookingStatusActive),
		booking("7@wh.de", 3, model.BookingStatusActive),
		booking("7@wh.de", 4, model.BookingStatusActive),
		booking("9@wh.de", 4, model.BookingStatusCancelled),
	}

	summary := Summarize(bookings, Window{Window: june, Limit: 2})
	require.Len(t, summary, 3)
	assert.Equal(t, GroupUsage{GroupID: "7@wh.de", Used: 2, Remaining: 0}, summary[0])
	assert.Equal(t, GroupUsage{GroupID: "8@wh.de", Used: 1, Remaining: 1}, summary[1])
	assert.Equal(t, GroupUsage{GroupID: "9@wh.de", Used: 0, Remaining: 2}, summary[2])
}
