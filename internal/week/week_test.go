package week

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestActive(t *testing.T) {
	rule := DefaultRule()
	// 2025-06-02 — понедельник
	tests := []struct {
		name  string
		now   time.Time
		start time.Time
	}{
		{"monday morning", time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC), date(2025, time.June, 2)},
		{"wednesday", time.Date(2025, time.June, 4, 15, 30, 0, 0, time.UTC), date(2025, time.June, 2)},
		{"saturday late", time.Date(2025, time.June, 7, 23, 59, 0, 0, time.UTC), date(2025, time.June, 2)},
		{"sunday before cutover", time.Date(2025, time.June, 8, 11, 59, 0, 0, time.UTC), date(2025, time.June, 2)},
		{"sunday at cutover", time.Date(2025, time.June, 8, 12, 0, 0, 0, time.UTC), date(2025, time.June, 9)},
		{"sunday after cutover", time.Date(2025, time.June, 8, 13, 0, 0, 0, time.UTC), date(2025, time.June, 9)},
		{"across month end", time.Date(2025, time.June, 29, 18, 0, 0, 0, time.UTC), date(2025, time.June, 30)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Active(tt.now, rule)
			assert.Equal(t, tt.start, w.Start)
			assert.Equal(t, tt.start.AddDate(0, 0, 7), w.End)
		})
	}
}

func TestActiveCustomRule(t *testing.T) {
	rule := Rule{Weekday: time.Friday, Hour: 18}

	w := Active(time.Date(2025, time.June, 6, 17, 0, 0, 0, time.UTC), rule)
	assert.Equal(t, date(2025, time.June, 2), w.Start)

	w = Active(time.Date(2025, time.June, 6, 18, 0, 0, 0, time.UTC), rule)
	assert.Equal(t, date(2025, time.June, 9), w.Start)

	// После пятницы следующая неделя остаётся активной до понедельника
	w = Active(time.Date(2025, time.June, 7, 9, 0, 0, 0, time.UTC), rule)
	assert.Equal(t, date(2025, time.June, 9), w.Start)
}

func TestActiveUsesLocalDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 10:30 UTC = 12:30 в Берлине (летнее время), воскресенье
	now := time.Date(2025, time.June, 8, 10, 30, 0, 0, time.UTC)
	r := NewResolver(clock.NewFixed(now), berlin)

	assert.Equal(t, date(2025, time.June, 9), r.Current(DefaultRule()).Start)
	assert.Equal(t, date(2025, time.June, 8), r.Today())
}

func TestWindow(t *testing.T) {
	w := Window{Start: date(2025, time.June, 2), End: date(2025, time.June, 9)}

	assert.True(t, w.Contains(date(2025, time.June, 2)))
	assert.True(t, w.Contains(date(2025, time.June, 8)))
	assert.False(t, w.Contains(date(2025, time.June, 9)))
	assert.False(t, w.Contains(date(2025, time.June, 1)))
	assert.Equal(t, date(2025, time.June, 8), w.LastDay())

	days := w.Bookable()
	require.Len(t, days, 5)
	assert.Equal(t, time.Monday, days[0].Weekday())
	assert.Equal(t, time.Friday, days[4].Weekday())
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"Sunday": time.Sunday, "sonntag": time.Sunday, "0": time.Sunday,
		"Freitag": time.Friday, "6": time.Saturday, " mo ": time.Monday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("someday")
	assert.Error(t, err)
	_, err = ParseWeekday("7")
	assert.Error(t, err)
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, DefaultRule().Validate())
	assert.Error(t, Rule{Weekday: time.Sunday, Hour: 24}.Validate())
	assert.Error(t, Rule{Weekday: 9, Hour: 1}.Validate())
}
