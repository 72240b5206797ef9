// Package week resolves the active booking week.
//
// A week runs Monday through Sunday. Once the cutover instant of the
// current week has passed (by default Sunday 12:00), the following week
// becomes active so groups can book it a day ahead.
package week

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/placebooking_bot/internal/clock"
	"github.com/Freeeeeet/placebooking_bot/internal/model"
)

// BookableDays is the number of weekdays (Mon–Fri) offered for booking.
const BookableDays = 5

// Rule is the cutover rule.
type Rule struct {
	Weekday time.Weekday
	Hour    int
}

// DefaultRule flips to the next week on Sunday at noon.
func DefaultRule() Rule {
	return Rule{Weekday: time.Sunday, Hour: 12}
}

// Validate checks the ranges of the rule.
func (r Rule) Validate() error {
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("%w: cutover weekday out of range", model.ErrInvalidInput)
	}
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("%w: cutover hour must be within 0..23", model.ErrInvalidInput)
	}
	return nil
}

func (r Rule) String() string {
	return fmt.Sprintf("%s %02d:00", r.Weekday, r.Hour)
}

// Window is the half-open date range [Start, End) of one week.
// Both bounds are calendar dates as produced by model.DateOf.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether the calendar date lies inside the window.
func (w Window) Contains(date time.Time) bool {
	d := model.DateOf(date)
	return !d.Before(w.Start) && d.Before(w.End)
}

// LastDay returns the Sunday of the window.
func (w Window) LastDay() time.Time {
	return w.End.AddDate(0, 0, -1)
}

// Days returns the first n dates of the window.
func (w Window) Days(n int) []time.Time {
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, w.Start.AddDate(0, 0, i))
	}
	return days
}

// Bookable returns Monday through Friday of the window.
func (w Window) Bookable() []time.Time {
	return w.Days(BookableDays)
}

// Active computes the active week for now under rule. now is interpreted
// in its own location, so callers pass it already converted to local time.
func Active(now time.Time, rule Rule) Window {
	// 0 = понедельник ... 6 = воскресенье
	dayIndex := (int(now.Weekday()) + 6) % 7
	cutIndex := (int(rule.Weekday) + 6) % 7

	monday := model.DateOf(now).AddDate(0, 0, -dayIndex)
	if dayIndex > cutIndex || (dayIndex == cutIndex && now.Hour() >= rule.Hour) {
		monday = monday.AddDate(0, 0, 7)
	}

	return Window{Start: monday, End: monday.AddDate(0, 0, 7)}
}

// Resolver binds Active to a clock and a time zone.
type Resolver struct {
	clock    clock.Clock
	location *time.Location
}

// NewResolver creates a resolver. A nil location means UTC.
func NewResolver(c clock.Clock, location *time.Location) *Resolver {
	if location == nil {
		location = time.UTC
	}
	return &Resolver{clock: c, location: location}
}

// Now returns the current local time.
func (r *Resolver) Now() time.Time {
	return r.clock.Now().In(r.location)
}

// Today returns the current local calendar date.
func (r *Resolver) Today() time.Time {
	return model.DateOf(r.Now())
}

// Current returns the active week under rule.
func (r *Resolver) Current(rule Rule) Window {
	return Active(r.Now(), rule)
}

var weekdayNames = map[string]time.Weekday{
	"sunday": time.Sunday, "sonntag": time.Sunday, "sun": time.Sunday, "so": time.Sunday,
	"monday": time.Monday, "montag": time.Monday, "mon": time.Monday, "mo": time.Monday,
	"tuesday": time.Tuesday, "dienstag": time.Tuesday, "tue": time.Tuesday, "di": time.Tuesday,
	"wednesday": time.Wednesday, "mittwoch": time.Wednesday, "wed": time.Wednesday, "mi": time.Wednesday,
	"thursday": time.Thursday, "donnerstag": time.Thursday, "thu": time.Thursday, "do": time.Thursday,
	"friday": time.Friday, "freitag": time.Friday, "fri": time.Friday, "fr": time.Friday,
	"saturday": time.Saturday, "samstag": time.Saturday, "sat": time.Saturday, "sa": time.Saturday,
}

// ParseWeekday accepts English or German names and 0..6 (0 = Sunday).
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if d, ok := weekdayNames[s]; ok {
		return d, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 6 {
		return 0, fmt.Errorf("%w: unknown weekday %q", model.ErrInvalidInput, s)
	}
	return time.Weekday(n), nil
}
