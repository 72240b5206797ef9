// Package quota counts how much of its weekly booking allowance a group
// has used. It is a pure aggregation over the current booking set and
// never keeps its own counters.
package quota

import (
	"sort"

	"github.com/Freeeeeet/placebooking_bot/internal/model"
	"github.com/Freeeeeet/placebooking_bot/internal/week"
)

// DefaultWeeklyLimit is the number of bookings a group may hold per week.
const DefaultWeeklyLimit = 8

// Window is the active week together with the per-group limit.
type Window struct {
	week.Window
	Limit int `json:"limit"`
}

// Used counts active bookings of groupID dated inside w.
func Used(groupID string, bookings []*model.Booking, w week.Window) int {
	used := 0
	for _, b := range bookings {
		if b.OwnedBy(groupID) && b.IsActive() && w.Contains(b.Date) {
			used++
		}
	}
	return used
}

// Remaining returns max(0, limit - used).
func Remaining(groupID string, bookings []*model.Booking, w week.Window, limit int) int {
	return clamp(limit - Used(groupID, bookings, w))
}

// GroupUsage is one row of the weekly overview.
type GroupUsage struct {
	GroupID   string `json:"group_id"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

// Summarize returns usage for every group that appears in bookings,
// including groups with no active booking in the window, ordered by group id.
func Summarize(bookings []*model.Booking, w Window) []GroupUsage {
	used := make(map[string]int)
	for _, b := range bookings {
		if _, ok := used[b.GroupID]; !ok {
			used[b.GroupID] = 0
		}
		if b.IsActive() && w.Contains(b.Date) {
			used[b.GroupID]++
		}
	}

	summary := make([]GroupUsage, 0, len(used))
	for groupID, n := range used {
		summary = append(summary, GroupUsage{
			GroupID:   groupID,
			Used:      n,
			Remaining: clamp(w.Limit - n),
		})
	}
	sort.Slice(summary, func(i, j int) bool {
		return summary[i].GroupID < summary[j].GroupID
	})
	return summary
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
