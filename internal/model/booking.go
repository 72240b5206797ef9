package model

import "time"

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"    // Слот занят группой
	BookingStatusCancelled BookingStatus = "cancelled" // Отменено владельцем или админом
)

// Booking assigns one timeslot on one calendar date to one group.
// Start, End and PlaceName are copied at booking time so the record stays
// readable after the timeslot is edited or deleted.
type Booking struct {
	ID          int64         `json:"id"`
	TimeslotID  int64         `json:"timeslot_id"` // 0 если слот уже удалён
	PlaceID     int64         `json:"place_id"`
	PlaceName   string        `json:"place_name"`
	Date        time.Time     `json:"date"`
	Start       TimeOfDay     `json:"start"`
	End         TimeOfDay     `json:"end"`
	GroupID     string        `json:"group_id"`
	Status      BookingStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	CancelledAt *time.Time    `json:"cancelled_at"`
}

// IsActive reports whether the booking still holds its slot.
func (b *Booking) IsActive() bool {
	return b.Status == BookingStatusActive
}

// OwnedBy reports whether groupID owns the booking.
func (b *Booking) OwnedBy(groupID string) bool {
	return groupID != "" && b.GroupID == groupID
}
