package model

import (
	"fmt"
	"strings"
	"time"
)

// Place is a bookable facility, e.g. a sports court.
type Place struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	// Заполняется сервисом, не из таблицы places
	Timeslots []*Timeslot `json:"timeslots,omitempty"`
}

// Timeslot is a recurring daily time range of a place.
type Timeslot struct {
	ID        int64     `json:"id"`
	PlaceID   int64     `json:"place_id"`
	Start     TimeOfDay `json:"start"`
	End       TimeOfDay `json:"end"`
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the time range of the timeslot.
func (t *Timeslot) Validate() error {
	if !t.Start.Valid() || !t.End.Valid() {
		return fmt.Errorf("%w: time of day out of range", ErrInvalidInput)
	}
	if t.End <= t.Start {
		return fmt.Errorf("%w: end time must be after start time", ErrInvalidInput)
	}
	return nil
}

// ValidatePlaceName trims and checks a place name.
func ValidatePlaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: place name is required", ErrInvalidInput)
	}
	if len(name) > 100 {
		return "", fmt.Errorf("%w: place name is too long", ErrInvalidInput)
	}
	return name, nil
}
