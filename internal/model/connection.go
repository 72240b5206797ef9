package model

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultConnectionCapacity is used when an admin does not set a capacity.
const DefaultConnectionCapacity = 3

// MaxLabelLength ограничивает линию, остановку и свой вариант (VARCHAR(100)).
const MaxLabelLength = 100

// Connection is a shared resource with a finite number of seats,
// e.g. a bus departure that several groups can take together.
type Connection struct {
	ID        int64     `json:"id"`
	Line      string    `json:"line"`
	Departure TimeOfDay `json:"departure"`
	Stop      string    `json:"stop"`
	Capacity  int       `json:"capacity"`
	CreatedAt time.Time `json:"created_at"`
}

// Label formats the connection for display.
func (c *Connection) Label() string {
	return fmt.Sprintf("%s – %s ab %s", c.Line, c.Departure, c.Stop)
}

// Validate trims text fields and checks the capacity.
func (c *Connection) Validate() error {
	c.Line = strings.TrimSpace(c.Line)
	c.Stop = strings.TrimSpace(c.Stop)
	if c.Line == "" || c.Stop == "" {
		return fmt.Errorf("%w: line and stop are required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(c.Line) > MaxLabelLength || utf8.RuneCountInString(c.Stop) > MaxLabelLength {
		return fmt.Errorf("%w: line or stop is too long", ErrInvalidInput)
	}
	if !c.Departure.Valid() {
		return fmt.Errorf("%w: departure out of range", ErrInvalidInput)
	}
	if c.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrInvalidInput)
	}
	return nil
}

// ConnectionUsage pairs a connection with the number of claims on it.
type ConnectionUsage struct {
	Connection *Connection `json:"connection"`
	Used       int         `json:"used"`
}

// Full reports whether no seat is left.
func (u ConnectionUsage) Full() bool {
	return u.Used >= u.Connection.Capacity
}

// OverAllocated reports whether more claims exist than seats.
func (u ConnectionUsage) OverAllocated() bool {
	return u.Used > u.Connection.Capacity
}

// Claim is a group's single entry for an outing: either a seat on a
// connection or a free-text alternative (on foot, by bike, ...).
// Exactly one of ConnectionID and CustomLabel is set.
type Claim struct {
	ID           uuid.UUID `json:"id"`
	GroupID      string    `json:"group_id"`
	ConnectionID *int64    `json:"connection_id"`
	CustomLabel  *string   `json:"custom_label"`
	Destination  string    `json:"destination"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Дополнительное поле для удобства (не из БД)
	Connection *Connection `json:"connection,omitempty"`
}

// Targets reports whether the claim occupies a seat on connectionID.
func (c *Claim) Targets(connectionID int64) bool {
	return c.ConnectionID != nil && *c.ConnectionID == connectionID
}

// ClaimTarget is what a group wants to claim.
type ClaimTarget struct {
	ConnectionID int64
	CustomLabel  string
}

// ConnectionTarget targets a seat on a connection.
func ConnectionTarget(connectionID int64) ClaimTarget {
	return ClaimTarget{ConnectionID: connectionID}
}

// CustomTarget targets a free-text alternative.
func CustomTarget(label string) ClaimTarget {
	return ClaimTarget{CustomLabel: label}
}

// IsConnection reports whether the target is a connection seat.
func (t ClaimTarget) IsConnection() bool {
	return t.ConnectionID != 0
}

// Validate checks that exactly one of the two targets is set.
func (t ClaimTarget) Validate() error {
	label := strings.TrimSpace(t.CustomLabel)
	hasLabel := label != ""
	switch {
	case t.ConnectionID != 0 && hasLabel:
		return fmt.Errorf("%w: claim must target either a connection or a custom label", ErrInvalidInput)
	case t.ConnectionID == 0 && !hasLabel:
		return fmt.Errorf("%w: claim target is required", ErrInvalidInput)
	case t.ConnectionID < 0:
		return fmt.Errorf("%w: invalid connection id", ErrInvalidInput)
	case utf8.RuneCountInString(label) > MaxLabelLength:
		return fmt.Errorf("%w: custom label is too long", ErrInvalidInput)
	}
	return nil
}
