package model

import (
	"fmt"
	"strings"
	"time"
)

// User is a Telegram account bound to a member group.
type User struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	GroupID    string    `json:"group_id"` // пусто, пока админ не привязал группу
	IsAdmin    bool      `json:"is_admin"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actor returns the identity the engine acts on behalf of.
func (u *User) Actor() Actor {
	return Actor{GroupID: u.GroupID, IsAdmin: u.IsAdmin}
}

// Actor is the caller identity supplied by the auth collaborator.
// The engine trusts the admin flag as given.
type Actor struct {
	GroupID string
	IsAdmin bool
}

// ValidateGroupID checks that id looks like a stable email-like identifier.
func ValidateGroupID(id string) (string, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	local, domain, ok := strings.Cut(id, "@")
	if !ok || local == "" || domain == "" || strings.ContainsAny(id, " \t\n") {
		return "", fmt.Errorf("%w: group id %q must look like name@domain", ErrInvalidInput, id)
	}
	return id, nil
}

// GroupDisplayName turns "7@wh.de" into "Gruppe 7" unless an alias is configured.
func GroupDisplayName(groupID string, aliases map[string]string) string {
	if alias, ok := aliases[groupID]; ok && alias != "" {
		return alias
	}
	local, _, _ := strings.Cut(groupID, "@")
	if local == "" {
		return groupID
	}
	return "Gruppe " + local
}
