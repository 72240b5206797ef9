package state

import "time"

// UserState текущий шаг диалога пользователя
type UserState string

const (
	StateNone UserState = ""

	// Выбор соединения: ждём цель поездки
	StateClaimDestination UserState = "claim_destination"
)

// Ключи данных диалога
const (
	KeyConnectionID    = "connection_id"
	KeyCustomLabel     = "custom_label"
	KeyPreviousClaimID = "previous_claim_id"
)

// DialogTTL через столько неактивный диалог забывается
const DialogTTL = 15 * time.Minute

// UserData хранит временные данные пользователя во время диалога
type UserData struct {
	State     UserState
	Data      map[string]any
	UpdatedAt time.Time
}
