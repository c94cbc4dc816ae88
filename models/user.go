package models

import "time"

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// User is created on first contact with the bot and keyed by the stable
// chat-platform identifier.
type User struct {
	ID          int       `json:"id" db:"id"`
	ExternalID  int64     `json:"external_id" db:"external_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        UserRole  `json:"role" db:"role"`
	Blocked     bool      `json:"blocked" db:"blocked"`
	Timezone    string    `json:"timezone" db:"timezone"`
	Locale      string    `json:"locale" db:"locale"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
