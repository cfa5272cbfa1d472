package models

import "time"

// AuthToken is one issued bearer credential. Only the SHA-256 of the random
// part is stored; the plaintext "<id>|<secret>" form is returned once at
// issuance. Logout deletes every row for the user, revoking all sessions.
type AuthToken struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	Name       string     `gorm:"not null" json:"name"`
	TokenHash  string     `gorm:"uniqueIndex;not null" json:"-"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
