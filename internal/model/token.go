package model

import "time"

// ApiToken authenticates API requests for a user. Only the SHA-256 digest of
// the secret is stored; the plaintext is shown exactly once at creation.
// Prefix keeps the first characters of the secret so admins can tell tokens
// apart without ever seeing them again.
type ApiToken struct {
	ID         int64     `gorm:"primaryKey"`
	UUID       string    `gorm:"uniqueIndex;size:36;not null"`
	UserID     int64     `gorm:"index;not null"`
	Prefix     string    `gorm:"size:8;not null"`
	TokenHash  string    `gorm:"uniqueIndex;size:64;not null"`
	ExpiresAt  time.Time `gorm:"not null"`
	LastUsedAt *time.Time
	CreatedAt  time.Time

	// Associations
	User User `gorm:"constraint:OnDelete:CASCADE"`
}

// Expired reports whether the token is past its expiry at the given time.
func (t *ApiToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
