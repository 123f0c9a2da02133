package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// User roles. Admin rights grow left to right; superadmins additionally manage
// other admins and may view past calendars without restriction.
const (
	RoleUser       = "user"
	RoleGuest      = "guest"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// User is a resident account. Accounts are provisioned by admins; there is no
// password column because authentication happens with API tokens.
type User struct {
	ID            int64  `gorm:"primaryKey"`
	UUID          string `gorm:"uniqueIndex;size:36;not null"`
	Username      string `gorm:"uniqueIndex;size:64;not null"`
	Email         string `gorm:"uniqueIndex;size:128;not null"`
	FirstName     string `gorm:"size:64;not null"`
	MiddleName    string `gorm:"size:64"`
	LastName      string `gorm:"size:64"`
	Role          string `gorm:"size:16;not null;default:user"`
	BuildingID    int64  `gorm:"index;not null"`
	CourseID      *int64 `gorm:"index"`
	RoomNo        string `gorm:"size:16"`
	ContactNo     string `gorm:"size:32"`
	ReminderHours int    `gorm:"not null;default:0"` // 0 disables reminders
	ReminderEmail string `gorm:"size:128"`
	DepartureDate *time.Time
	HostName      string `gorm:"size:128"` // guests only: who they are visiting
	LastSeen      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Associations
	Building Building
	Course   *Course
}

// FullName joins the non-empty name parts with single spaces.
func (u *User) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{u.FirstName, u.MiddleName, u.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsAdmin reports whether the user holds admin or superadmin rights.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperadmin
}

// IsGuest reports whether the account is a temporary guest account.
func (u *User) IsGuest() bool {
	return u.Role == RoleGuest
}

// CourseLabel is the short course name shown on calendars, or "Guest" for
// guest accounts without one.
func (u *User) CourseLabel() string {
	if u.Course != nil && u.Course.ShortName != "" {
		return u.Course.ShortName
	}
	return "Guest"
}

// AvatarURL returns the user's Gravatar identicon URL. The hash input is the
// lowercased, trimmed email.
func (u *User) AvatarURL() string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(u.Email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?d=identicon&s=120", hex.EncodeToString(sum[:]))
}
