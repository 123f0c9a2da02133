package model

import "time"

// EnrolledStudent is one row of the enrollment roster admins maintain.
// Provisioning a user-role account requires the email to be on the roster.
type EnrolledStudent struct {
	ID        int64  `gorm:"primaryKey"`
	UUID      string `gorm:"uniqueIndex;size:36;not null"`
	FullName  string `gorm:"size:192;not null"`
	Email     string `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time
}
