package model

import "time"

// Course is an academic programme residents may belong to. Calendars display
// the short name next to a booker.
type Course struct {
	ID            int64  `gorm:"primaryKey"`
	UUID          string `gorm:"uniqueIndex;size:36;not null"`
	Code          string `gorm:"uniqueIndex;size:32;not null"`
	Name          string `gorm:"size:256;not null"`
	ShortName     string `gorm:"size:64;not null"`
	Level         string `gorm:"size:32"`
	Department    string `gorm:"size:128"`
	DurationYears int
	Description   string `gorm:"size:1024"`
	IsActive      bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
