package model

import "time"

// Building represents a hostel building whose residents share its machines.
type Building struct {
	ID        int64     `gorm:"primaryKey"`
	UUID      string    `gorm:"uniqueIndex;size:36;not null"`
	Name      string    `gorm:"uniqueIndex;size:128;not null"`
	Code      string    `gorm:"uniqueIndex;size:32;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	// Associations
	Machines []Machine `gorm:"foreignKey:BuildingID"`
}
