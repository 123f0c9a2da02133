package model

import "time"

// Machine statuses. Only an available machine accepts new bookings.
const (
	MachineAvailable   = "available"
	MachineMaintenance = "maintenance"
	MachineDisabled    = "disabled"
)

// Machine represents a washing machine and its daily slot layout.
//
// SlotTemplate holds the machine's time ranges as a comma separated list of
// "HH:MM-HH:MM" entries, one per slot in display order. Slots are derived from
// the template on demand and never persisted. A machine that has bookings
// cannot be deleted; it is retired by setting Status to disabled.
type Machine struct {
	ID           int64  `gorm:"primaryKey"`
	UUID         string `gorm:"uniqueIndex;size:36;not null"`
	BuildingID   int64  `gorm:"index;not null"`
	Name         string `gorm:"uniqueIndex;size:128;not null"`
	Code         string `gorm:"uniqueIndex;size:32;not null"`
	Status       string `gorm:"size:16;not null;default:available"`
	SlotCount    int    `gorm:"not null"`
	SlotTemplate string `gorm:"size:1024;not null"`
	ImageURL     string `gorm:"size:512"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Associations
	Building Building
}
