package model

import "time"

// Booking claims one slot on one machine for one calendar day.
//
// Date is stored as an ISO "2006-01-02" string so range scans behave the same
// on Postgres and SQLite. The composite unique index is what guarantees a slot
// can only ever be claimed once; the store treats a duplicate-key insert as a
// lost booking race.
type Booking struct {
	ID         int64  `gorm:"primaryKey"`
	UUID       string `gorm:"uniqueIndex;size:36;not null"`
	MachineID  int64  `gorm:"not null;uniqueIndex:uniq_machine_day_slot,priority:1"`
	Date       string `gorm:"size:10;not null;index;uniqueIndex:uniq_machine_day_slot,priority:2"`
	SlotNumber int    `gorm:"not null;uniqueIndex:uniq_machine_day_slot,priority:3"`
	UserID     int64  `gorm:"index;not null"`
	CreatedAt  time.Time

	// Associations
	Machine Machine
	User    User `gorm:"constraint:OnDelete:CASCADE"`
}
