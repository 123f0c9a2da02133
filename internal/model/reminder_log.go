package model

import "time"

// Reminder channels.
const (
	ChannelPush  = "push"
	ChannelEmail = "email"
)

// ReminderLog records that a reminder went out for a booking on a channel.
// The unique index makes every (booking, channel) pair fire at most once.
type ReminderLog struct {
	ID        int64     `gorm:"primaryKey"`
	BookingID int64     `gorm:"not null;uniqueIndex:uniq_reminder_once,priority:1"`
	Channel   string    `gorm:"size:8;not null;uniqueIndex:uniq_reminder_once,priority:2"`
	UserID    int64     `gorm:"index;not null"`
	SentAt    time.Time `gorm:"not null"`
}
