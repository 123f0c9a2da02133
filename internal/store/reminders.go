package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm/clause"

	"slotify-backend/internal/model"
	"slotify-backend/internal/schedule"
)

// DueReminders returns the bookings whose reminder instant has arrived.
// A booking is due when slotStart minus the booker's lead falls inside
// (now-window, now]; with an hourly scan and an hour-wide window every
// booking is caught exactly once. Bookings already logged on both channels
// are filtered out, partially sent ones come back flagged so the worker can
// retry just the missing channel.
func (s *gormStore) DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]DueReminder, error) {
	var maxLead int
	err := s.db.WithContext(ctx).Model(&model.User{}).
		Select("COALESCE(MAX(reminder_hours), 0)").
		Where("reminder_hours > 0").
		Scan(&maxLead).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find max reminder lead: %w", err)
	}
	if maxLead == 0 {
		return nil, nil
	}

	loc := s.rules.Location
	today := schedule.Today(now, loc)
	last := schedule.FormatDate(now.In(loc).Add(time.Duration(maxLead)*time.Hour + window).AddDate(0, 0, 1))

	var bookings []model.Booking
	err = s.db.WithContext(ctx).
		Preload("User").Preload("Machine").Preload("Machine.Building").
		Joins("JOIN users ON users.id = bookings.user_id AND users.reminder_hours > 0").
		Where("bookings.date BETWEEN ? AND ?", today, last).
		Order("bookings.date, bookings.slot_number").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load candidate bookings: %w", err)
	}

	templates := make(map[int64]*schedule.Template)
	var due []DueReminder
	var dueIDs []int64
	for i := range bookings {
		b := &bookings[i]
		tpl, ok := templates[b.MachineID]
		if !ok {
			parsed, err := schedule.ParseTemplate(b.Machine.SlotTemplate, b.Machine.SlotCount)
			if err != nil {
				log.Printf("Warning: machine %s has a broken slot template: %v", b.Machine.Code, err)
				templates[b.MachineID] = nil
				continue
			}
			tpl = &parsed
			templates[b.MachineID] = tpl
		}
		if tpl == nil {
			continue
		}
		slot, ok := tpl.Slot(b.SlotNumber)
		if !ok {
			continue
		}
		start, err := schedule.SlotStartAt(b.Date, slot, loc)
		if err != nil {
			continue
		}
		remindAt := start.Add(-time.Duration(b.User.ReminderHours) * time.Hour)
		if now.Before(remindAt) || !now.Before(remindAt.Add(window)) {
			continue
		}

		email := b.User.ReminderEmail
		if email == "" {
			email = b.User.Email
		}
		due = append(due, DueReminder{
			BookingID:   b.ID,
			BookingUUID: b.UUID,
			UserID:      b.UserID,
			UserUUID:    b.User.UUID,
			Email:       email,
			FirstName:   b.User.FirstName,
			Machine:     b.Machine.Name,
			Building:    b.Machine.Building.Name,
			Date:        b.Date,
			SlotNumber:  b.SlotNumber,
			TimeRange:   slot.TimeRange(),
			StartsAt:    start,
		})
		dueIDs = append(dueIDs, b.ID)
	}
	if len(due) == 0 {
		return nil, nil
	}

	var logs []model.ReminderLog
	if err := s.db.WithContext(ctx).Where("booking_id IN ?", dueIDs).Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to load reminder log: %w", err)
	}
	sent := make(map[int64]map[string]bool, len(logs))
	for _, l := range logs {
		if sent[l.BookingID] == nil {
			sent[l.BookingID] = make(map[string]bool)
		}
		sent[l.BookingID][l.Channel] = true
	}

	out := due[:0]
	for _, d := range due {
		d.PushSent = sent[d.BookingID][model.ChannelPush]
		d.EmailSent = sent[d.BookingID][model.ChannelEmail]
		if d.PushSent && d.EmailSent {
			continue
		}
		out = append(out, d)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

// MarkReminded logs a delivery. The unique index makes this idempotent; the
// return value says whether this call was the first for the pair.
func (s *gormStore) MarkReminded(ctx context.Context, bookingID, userID int64, channel string, at time.Time) (bool, error) {
	entry := model.ReminderLog{
		BookingID: bookingID,
		UserID:    userID,
		Channel:   channel,
		SentAt:    at,
	}
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return false, nil
		}
		return false, fmt.Errorf("failed to log reminder: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
