package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
	"slotify-backend/internal/schedule"
)

// BookSlot claims one slot for the actor. Checks run inside one transaction
// in a fixed order so callers always get the most specific refusal; the
// composite unique index on bookings settles any race two transactions
// survive to the insert.
func (s *gormStore) BookSlot(ctx context.Context, now time.Time, machineUUID, date string, slotNumber int, actor *model.User) (*BookingView, error) {
	if _, err := schedule.ParseDate(date); err != nil {
		return nil, err
	}
	today := schedule.Today(now, s.rules.Location)
	horizon := schedule.FormatDate(now.In(s.rules.Location).AddDate(0, 0, s.rules.HorizonDays))

	var view BookingView
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		machine, err := machineByUUID(tx, machineUUID)
		if err != nil {
			return err
		}
		if machine.Status != model.MachineAvailable {
			return ErrMachineUnavailable
		}
		if !actor.IsAdmin() && actor.BuildingID != machine.BuildingID {
			return ErrWrongBuilding
		}
		if date < today {
			return ErrPastDate
		}
		if date > horizon {
			return ErrHorizonExceeded
		}
		tpl, err := schedule.ParseTemplate(machine.SlotTemplate, machine.SlotCount)
		if err != nil {
			return fmt.Errorf("machine %s: %w", machine.Code, err)
		}
		slot, ok := tpl.Slot(slotNumber)
		if !ok {
			return ErrSlotNotFound
		}

		var n int64
		if err := tx.Model(&model.Booking{}).
			Where("user_id = ? AND date = ?", actor.ID, date).
			Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count daily bookings: %w", err)
		}
		if n >= int64(s.rules.MaxPerDay) {
			return ErrDailyLimit
		}

		monday, sunday, err := schedule.WeekBounds(date)
		if err != nil {
			return err
		}
		if err := tx.Model(&model.Booking{}).
			Where("user_id = ? AND machine_id = ? AND date BETWEEN ? AND ?", actor.ID, machine.ID, monday, sunday).
			Count(&n).Error; err != nil {
			return fmt.Errorf("failed to count weekly bookings: %w", err)
		}
		if n >= int64(s.rules.WeeklyMachineLimit) {
			return ErrWeeklyLimit
		}

		if err := tx.Model(&model.Booking{}).
			Where("machine_id = ? AND date = ? AND slot_number = ?", machine.ID, date, slotNumber).
			Count(&n).Error; err != nil {
			return fmt.Errorf("failed to check slot: %w", err)
		}
		if n > 0 {
			return ErrSlotTaken
		}

		booking := model.Booking{
			MachineID:  machine.ID,
			Date:       date,
			SlotNumber: slotNumber,
			UserID:     actor.ID,
			CreatedAt:  now,
		}
		if err := tx.Create(&booking).Error; err != nil {
			if isDuplicate(err) {
				// Lost the race for the slot to a concurrent booking.
				return ErrSlotTaken
			}
			return fmt.Errorf("failed to create booking: %w", err)
		}

		view = BookingView{
			UUID:        booking.UUID,
			MachineUUID: machine.UUID,
			Machine:     machine.Name,
			Building:    machine.Building.Name,
			Date:        date,
			SlotNumber:  slotNumber,
			TimeRange:   slot.TimeRange(),
			CreatedAt:   booking.CreatedAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// CancelBooking removes a booking by its UUID.
func (s *gormStore) CancelBooking(ctx context.Context, now time.Time, bookingUUID string, actor *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Booking
		if err := tx.Preload("Machine").Where("uuid = ?", bookingUUID).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}
		return s.cancel(tx, now, &b, actor)
	})
}

// CancelSlot removes a booking addressed by its position on the calendar.
func (s *gormStore) CancelSlot(ctx context.Context, now time.Time, machineUUID, date string, slotNumber int, actor *model.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		machine, err := machineByUUID(tx, machineUUID)
		if err != nil {
			return err
		}
		var b model.Booking
		err = tx.Where("machine_id = ? AND date = ? AND slot_number = ?", machine.ID, date, slotNumber).First(&b).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("failed to load booking: %w", err)
		}
		b.Machine = *machine
		return s.cancel(tx, now, &b, actor)
	})
}

// cancel enforces ownership and the owner's cancellation window, then deletes
// the row. Admins may cancel anything at any time.
func (s *gormStore) cancel(tx *gorm.DB, now time.Time, b *model.Booking, actor *model.User) error {
	if b.UserID != actor.ID && !actor.IsAdmin() {
		return ErrNotBookingOwner
	}
	if !actor.IsAdmin() {
		today := schedule.Today(now, s.rules.Location)
		if b.Date < today {
			return ErrCancelWindowClosed
		}
		if b.Date == today {
			tpl, err := schedule.ParseTemplate(b.Machine.SlotTemplate, b.Machine.SlotCount)
			if err != nil {
				return fmt.Errorf("machine %s: %w", b.Machine.Code, err)
			}
			// A slot number beyond the current template means the machine was
			// reconfigured under the booking; let the owner free it.
			if slot, ok := tpl.Slot(b.SlotNumber); ok {
				start, err := schedule.SlotStartAt(b.Date, slot, s.rules.Location)
				if err != nil {
					return err
				}
				if !now.Before(start) {
					return ErrCancelWindowClosed
				}
			}
		}
	}
	// Reminder logs key on the booking id, which the database may hand out
	// again once the row is gone.
	if err := tx.Where("booking_id = ?", b.ID).Delete(&model.ReminderLog{}).Error; err != nil {
		return fmt.Errorf("failed to delete reminder logs: %w", err)
	}
	if err := tx.Delete(&model.Booking{}, b.ID).Error; err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	return nil
}

// UpcomingBookings lists a user's bookings that have not finished yet,
// ordered by date and slot. Today's bookings stay listed until their slot end
// passes.
func (s *gormStore) UpcomingBookings(ctx context.Context, now time.Time, userID int64) ([]BookingView, error) {
	today := schedule.Today(now, s.rules.Location)
	var bookings []model.Booking
	err := s.db.WithContext(ctx).
		Preload("Machine").Preload("Machine.Building").
		Where("user_id = ? AND date >= ?", userID, today).
		Order("date, slot_number").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	templates := make(map[int64]schedule.Template)
	out := make([]BookingView, 0, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		tpl, ok := templates[b.MachineID]
		if !ok {
			var err error
			tpl, err = schedule.ParseTemplate(b.Machine.SlotTemplate, b.Machine.SlotCount)
			if err != nil {
				log.Printf("Warning: machine %s has a broken slot template: %v", b.Machine.Code, err)
				templates[b.MachineID] = schedule.Template{}
				tpl = schedule.Template{}
			} else {
				templates[b.MachineID] = tpl
			}
		}

		timeRange := ""
		if slot, ok := tpl.Slot(b.SlotNumber); ok {
			timeRange = slot.TimeRange()
			if b.Date == today {
				end, err := schedule.SlotEndAt(b.Date, slot, s.rules.Location)
				if err == nil && now.After(end) {
					continue
				}
			}
		}
		out = append(out, BookingView{
			UUID:        b.UUID,
			MachineUUID: b.Machine.UUID,
			Machine:     b.Machine.Name,
			Building:    b.Machine.Building.Name,
			Date:        b.Date,
			SlotNumber:  b.SlotNumber,
			TimeRange:   timeRange,
			CreatedAt:   b.CreatedAt,
		})
	}
	return out, nil
}
