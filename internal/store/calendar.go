package store

import (
	"context"
	"fmt"
	"time"

	"slotify-backend/internal/model"
	"slotify-backend/internal/schedule"
)

// MonthCalendar assembles a machine's full month: every day of the month,
// every slot of every day, with bookings overlaid. The viewer decides how
// much of each booker is visible; nil means an anonymous viewer.
func (s *gormStore) MonthCalendar(ctx context.Context, machineUUID string, year int, month time.Month, viewer *model.User) (*MonthView, error) {
	machine, err := machineByUUID(s.db.WithContext(ctx), machineUUID)
	if err != nil {
		return nil, err
	}
	tpl, err := schedule.ParseTemplate(machine.SlotTemplate, machine.SlotCount)
	if err != nil {
		return nil, fmt.Errorf("machine %s: %w", machine.Code, err)
	}

	dates := schedule.MonthDates(year, month)
	var bookings []model.Booking
	err = s.db.WithContext(ctx).
		Preload("User").Preload("User.Course").Preload("User.Building").
		Where("machine_id = ? AND date BETWEEN ? AND ?", machine.ID, dates[0], dates[len(dates)-1]).
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	byDay := make(map[string]map[int]*model.Booking, len(bookings))
	for i := range bookings {
		b := &bookings[i]
		if byDay[b.Date] == nil {
			byDay[b.Date] = make(map[int]*model.Booking)
		}
		byDay[b.Date][b.SlotNumber] = b
	}

	view := &MonthView{
		Machine: machineView(machine),
		Year:    year,
		Month:   int(month),
		Days:    make([]DayView, 0, len(dates)),
	}
	for _, date := range dates {
		day := DayView{Date: date, Slots: make([]SlotView, 0, tpl.Len())}
		for _, slot := range tpl.Slots() {
			sv := SlotView{Number: slot.Number, TimeRange: slot.TimeRange()}
			if b, ok := byDay[date][slot.Number]; ok {
				sv.Booked = true
				sv.BookedBy = projectBooker(viewer, &b.User)
			}
			day.Slots = append(day.Slots, sv)
		}
		view.Days = append(view.Days, day)
	}
	return view, nil
}

// projectBooker decides what a viewer learns about a slot's holder. The owner
// sees their own details, admins see everyone's, and anyone else gets just
// enough to recognize a neighbour.
func projectBooker(viewer *model.User, booker *model.User) *BookerView {
	username := booker.Username
	if len(username) > 15 {
		username = username[:15]
	}
	v := &BookerView{
		UUID:     booker.UUID,
		Username: username,
		Avatar:   booker.AvatarURL(),
	}
	if viewer == nil {
		return v
	}
	v.IsOwn = viewer.ID == booker.ID
	if !v.IsOwn && !viewer.IsAdmin() {
		return v
	}
	v.FullName = booker.FullName()
	v.Email = booker.Email
	v.RoomNo = booker.RoomNo
	v.ContactNo = booker.ContactNo
	v.Course = booker.CourseLabel()
	v.Building = booker.Building.Name
	return v
}
