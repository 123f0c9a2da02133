// Package schedule resolves machine slot templates into concrete daily slots.
// Everything here is pure: bookings, machines, and the database are unknown to
// this package.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Layouts for the wire formats used across the API: calendar dates are ISO
// "YYYY-MM-DD" strings and slot times are 24h "HH:MM" strings.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	// ErrTemplateMismatch reports a machine whose slot template does not
	// produce exactly its declared slot count.
	ErrTemplateMismatch = errors.New("slot template does not match slot count")
	// ErrBadRange reports a malformed "HH:MM-HH:MM" entry.
	ErrBadRange = errors.New("malformed time range")
	// ErrBadDate reports a string that is not an ISO calendar date.
	ErrBadDate = errors.New("malformed date")
)

// Slot is one bookable window of a machine's day. Numbers start at 1 and
// follow template order.
type Slot struct {
	Number int
	Start  string
	End    string
}

// TimeRange renders the slot in the template's own "HH:MM-HH:MM" form.
func (s Slot) TimeRange() string {
	return s.Start + "-" + s.End
}

// Template is a machine's parsed slot layout, identical for every day.
type Template struct {
	slots []Slot
}

// ParseTemplate parses a comma separated list of "HH:MM-HH:MM" ranges and
// checks it against the machine's declared slot count. A mismatch means the
// machine row is misconfigured, not that the caller did anything wrong.
func ParseTemplate(template string, slotCount int) (Template, error) {
	var slots []Slot
	for _, raw := range strings.Split(template, ",") {
		entry := strings.TrimSpace(raw)
		start, end, ok := strings.Cut(entry, "-")
		if !ok {
			return Template{}, fmt.Errorf("%w: %q", ErrBadRange, entry)
		}
		startAt, err := time.Parse(TimeLayout, start)
		if err != nil {
			return Template{}, fmt.Errorf("%w: %q", ErrBadRange, entry)
		}
		endAt, err := time.Parse(TimeLayout, end)
		if err != nil {
			return Template{}, fmt.Errorf("%w: %q", ErrBadRange, entry)
		}
		if !startAt.Before(endAt) {
			return Template{}, fmt.Errorf("%w: %q ends before it starts", ErrBadRange, entry)
		}
		slots = append(slots, Slot{Number: len(slots) + 1, Start: start, End: end})
	}
	if len(slots) != slotCount {
		return Template{}, fmt.Errorf("%w: template has %d ranges, machine declares %d slots", ErrTemplateMismatch, len(slots), slotCount)
	}
	return Template{slots: slots}, nil
}

// Len returns the number of slots in the template.
func (t Template) Len() int { return len(t.slots) }

// Slots returns the full day's slots in order.
func (t Template) Slots() []Slot {
	out := make([]Slot, len(t.slots))
	copy(out, t.slots)
	return out
}

// Slot returns the slot with the given number, if the template has one.
func (t Template) Slot(number int) (Slot, bool) {
	if number < 1 || number > len(t.slots) {
		return Slot{}, false
	}
	return t.slots[number-1], true
}

// ParseDate parses a strict ISO calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return d, nil
}

// FormatDate renders a time as an ISO calendar date.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Today returns the current calendar date in the given location.
func Today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(DateLayout)
}

// WeekBounds returns the Monday and Sunday dates of the week containing the
// given date. Weeks run Monday through Sunday.
func WeekBounds(date string) (string, string, error) {
	d, err := ParseDate(date)
	if err != nil {
		return "", "", err
	}
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	monday := d.AddDate(0, 0, -offset)
	sunday := monday.AddDate(0, 0, 6)
	return FormatDate(monday), FormatDate(sunday), nil
}

// MonthDates lists every date of a month in ascending order.
func MonthDates(year int, month time.Month) []string {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	days := first.AddDate(0, 1, -1).Day()
	out := make([]string, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, FormatDate(first.AddDate(0, 0, i)))
	}
	return out
}

// SlotStartAt anchors a slot's start time on a calendar date in the given
// location. Reminder lead times are measured from this instant.
func SlotStartAt(date string, s Slot, loc *time.Location) (time.Time, error) {
	return slotInstant(date, s.Start, loc)
}

// SlotEndAt anchors a slot's end time on a calendar date in the given location.
func SlotEndAt(date string, s Slot, loc *time.Location) (time.Time, error) {
	return slotInstant(date, s.End, loc)
}

func slotInstant(date, clock string, loc *time.Location) (time.Time, error) {
	d, err := ParseDate(date)
	if err != nil {
		return time.Time{}, err
	}
	c, err := time.Parse(TimeLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrBadRange, clock)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc), nil
}
