package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Sentinel errors returned by the store. Handlers map these onto HTTP status
// codes; anything not in this list is a server fault.
var (
	ErrBuildingNotFound = errors.New("building not found")
	ErrBuildingExists   = errors.New("building name or code already in use")
	ErrCourseNotFound   = errors.New("course not found")
	ErrCourseExists     = errors.New("course code already in use")
	ErrMachineNotFound  = errors.New("machine not found")
	ErrMachineExists    = errors.New("machine name or code already in use")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("username or email already in use")
	ErrStudentNotFound  = errors.New("enrolled student not found")
	ErrStudentExists    = errors.New("email already on the roster")
	ErrTokenNotFound    = errors.New("token not found")
	ErrBookingNotFound  = errors.New("booking not found")

	ErrMachineUnavailable = errors.New("machine is not available for booking")
	ErrMachineHasBookings = errors.New("machine still has bookings")
	ErrSlotNotFound       = errors.New("no such slot on this machine")
	ErrSlotTaken          = errors.New("slot is already booked")
	ErrPastDate           = errors.New("cannot book a past date")
	ErrHorizonExceeded    = errors.New("date is beyond the booking horizon")
	ErrWrongBuilding      = errors.New("machine belongs to another building")
	ErrDailyLimit         = errors.New("daily booking limit reached")
	ErrWeeklyLimit        = errors.New("weekly booking limit reached on this machine")
	ErrNotBookingOwner    = errors.New("booking belongs to another user")
	ErrCancelWindowClosed = errors.New("booking can no longer be cancelled")

	ErrNotEnrolled    = errors.New("email is not on the enrollment roster")
	ErrUnknownRole    = errors.New("unknown role")
	ErrBadStatus      = errors.New("unknown machine status")
	ErrRoleNotAllowed = errors.New("actor may not assign or change this role")
	ErrTokenExpired   = errors.New("token has expired")
)

// isDuplicate detects unique-constraint violations across the drivers we run
// on. Postgres errors arrive translated as gorm.ErrDuplicatedKey; the SQLite
// driver used in tests predates gorm's error translation, so its message is
// matched directly.
func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
