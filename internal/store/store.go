package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"slotify-backend/internal/model"
)

// Rules are the booking limits the store enforces. Location is the timezone
// slot clock times are anchored in; every date comparison ("today", cancel
// windows, reminder instants) goes through it.
type Rules struct {
	HorizonDays        int
	MaxPerDay          int
	WeeklyMachineLimit int
	Location           *time.Location
}

// Store defines the interface for all database operations.
type Store interface {
	// Buildings
	CreateBuilding(ctx context.Context, b *model.Building) error
	UpdateBuilding(ctx context.Context, uuid string, upd BuildingUpdate) (*model.Building, error)
	GetBuilding(ctx context.Context, uuid string) (*model.Building, error)
	ListBuildings(ctx context.Context) ([]BuildingSummary, error)

	// Courses
	CreateCourse(ctx context.Context, c *model.Course) error
	UpdateCourse(ctx context.Context, uuid string, upd CourseUpdate) (*model.Course, error)
	ListCourses(ctx context.Context) ([]model.Course, error)

	// Machines
	CreateMachine(ctx context.Context, m *model.Machine, buildingUUID string) error
	UpdateMachine(ctx context.Context, uuid string, upd MachineUpdate) (*model.Machine, error)
	DeleteMachine(ctx context.Context, uuid string) error
	GetMachine(ctx context.Context, uuid string) (*model.Machine, error)
	ListMachines(ctx context.Context) ([]MachineSummary, error)

	// Bookings
	BookSlot(ctx context.Context, now time.Time, machineUUID, date string, slotNumber int, actor *model.User) (*BookingView, error)
	CancelBooking(ctx context.Context, now time.Time, bookingUUID string, actor *model.User) error
	CancelSlot(ctx context.Context, now time.Time, machineUUID, date string, slotNumber int, actor *model.User) error
	UpcomingBookings(ctx context.Context, now time.Time, userID int64) ([]BookingView, error)
	MonthCalendar(ctx context.Context, machineUUID string, year int, month time.Month, viewer *model.User) (*MonthView, error)

	// Users
	CreateUser(ctx context.Context, u *model.User, buildingUUID, courseUUID string, actor *model.User) error
	GetUser(ctx context.Context, uuid string) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUser(ctx context.Context, uuid string, upd UserUpdate) (*model.User, error)
	SetRole(ctx context.Context, uuid, role string, actor *model.User) (*model.User, error)
	DeleteUser(ctx context.Context, uuid string, actor *model.User) error
	TouchLastSeen(ctx context.Context, userID int64, at time.Time)

	// Enrollment roster
	AddStudent(ctx context.Context, s *model.EnrolledStudent) error
	AddStudents(ctx context.Context, batch []model.EnrolledStudent) (int, error)
	GetStudentByEmail(ctx context.Context, email string) (*model.EnrolledStudent, error)
	ListStudents(ctx context.Context) ([]model.EnrolledStudent, error)
	UpdateStudent(ctx context.Context, email string, upd StudentUpdate) (*model.EnrolledStudent, error)
	DeleteStudent(ctx context.Context, email string) error
	ClearStudents(ctx context.Context) (int64, error)

	// API tokens
	IssueToken(ctx context.Context, now time.Time, userUUID string, days int) (*IssuedToken, error)
	AuthenticateToken(ctx context.Context, now time.Time, secret string) (*model.User, error)
	ListTokens(ctx context.Context, userUUID string) ([]TokenView, error)
	RevokeToken(ctx context.Context, tokenUUID string) error

	// Reminders
	DueReminders(ctx context.Context, now time.Time, window time.Duration) ([]DueReminder, error)
	MarkReminded(ctx context.Context, bookingID, userID int64, channel string, at time.Time) (bool, error)

	// Push subscriptions
	SaveSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string, userID int64) error
	SubscriptionsForUser(ctx context.Context, userID int64) ([]model.PushSubscription, error)

	// Snapshots
	Export(ctx context.Context, now time.Time) (*Snapshot, error)
	Import(ctx context.Context, snap *Snapshot) (*ImportReport, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db    *gorm.DB
	rules Rules
}

// NewGormStore creates a new GORM-backed store enforcing the given rules.
func NewGormStore(db *gorm.DB, rules Rules) Store {
	if rules.Location == nil {
		rules.Location = time.UTC
	}
	return &gormStore{db: db, rules: rules}
}

// DB exposes the underlying handle for callers that need raw access, such as
// the health check.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
