package store

import "time"

// MachineView is the public shape of a machine.
type MachineView struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	Status       string `json:"status"`
	Building     string `json:"building"`
	BuildingUUID string `json:"building_uuid"`
	SlotCount    int    `json:"slot_count"`
	SlotTemplate string `json:"slot_template"`
	ImageURL     string `json:"image_url,omitempty"`
}

// MachineSummary is a machine plus how many bookings it holds, for listings.
type MachineSummary struct {
	MachineView
	BookedCount int `json:"booked_count"`
}

// BuildingSummary is a building plus its machine count, for listings.
type BuildingSummary struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	MachineCount int    `json:"machine_count"`
}

// BookerView is the viewer-dependent projection of who holds a slot. Only the
// owner and admins see the contact fields; everyone else gets username and
// avatar alone.
type BookerView struct {
	UUID      string `json:"uuid"`
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	IsOwn     bool   `json:"is_own"`
	FullName  string `json:"fullname,omitempty"`
	Email     string `json:"email,omitempty"`
	RoomNo    string `json:"room_no,omitempty"`
	ContactNo string `json:"contact_no,omitempty"`
	Course    string `json:"course,omitempty"`
	Building  string `json:"building,omitempty"`
}

// SlotView is one slot of one day on the calendar.
type SlotView struct {
	Number    int         `json:"slot_number"`
	TimeRange string      `json:"time_range"`
	Booked    bool        `json:"booked"`
	BookedBy  *BookerView `json:"booked_by,omitempty"`
}

// DayView is one day of the calendar with its full slot column.
type DayView struct {
	Date  string     `json:"date"`
	Slots []SlotView `json:"slots"`
}

// MonthView is a machine's complete calendar for one month. Days are ordered
// ascending and every day carries every slot, booked or not.
type MonthView struct {
	Machine MachineView `json:"machine"`
	Year    int         `json:"year"`
	Month   int         `json:"month"`
	Days    []DayView   `json:"days"`
}

// BookingView is a booking as shown to its owner.
type BookingView struct {
	UUID        string    `json:"uuid"`
	MachineUUID string    `json:"machine_uuid"`
	Machine     string    `json:"machine"`
	Building    string    `json:"building"`
	Date        string    `json:"date"`
	SlotNumber  int       `json:"slot_number"`
	TimeRange   string    `json:"time_range"`
	CreatedAt   time.Time `json:"created_at"`
}

// IssuedToken carries the one chance to see a token's plaintext secret.
type IssuedToken struct {
	UUID      string    `json:"uuid"`
	Token     string    `json:"token"`
	Prefix    string    `json:"prefix"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenView is token metadata for listings. The secret never appears here.
type TokenView struct {
	UUID       string     `json:"uuid"`
	Prefix     string     `json:"prefix"`
	ExpiresAt  time.Time  `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// DueReminder is one booking whose reminder window is open right now.
// PushSent and EmailSent let the worker resend only the channel that failed
// on an earlier pass.
type DueReminder struct {
	BookingID   int64
	BookingUUID string
	UserID      int64
	UserUUID    string
	Email       string
	FirstName   string
	Machine     string
	Building    string
	Date        string
	SlotNumber  int
	TimeRange   string
	StartsAt    time.Time
	PushSent    bool
	EmailSent   bool
}

// Snapshot is the portable JSON form of the whole dataset. Rows reference
// each other by UUID so a snapshot restores into any database.
type Snapshot struct {
	ExportedAt time.Time        `json:"exported_at"`
	Buildings  []BuildingExport `json:"buildings"`
	Courses    []CourseExport   `json:"courses"`
	Users      []UserExport     `json:"users"`
	Machines   []MachineExport  `json:"machines"`
	Students   []StudentExport  `json:"students"`
	Bookings   []BookingExport  `json:"bookings"`
}

// BuildingExport is a building row in a snapshot.
type BuildingExport struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// CourseExport is a course row in a snapshot.
type CourseExport struct {
	UUID          string `json:"uuid"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	ShortName     string `json:"short_name"`
	Level         string `json:"level,omitempty"`
	Department    string `json:"department,omitempty"`
	DurationYears int    `json:"duration_years,omitempty"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
}

// MachineExport is a machine row in a snapshot.
type MachineExport struct {
	UUID         string `json:"uuid"`
	Name         string `json:"name"`
	Code         string `json:"code"`
	BuildingUUID string `json:"building_uuid"`
	Status       string `json:"status"`
	SlotCount    int    `json:"slot_count"`
	SlotTemplate string `json:"slot_template"`
	ImageURL     string `json:"image_url,omitempty"`
}

// UserExport is a user row in a snapshot.
type UserExport struct {
	UUID          string     `json:"uuid"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	MiddleName    string     `json:"middle_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Role          string     `json:"role"`
	BuildingUUID  string     `json:"building_uuid"`
	CourseUUID    string     `json:"course_uuid,omitempty"`
	RoomNo        string     `json:"room_no,omitempty"`
	ContactNo     string     `json:"contact_no,omitempty"`
	ReminderHours int        `json:"reminder_hours"`
	ReminderEmail string     `json:"reminder_email,omitempty"`
	DepartureDate *time.Time `json:"departure_date,omitempty"`
	HostName      string     `json:"host_name,omitempty"`
}

// StudentExport is a roster row in a snapshot.
type StudentExport struct {
	UUID     string `json:"uuid"`
	FullName string `json:"fullname"`
	Email    string `json:"email"`
}

// BookingExport is a booking row in a snapshot.
type BookingExport struct {
	UUID        string `json:"uuid"`
	MachineUUID string `json:"machine_uuid"`
	UserUUID    string `json:"user_uuid"`
	Date        string `json:"date"`
	SlotNumber  int    `json:"slot_number"`
}

// ImportReport summarizes what a snapshot restore actually inserted.
type ImportReport struct {
	Buildings int      `json:"buildings"`
	Courses   int      `json:"courses"`
	Users     int      `json:"users"`
	Machines  int      `json:"machines"`
	Students  int      `json:"students"`
	Bookings  int      `json:"bookings"`
	Skipped   []string `json:"skipped,omitempty"`
}
