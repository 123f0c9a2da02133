package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/mw"
	"slotify-backend/internal/reminder"
	"slotify-backend/internal/roster"
	"slotify-backend/internal/schedule"
	"slotify-backend/internal/store"
)

// Options carries the handler dependencies that come from config and main.
type Options struct {
	WebPush        *webpush.Options
	Roster         *roster.Parser
	Scanner        *reminder.Service
	TokenDays      int
	Location       *time.Location
	CacheTTL       time.Duration
	RateLimit      float64
	ClientIPHeader string
}

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store     store.Store
	webpush   *webpush.Options
	roster    *roster.Parser
	scanner   *reminder.Service
	tokenDays int
	loc       *time.Location
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, opts Options) *Handler {
	if opts.TokenDays <= 0 {
		opts.TokenDays = 15
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Handler{
		store:     s,
		webpush:   opts.WebPush,
		roster:    opts.Roster,
		scanner:   opts.Scanner,
		tokenDays: opts.TokenDays,
		loc:       opts.Location,
	}
}

// Health reports whether the database answers.
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.store.DB().DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// fail maps store and schedule errors onto HTTP responses. Anything not in
// the sentinel list is a server fault and is logged rather than leaked.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, store.ErrBuildingNotFound),
		errors.Is(err, store.ErrCourseNotFound),
		errors.Is(err, store.ErrMachineNotFound),
		errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, store.ErrStudentNotFound),
		errors.Is(err, store.ErrTokenNotFound),
		errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrBuildingExists),
		errors.Is(err, store.ErrCourseExists),
		errors.Is(err, store.ErrMachineExists),
		errors.Is(err, store.ErrUserExists),
		errors.Is(err, store.ErrStudentExists),
		errors.Is(err, store.ErrSlotTaken),
		errors.Is(err, store.ErrMachineHasBookings):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrWrongBuilding),
		errors.Is(err, store.ErrNotBookingOwner),
		errors.Is(err, store.ErrCancelWindowClosed),
		errors.Is(err, store.ErrRoleNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, store.ErrMachineUnavailable),
		errors.Is(err, store.ErrPastDate),
		errors.Is(err, store.ErrHorizonExceeded),
		errors.Is(err, store.ErrDailyLimit),
		errors.Is(err, store.ErrWeeklyLimit),
		errors.Is(err, store.ErrNotEnrolled),
		errors.Is(err, store.ErrUnknownRole),
		errors.Is(err, store.ErrBadStatus):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})

	case errors.Is(err, schedule.ErrTemplateMismatch),
		errors.Is(err, schedule.ErrBadRange),
		errors.Is(err, schedule.ErrBadDate):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		log.Printf("Error on %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// currentUser is the authenticated user the auth middleware resolved, or nil
// on optional-auth routes hit anonymously.
func currentUser(c *gin.Context) *model.User {
	user, ok := mw.CurrentUser(c)
	if !ok {
		return nil
	}
	return user
}

// requireUser fetches the context user and answers 401 itself when a route
// was reached without one.
func requireUser(c *gin.Context) (*model.User, bool) {
	user := currentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return nil, false
	}
	return user, true
}
