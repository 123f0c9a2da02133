package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"slotify-backend/internal/mw"
	"slotify-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, opts Options) *gin.Engine {
	r := gin.Default()

	if opts.ClientIPHeader != "" {
		r.TrustedPlatform = opts.ClientIPHeader
	}

	handler := NewHandler(s, opts)

	// Initialize middleware
	// Rate limit: 10 requests per second with a burst of 5 unless configured
	limit := opts.RateLimit
	if limit <= 0 {
		limit = 10
	}
	rateLimiter := mw.RateLimiter(rate.Limit(limit), 5)

	// Cache for the public metadata reads
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	auth := mw.Auth(s)

	r.GET("/healthz", handler.Health)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		// Public metadata, cached
		api.GET("/buildings", caching, handler.ListBuildings)
		api.GET("/machines", caching, handler.ListMachines)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		// The calendar is readable by anyone; what shows up behind booked
		// slots depends on who is asking, so no cache here.
		api.GET("/machines/:machine_uuid/calendar", mw.OptionalAuth(s), handler.GetCalendar)

		// Token-authenticated user surface
		user := api.Group("", auth)
		{
			user.POST("/bookings", handler.CreateBooking)
			user.POST("/bookings/cancel", handler.CancelSlot)
			user.DELETE("/bookings/:booking_uuid", handler.DeleteBooking)
			user.GET("/bookings/upcoming", handler.UpcomingBookings)

			user.GET("/me", handler.GetProfile)
			user.PATCH("/me", handler.UpdateProfile)

			user.GET("/subscriptions", handler.GetSubscriptions)
			user.PUT("/subscriptions", handler.PutSubscription)
			user.DELETE("/subscriptions", handler.DeleteSubscription)
		}

		// Admin surface
		admin := api.Group("/admin", auth, mw.RequireAdmin())
		{
			admin.POST("/buildings", handler.CreateBuilding)
			admin.PATCH("/buildings/:building_uuid", handler.UpdateBuilding)

			admin.POST("/machines", handler.CreateMachine)
			admin.PATCH("/machines/:machine_uuid", handler.UpdateMachine)
			admin.DELETE("/machines/:machine_uuid", handler.DeleteMachine)

			admin.GET("/courses", handler.ListCourses)
			admin.POST("/courses", handler.CreateCourse)
			admin.PATCH("/courses/:course_uuid", handler.UpdateCourse)

			admin.GET("/students", handler.ListStudents)
			admin.POST("/students", handler.AddStudent)
			admin.POST("/students/import", handler.ImportRoster)
			admin.GET("/students/:email", handler.GetStudent)
			admin.PATCH("/students/:email", handler.UpdateStudent)
			admin.DELETE("/students/:email", handler.DeleteStudent)
			admin.DELETE("/students", handler.ClearStudents)

			admin.GET("/users", handler.ListUsers)
			admin.POST("/users", handler.CreateUser)
			admin.GET("/users/:user_uuid", handler.GetUser)
			admin.PATCH("/users/:user_uuid", handler.UpdateUser)
			admin.PUT("/users/:user_uuid/role", handler.SetRole)
			admin.DELETE("/users/:user_uuid", handler.DeleteUser)

			admin.POST("/users/:user_uuid/tokens", handler.IssueToken)
			admin.GET("/users/:user_uuid/tokens", handler.ListTokens)
			admin.DELETE("/tokens/:token_uuid", handler.RevokeToken)

			admin.GET("/export", handler.Export)
			admin.POST("/import", handler.Import)

			admin.GET("/reminders", handler.ReminderStatus)
			admin.POST("/reminders/pause", handler.PauseReminders)
			admin.POST("/reminders/resume", handler.ResumeReminders)
		}
	}

	return r
}
