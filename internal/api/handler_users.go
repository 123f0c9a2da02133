package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/schedule"
	"slotify-backend/internal/store"
)

// UserResponse represents the API response for a single account.
type UserResponse struct {
	UUID          string     `json:"uuid"`
	Username      string     `json:"username"`
	Email         string     `json:"email"`
	FullName      string     `json:"fullname"`
	FirstName     string     `json:"first_name"`
	MiddleName    string     `json:"middle_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Role          string     `json:"role"`
	Building      string     `json:"building"`
	BuildingUUID  string     `json:"building_uuid"`
	Course        string     `json:"course,omitempty"`
	CourseUUID    string     `json:"course_uuid,omitempty"`
	RoomNo        string     `json:"room_no,omitempty"`
	ContactNo     string     `json:"contact_no,omitempty"`
	Avatar        string     `json:"avatar"`
	ReminderHours int        `json:"reminder_hours"`
	ReminderEmail string     `json:"reminder_email,omitempty"`
	DepartureDate string     `json:"departure_date,omitempty"`
	HostName      string     `json:"host_name,omitempty"`
	DateJoined    time.Time  `json:"date_joined"`
	LastSeen      *time.Time `json:"last_seen,omitempty"`
}

func userResponse(u *model.User) UserResponse {
	resp := UserResponse{
		UUID:          u.UUID,
		Username:      u.Username,
		Email:         u.Email,
		FullName:      u.FullName(),
		FirstName:     u.FirstName,
		MiddleName:    u.MiddleName,
		LastName:      u.LastName,
		Role:          u.Role,
		Building:      u.Building.Name,
		BuildingUUID:  u.Building.UUID,
		RoomNo:        u.RoomNo,
		ContactNo:     u.ContactNo,
		Avatar:        u.AvatarURL(),
		ReminderHours: u.ReminderHours,
		ReminderEmail: u.ReminderEmail,
		HostName:      u.HostName,
		DateJoined:    u.CreatedAt,
		LastSeen:      u.LastSeen,
	}
	if u.Course != nil {
		resp.Course = u.Course.ShortName
		resp.CourseUUID = u.Course.UUID
	}
	if u.DepartureDate != nil {
		resp.DepartureDate = u.DepartureDate.Format(schedule.DateLayout)
	}
	return resp
}

// GetProfile handles GET /api/me.
func (h *Handler) GetProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type updateProfileRequest struct {
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	RoomNo        *string `json:"room_no"`
	ContactNo     *string `json:"contact_no"`
	ReminderHours *int    `json:"reminder_hours"`
	ReminderEmail *string `json:"reminder_email"`
}

// UpdateProfile handles PATCH /api/me. Identity and placement fields stay
// admin-only; users edit their own names, contact details, and reminder
// preferences.
func (h *Handler) UpdateProfile(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.ReminderHours != nil && *req.ReminderHours < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reminder_hours must be zero or positive"})
		return
	}

	updated, err := h.store.UpdateUser(c.Request.Context(), user.UUID, store.UserUpdate{
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		RoomNo:        req.RoomNo,
		ContactNo:     req.ContactNo,
		ReminderHours: req.ReminderHours,
		ReminderEmail: req.ReminderEmail,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(updated))
}

// ListUsers handles GET /api/admin/users.
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, userResponse(&users[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createUserRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	FirstName     string `json:"first_name" binding:"required"`
	MiddleName    string `json:"middle_name"`
	LastName      string `json:"last_name"`
	Role          string `json:"role"`
	BuildingUUID  string `json:"building_uuid" binding:"required"`
	CourseUUID    string `json:"course_uuid"`
	RoomNo        string `json:"room_no"`
	ContactNo     string `json:"contact_no"`
	ReminderHours int    `json:"reminder_hours"`
	ReminderEmail string `json:"reminder_email"`
	DepartureDate string `json:"departure_date"`
	HostName      string `json:"host_name"`
}

// CreateUser handles POST /api/admin/users. Accounts are always provisioned
// by an admin; user-role accounts must be on the enrollment roster first.
func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := model.User{
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		Role:          req.Role,
		RoomNo:        req.RoomNo,
		ContactNo:     req.ContactNo,
		ReminderHours: req.ReminderHours,
		ReminderEmail: req.ReminderEmail,
		HostName:      req.HostName,
	}
	if req.DepartureDate != "" {
		departure, err := schedule.ParseDate(req.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid departure_date"})
			return
		}
		user.DepartureDate = &departure
	}

	if err := h.store.CreateUser(c.Request.Context(), &user, req.BuildingUUID, req.CourseUUID, actor); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, userResponse(&user))
}

// GetUser handles GET /api/admin/users/{user_uuid}.
func (h *Handler) GetUser(c *gin.Context) {
	user, err := h.store.GetUser(c.Request.Context(), c.Param("user_uuid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type updateUserRequest struct {
	Username      *string `json:"username"`
	Email         *string `json:"email"`
	FirstName     *string `json:"first_name"`
	MiddleName    *string `json:"middle_name"`
	LastName      *string `json:"last_name"`
	BuildingUUID  *string `json:"building_uuid"`
	CourseUUID    *string `json:"course_uuid"`
	RoomNo        *string `json:"room_no"`
	ContactNo     *string `json:"contact_no"`
	ReminderHours *int    `json:"reminder_hours"`
	ReminderEmail *string `json:"reminder_email"`
	DepartureDate *string `json:"departure_date"`
	HostName      *string `json:"host_name"`
}

// UpdateUser handles PATCH /api/admin/users/{user_uuid}.
func (h *Handler) UpdateUser(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	upd := store.UserUpdate{
		Username:      req.Username,
		Email:         req.Email,
		FirstName:     req.FirstName,
		MiddleName:    req.MiddleName,
		LastName:      req.LastName,
		BuildingUUID:  req.BuildingUUID,
		CourseUUID:    req.CourseUUID,
		RoomNo:        req.RoomNo,
		ContactNo:     req.ContactNo,
		ReminderHours: req.ReminderHours,
		ReminderEmail: req.ReminderEmail,
		HostName:      req.HostName,
	}
	if req.DepartureDate != nil {
		departure, err := schedule.ParseDate(*req.DepartureDate)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid departure_date"})
			return
		}
		upd.DepartureDate = &departure
	}

	user, err := h.store.UpdateUser(c.Request.Context(), c.Param("user_uuid"), upd)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

type setRoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// SetRole handles PUT /api/admin/users/{user_uuid}/role. Only superadmins
// can hand out or take away superadmin.
func (h *Handler) SetRole(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	var req setRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.SetRole(c.Request.Context(), c.Param("user_uuid"), req.Role, actor)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, userResponse(user))
}

// DeleteUser handles DELETE /api/admin/users/{user_uuid}. Bookings, tokens,
// and push subscriptions go with the account.
func (h *Handler) DeleteUser(c *gin.Context) {
	actor, ok := requireUser(c)
	if !ok {
		return
	}
	uuid := c.Param("user_uuid")
	if uuid == actor.UUID {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "cannot delete your own account"})
		return
	}
	if err := h.store.DeleteUser(c.Request.Context(), uuid, actor); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
