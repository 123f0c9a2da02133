package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type createBookingRequest struct {
	MachineUUID string `json:"machine_uuid" binding:"required"`
	Date        string `json:"date" binding:"required"`
	SlotNumber  int    `json:"slot_number" binding:"required,min=1"`
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.store.BookSlot(c.Request.Context(), time.Now(), req.MachineUUID, req.Date, req.SlotNumber, user)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// DeleteBooking handles DELETE /api/bookings/{booking_uuid}. Owners may
// cancel until the slot starts; admins may cancel anything.
func (h *Handler) DeleteBooking(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	if err := h.store.CancelBooking(c.Request.Context(), time.Now(), c.Param("booking_uuid"), user); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type cancelSlotRequest struct {
	MachineUUID string `json:"machine_uuid" binding:"required"`
	Date        string `json:"date" binding:"required"`
	SlotNumber  int    `json:"slot_number" binding:"required,min=1"`
}

// CancelSlot handles POST /api/bookings/cancel, addressing the booking by
// its calendar position instead of its id.
func (h *Handler) CancelSlot(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	var req cancelSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.store.CancelSlot(c.Request.Context(), time.Now(), req.MachineUUID, req.Date, req.SlotNumber, user); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UpcomingBookings handles GET /api/bookings/upcoming.
func (h *Handler) UpcomingBookings(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	bookings, err := h.store.UpcomingBookings(c.Request.Context(), time.Now(), user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bookings)
}
