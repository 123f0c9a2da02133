package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReminderStatus handles GET /api/admin/reminders.
func (h *Handler) ReminderStatus(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reminder scanner is not running"})
		return
	}
	c.JSON(http.StatusOK, h.scanner.Status())
}

// PauseReminders handles POST /api/admin/reminders/pause. The scan loop keeps
// ticking but skips its cycles until resumed.
func (h *Handler) PauseReminders(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reminder scanner is not running"})
		return
	}
	h.scanner.Pause()
	c.JSON(http.StatusOK, h.scanner.Status())
}

// ResumeReminders handles POST /api/admin/reminders/resume.
func (h *Handler) ResumeReminders(c *gin.Context) {
	if h.scanner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reminder scanner is not running"})
		return
	}
	h.scanner.Resume()
	c.JSON(http.StatusOK, h.scanner.Status())
}
