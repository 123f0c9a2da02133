package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// GetCalendar handles GET /api/machines/{machine_uuid}/calendar.
//
// The month defaults to the current one. Who appears behind a booked slot
// depends on the viewer: owners and admins see the full card, everyone else
// just a username and avatar. Months that already ended are admin-only.
func (h *Handler) GetCalendar(c *gin.Context) {
	now := time.Now().In(h.loc)
	year, month := now.Year(), int(now.Month())

	var err error
	if y := c.Query("year"); y != "" {
		if year, err = strconv.Atoi(y); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid year"})
			return
		}
	}
	if m := c.Query("month"); m != "" {
		if month, err = strconv.Atoi(m); err != nil || month < 1 || month > 12 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month"})
			return
		}
	}

	viewer := currentUser(c)
	past := year < now.Year() || (year == now.Year() && month < int(now.Month()))
	if past && (viewer == nil || !viewer.IsAdmin()) {
		c.JSON(http.StatusForbidden, gin.H{"error": "past calendars are restricted to admins"})
		return
	}

	view, err := h.store.MonthCalendar(c.Request.Context(), c.Param("machine_uuid"), year, time.Month(month), viewer)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
