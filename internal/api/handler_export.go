package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/store"
)

// Export handles GET /api/admin/export. The snapshot references rows by UUID
// so it restores into any database, including an empty one.
func (h *Handler) Export(c *gin.Context) {
	snapshot, err := h.store.Export(c.Request.Context(), time.Now())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// Import handles POST /api/admin/import. Rows that already exist or whose
// references cannot be resolved are skipped and reported, never overwritten.
func (h *Handler) Import(c *gin.Context) {
	var snapshot store.Snapshot
	if err := c.ShouldBindJSON(&snapshot); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report, err := h.store.Import(c.Request.Context(), &snapshot)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
