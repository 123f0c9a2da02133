package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type issueTokenRequest struct {
	Days int `json:"days"`
}

// IssueToken handles POST /api/admin/users/{user_uuid}/tokens. The response
// is the only place the plaintext secret ever appears; the database keeps a
// hash.
func (h *Handler) IssueToken(c *gin.Context) {
	var req issueTokenRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	if req.Days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be positive"})
		return
	}
	days := req.Days
	if days == 0 {
		days = h.tokenDays
	}

	issued, err := h.store.IssueToken(c.Request.Context(), time.Now(), c.Param("user_uuid"), days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, issued)
}

// ListTokens handles GET /api/admin/users/{user_uuid}/tokens. Secrets are
// not stored, so listings carry prefix and lifecycle metadata only.
func (h *Handler) ListTokens(c *gin.Context) {
	tokens, err := h.store.ListTokens(c.Request.Context(), c.Param("user_uuid"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tokens)
}

// RevokeToken handles DELETE /api/admin/tokens/{token_uuid}.
func (h *Handler) RevokeToken(c *gin.Context) {
	if err := h.store.RevokeToken(c.Request.Context(), c.Param("token_uuid")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
