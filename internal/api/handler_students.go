package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// StudentResponse represents one enrollment roster row.
type StudentResponse struct {
	UUID     string    `json:"uuid"`
	FullName string    `json:"fullname"`
	Email    string    `json:"email"`
	AddedAt  time.Time `json:"added_at"`
}

func studentResponse(s *model.EnrolledStudent) StudentResponse {
	return StudentResponse{
		UUID:     s.UUID,
		FullName: s.FullName,
		Email:    s.Email,
		AddedAt:  s.CreatedAt,
	}
}

// ListStudents handles GET /api/admin/students.
func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.store.ListStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]StudentResponse, 0, len(students))
	for i := range students {
		out = append(out, studentResponse(&students[i]))
	}
	c.JSON(http.StatusOK, out)
}

type addStudentRequest struct {
	FullName string `json:"fullname" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

// AddStudent handles POST /api/admin/students.
func (h *Handler) AddStudent(c *gin.Context) {
	var req addStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student := model.EnrolledStudent{FullName: req.FullName, Email: req.Email}
	if err := h.store.AddStudent(c.Request.Context(), &student); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, studentResponse(&student))
}

type importRosterRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportRoster handles POST /api/admin/students/import. The body carries
// pasted roster text; lines that parse become roster rows, already known
// emails are kept as they are, and unparseable lines come back for review.
func (h *Handler) ImportRoster(c *gin.Context) {
	if h.roster == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "roster parsing is not configured"})
		return
	}
	var req importRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	parsed, skipped := h.roster.Parse(req.Text)
	batch := make([]model.EnrolledStudent, 0, len(parsed))
	for _, p := range parsed {
		batch = append(batch, model.EnrolledStudent{FullName: p.FullName, Email: p.Email})
	}

	added, err := h.store.AddStudents(c.Request.Context(), batch)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"parsed":        len(parsed),
		"added":         added,
		"skipped_lines": skipped,
	})
}

// GetStudent handles GET /api/admin/students/{email}.
func (h *Handler) GetStudent(c *gin.Context) {
	student, err := h.store.GetStudentByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, studentResponse(student))
}

type updateStudentRequest struct {
	FullName *string `json:"fullname"`
	Email    *string `json:"email"`
}

// UpdateStudent handles PATCH /api/admin/students/{email}.
func (h *Handler) UpdateStudent(c *gin.Context) {
	var req updateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	student, err := h.store.UpdateStudent(c.Request.Context(), c.Param("email"), store.StudentUpdate{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, studentResponse(student))
}

// DeleteStudent handles DELETE /api/admin/students/{email}.
func (h *Handler) DeleteStudent(c *gin.Context) {
	if err := h.store.DeleteStudent(c.Request.Context(), c.Param("email")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearStudents handles DELETE /api/admin/students, wiping the whole roster
// ahead of a fresh import.
func (h *Handler) ClearStudents(c *gin.Context) {
	removed, err := h.store.ClearStudents(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}
