package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slotify-backend/internal/model"
	"slotify-backend/internal/store"
)

// CourseResponse represents the API response for a single course.
type CourseResponse struct {
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

func courseResponse(course *model.Course) CourseResponse {
	return CourseResponse{
		UUID:          course.UUID,
		Code:          course.Code,
		Name:          course.Name,
		ShortName:     course.ShortName,
		Level:         course.Level,
		Department:    course.Department,
		DurationYears: course.DurationYears,
		Description:   course.Description,
		IsActive:      course.IsActive,
	}
}

// ListCourses handles GET /api/admin/courses.
func (h *Handler) ListCourses(c *gin.Context) {
	courses, err := h.store.ListCourses(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	out := make([]CourseResponse, 0, len(courses))
	for i := range courses {
		out = append(out, courseResponse(&courses[i]))
	}
	c.JSON(http.StatusOK, out)
}

type createCourseRequest struct {
	Code          string `json:"code" binding:"required"`
	Name          string `json:"name" binding:"required"`
	ShortName     string `json:"short_name" binding:"required"`
	Level         string `json:"level"`
	Department    string `json:"department"`
	DurationYears int    `json:"duration_years"`
	Description   string `json:"description"`
	IsActive      *bool  `json:"is_active"`
}

// CreateCourse handles POST /api/admin/courses.
func (h *Handler) CreateCourse(c *gin.Context) {
	var req createCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course := model.Course{
		Code:          req.Code,
		Name:          req.Name,
		ShortName:     req.ShortName,
		Level:         req.Level,
		Department:    req.Department,
		DurationYears: req.DurationYears,
		Description:   req.Description,
		IsActive:      true,
	}
	if req.IsActive != nil {
		course.IsActive = *req.IsActive
	}
	if err := h.store.CreateCourse(c.Request.Context(), &course); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, courseResponse(&course))
}

type updateCourseRequest struct {
	Name          *string `json:"name"`
	ShortName     *string `json:"short_name"`
	Level         *string `json:"level"`
	Department    *string `json:"department"`
	DurationYears *int    `json:"duration_years"`
	Description   *string `json:"description"`
	IsActive      *bool   `json:"is_active"`
}

// UpdateCourse handles PATCH /api/admin/courses/{course_uuid}.
func (h *Handler) UpdateCourse(c *gin.Context) {
	var req updateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	course, err := h.store.UpdateCourse(c.Request.Context(), c.Param("course_uuid"), store.CourseUpdate{
		Name:          req.Name,
		ShortName:     req.ShortName,
		Level:         req.Level,
		Department:    req.Department,
		DurationYears: req.DurationYears,
		Description:   req.Description,
		IsActive:      req.IsActive,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, courseResponse(course))
}
