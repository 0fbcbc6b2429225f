package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courses services.CourseService
}

func NewCourseHandler(courses services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler: NewBaseHandler(logger),
		courses:     courses,
	}
}

// List returns all courses
// GET /api/v1/courses
func (h *CourseHandler) List(c *gin.Context) {
	courses, err := h.courses.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// Get returns one course
// GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid course ID"})
		return
	}

	course, err := h.courses.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Create adds a course
// POST /api/v1/courses
func (h *CourseHandler) Create(c *gin.Context) {
	var req services.CourseCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	course, err := h.courses.Create(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, course)
}

// Update renames or redescribes a course
// PUT /api/v1/courses/:id
func (h *CourseHandler) Update(c *gin.Context) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid course ID"})
		return
	}

	var req services.CourseUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	course, err := h.courses.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, course)
}

// Delete removes a course and detaches its students
// DELETE /api/v1/courses/:id
func (h *CourseHandler) Delete(c *gin.Context) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid course ID"})
		return
	}

	if err := h.courses.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "course deleted"})
}
