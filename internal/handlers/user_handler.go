package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

type UserHandler struct {
	BaseHandler
	users        services.UserService
	provisioning services.ProvisioningService
}

func NewUserHandler(users services.UserService, provisioning services.ProvisioningService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:  NewBaseHandler(logger),
		users:        users,
		provisioning: provisioning,
	}
}

// List returns users with their balances
// GET /api/v1/users
func (h *UserHandler) List(c *gin.Context) {
	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		if !role.Valid() {
			c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid role filter"})
			return
		}
		filters.Role = &role
	}
	if courseID, ok := queryUint(c, "course_id"); ok {
		filters.CourseID = &courseID
	}

	list, err := h.users.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Get returns a single user with balance
// GET /api/v1/users/:id
func (h *UserHandler) Get(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Me returns the authenticated user's profile with balance
// GET /api/v1/users/me
func (h *UserHandler) Me(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Create provisions an identity account, user row and zero balance together
// POST /api/v1/users
func (h *UserHandler) Create(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	user, err := h.provisioning.CreateUser(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User created", "user_id", user.ID, "role", user.Role)
	c.JSON(http.StatusCreated, user)
}

// UpdateRole changes a user's role
// PUT /api/v1/users/:id/role
func (h *UserHandler) UpdateRole(c *gin.Context) {
	var req services.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	if err := h.users.UpdateRole(c.Request.Context(), c.Param("id"), &req, actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "role updated"})
}

// UpdateCourse assigns or clears a user's course
// PUT /api/v1/users/:id/course
func (h *UserHandler) UpdateCourse(c *gin.Context) {
	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	if err := h.users.UpdateCourse(c.Request.Context(), c.Param("id"), &req); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "course updated"})
}

// Delete removes a user's ledger, redemptions, balance, row and identity
// account in that order
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	actorID, _ := GetUserIDFromContext(c)
	if err := h.users.Delete(c.Request.Context(), c.Param("id"), actorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "User deleted", "deleted_user_id", c.Param("id"))
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "user deleted"})
}

// Reconcile reports which side of the account/row pair exists for an email
// GET /api/v1/users/reconcile
func (h *UserHandler) Reconcile(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "email query parameter is required"})
		return
	}

	result, err := h.provisioning.Reconcile(c.Request.Context(), email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// queryInt reads an integer query parameter, falling back on absence or junk
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// queryUint reads an unsigned integer query parameter
func queryUint(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}

// pathUint reads an unsigned integer path parameter
func pathUint(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(value), true
}
