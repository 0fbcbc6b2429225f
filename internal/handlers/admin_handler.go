package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// AdminHandler serves the bootstrap and maintenance endpoints under
// /api/admin. They never fail with a bare 500: every error collapses into
// a {success: false} payload.
type AdminHandler struct {
	BaseHandler
	provisioning services.ProvisioningService
	settings     services.SettingsService
}

func NewAdminHandler(provisioning services.ProvisioningService, settings services.SettingsService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler:  NewBaseHandler(logger),
		provisioning: provisioning,
		settings:     settings,
	}
}

// SetupAdmin provisions the configured admin account if it does not exist
// GET /api/admin/setup-admin
func (h *AdminHandler) SetupAdmin(c *gin.Context) {
	result, err := h.provisioning.SetupAdmin(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Admin setup failed")
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: result.Message, UserID: result.UserID})
}

// UpdateTeacher promotes the configured teacher account
// GET /api/admin/update-teacher
func (h *AdminHandler) UpdateTeacher(c *gin.Context) {
	result, err := h.provisioning.PromoteTeacher(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Teacher update failed")
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: result.Message, UserID: result.UserID})
}

// CreateUser provisions a user through the legacy admin endpoint
// POST /api/admin/create-user
func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	user, err := h.provisioning.CreateUser(c.Request.Context(), &req, actorID)
	if err != nil {
		h.LogError(c, err, "Admin user creation failed")
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "user created", UserID: user.ID})
}

// EmailSettings returns the email confirmation setting over the v1 API
// GET /api/v1/settings/email
func (h *AdminHandler) EmailSettings(c *gin.Context) {
	settings, err := h.settings.GetEmailSettings(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetEmailSettings updates the email confirmation setting over the v1 API
// PUT /api/v1/settings/email
func (h *AdminHandler) SetEmailSettings(c *gin.Context) {
	var req services.EmailSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	settings, err := h.settings.UpdateEmailSettings(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

// GetEmailSettings reports whether signup email confirmation is required
// GET /api/admin/update-email-settings
func (h *AdminHandler) GetEmailSettings(c *gin.Context) {
	settings, err := h.settings.GetEmailSettings(c.Request.Context())
	if err != nil {
		h.LogError(c, err, "Email settings lookup failed")
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// UpdateEmailSettings toggles signup email confirmation
// POST /api/admin/update-email-settings
func (h *AdminHandler) UpdateEmailSettings(c *gin.Context) {
	var req services.EmailSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: "invalid request body: " + err.Error()})
		return
	}

	settings, err := h.settings.UpdateEmailSettings(c.Request.Context(), &req)
	if err != nil {
		h.LogError(c, err, "Email settings update failed")
		c.JSON(http.StatusOK, MessageResponse{Success: false, Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}
