package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// Response types shared by all handlers
type ErrorResponse = models.ErrorResponse
type MessageResponse = models.MessageResponse

// BaseHandler carries the logging helpers shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with optional key-value pairs
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.GetLogger(c)
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Info(msg, args...)
}

// LogError logs a handler error with request context
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.GetLogger(c)
	args = append(args, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	logger.Error(msg, args...)
}

// handleServiceError maps service errors to HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "validation failed", Details: err.Error()})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrSelfDeletion):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAccountNotFound),
		errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrRewardNotFound),
		errors.Is(err, services.ErrRedemptionNotFound),
		errors.Is(err, services.ErrBalanceNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrDuplicateEmail),
		errors.Is(err, services.ErrDuplicateCourseName),
		errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrRedemptionNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{Message: err.Error()})
	case errors.Is(err, services.ErrInsufficientCoins),
		errors.Is(err, services.ErrRewardInactive):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Message: err.Error()})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
	}
}
