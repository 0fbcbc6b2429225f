package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

type RewardHandler struct {
	BaseHandler
	rewards services.RewardService
}

func NewRewardHandler(rewards services.RewardService, logger utils.Logger) *RewardHandler {
	return &RewardHandler{
		BaseHandler: NewBaseHandler(logger),
		rewards:     rewards,
	}
}

// List returns the reward catalog. Students only see active rewards.
// GET /api/v1/rewards
func (h *RewardHandler) List(c *gin.Context) {
	role, _ := GetUserRoleFromContext(c)
	activeOnly := role == models.RoleStudent || c.Query("active") == "true"

	rewards, err := h.rewards.List(c.Request.Context(), activeOnly)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rewards": rewards})
}

// Create adds a reward to the catalog
// POST /api/v1/rewards
func (h *RewardHandler) Create(c *gin.Context) {
	var req services.RewardCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	reward, err := h.rewards.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, reward)
}

// Update edits a catalog entry
// PUT /api/v1/rewards/:id
func (h *RewardHandler) Update(c *gin.Context) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid reward ID"})
		return
	}

	var req services.RewardUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	reward, err := h.rewards.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, reward)
}

// Delete removes a reward from the catalog
// DELETE /api/v1/rewards/:id
func (h *RewardHandler) Delete(c *gin.Context) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid reward ID"})
		return
	}

	if err := h.rewards.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: "reward deleted"})
}

// Redeem debits the caller and opens a pending redemption
// POST /api/v1/rewards/redeem
func (h *RewardHandler) Redeem(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	var req services.RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	redemption, err := h.rewards.Redeem(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Reward redeemed", "reward_id", req.RewardID, "redemption_id", redemption.ID)
	c.JSON(http.StatusCreated, redemption)
}

// ListRedemptions returns redemption requests for review
// GET /api/v1/redemptions
func (h *RewardHandler) ListRedemptions(c *gin.Context) {
	filters := repositories.RedemptionFilters{
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.RedemptionStatus(statusStr)
		filters.Status = &status
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
	}

	list, err := h.rewards.ListRedemptions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// MyRedemptions returns the caller's redemption requests
// GET /api/v1/redemptions/me
func (h *RewardHandler) MyRedemptions(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	filters := repositories.RedemptionFilters{
		UserID: &userID,
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}

	list, err := h.rewards.ListRedemptions(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Approve marks a pending redemption fulfilled, keeping the debit
// POST /api/v1/redemptions/:id/approve
func (h *RewardHandler) Approve(c *gin.Context) {
	h.review(c, h.rewards.Approve, "redemption approved")
}

// Reject refuses a pending redemption and refunds the coins
// POST /api/v1/redemptions/:id/reject
func (h *RewardHandler) Reject(c *gin.Context) {
	h.review(c, h.rewards.Reject, "redemption rejected")
}

func (h *RewardHandler) review(c *gin.Context, decide func(ctx context.Context, id uint, req *services.ReviewRedemptionRequest, reviewerID string) error, message string) {
	id, ok := pathUint(c, "id")
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid redemption ID"})
		return
	}

	var req services.ReviewRedemptionRequest
	// Review notes are optional, an empty body is fine
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	reviewerID, _ := GetUserIDFromContext(c)
	if err := decide(c.Request.Context(), id, &req, reviewerID); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Success: true, Message: message})
}
