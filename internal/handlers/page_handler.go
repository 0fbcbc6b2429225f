package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/models"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

// PageHandler assembles the data payloads behind the gated page groups.
// The gates have already resolved the user by the time these run.
type PageHandler struct {
	BaseHandler
	coins   services.CoinService
	rewards services.RewardService
	reports services.ReportService
}

func NewPageHandler(coins services.CoinService, rewards services.RewardService, reports services.ReportService, logger utils.Logger) *PageHandler {
	return &PageHandler{
		BaseHandler: NewBaseHandler(logger),
		coins:       coins,
		rewards:     rewards,
		reports:     reports,
	}
}

// Dashboard is the student home: profile, balance, recent ledger and the
// active reward catalog
// GET /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	ctx := c.Request.Context()

	balance, err := h.coins.Balance(ctx, user.ID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	history, err := h.coins.History(ctx, user.ID, repositories.TransactionFilters{Limit: 10})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	catalog, err := h.rewards.List(ctx, true)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":    "dashboard",
		"user":    user,
		"balance": balance,
		"history": history.Transactions,
		"rewards": catalog,
	})
}

// AdminHome is the admin console landing: leaderboard plus the pending
// redemption queue
// GET /admin
func (h *PageHandler) AdminHome(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.Redirect(http.StatusFound, "/admin/login")
		return
	}
	ctx := c.Request.Context()

	top, err := h.reports.TopStudents(ctx, repositories.CourseFilter{}, 10)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := models.RedemptionPending
	queue, err := h.rewards.ListRedemptions(ctx, repositories.RedemptionFilters{Status: &status, Limit: 20})
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page":         "admin",
		"user":         user,
		"top_students": top,
		"pending":      queue.Redemptions,
	})
}
