package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Chodo25/FaradayCoins/internal/events"
	"github.com/Chodo25/FaradayCoins/internal/repositories"
	"github.com/Chodo25/FaradayCoins/internal/services"
	"github.com/Chodo25/FaradayCoins/internal/utils"
)

type CoinHandler struct {
	BaseHandler
	coins      services.CoinService
	subscriber events.EventSubscriber
}

func NewCoinHandler(coins services.CoinService, subscriber events.EventSubscriber, logger utils.Logger) *CoinHandler {
	return &CoinHandler{
		BaseHandler: NewBaseHandler(logger),
		coins:       coins,
		subscriber:  subscriber,
	}
}

// Grant credits coins to a student and records the ledger entry
// POST /api/v1/coins/grant
func (h *CoinHandler) Grant(c *gin.Context) {
	var req services.GrantCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	balance, err := h.coins.Grant(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Coins granted", "user_id", req.UserID, "amount", req.Amount)
	c.JSON(http.StatusOK, balance)
}

// Deduct debits coins from a student, refusing to take the balance negative
// POST /api/v1/coins/deduct
func (h *CoinHandler) Deduct(c *gin.Context) {
	var req services.DeductCoinsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Details: err.Error()})
		return
	}

	actorID, _ := GetUserIDFromContext(c)
	balance, err := h.coins.Deduct(c.Request.Context(), &req, actorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Coins deducted", "user_id", req.UserID, "amount", req.Amount)
	c.JSON(http.StatusOK, balance)
}

// MyBalance returns the caller's balance
// GET /api/v1/coins/me
func (h *CoinHandler) MyBalance(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	balance, err := h.coins.Balance(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// Balance returns another user's balance
// GET /api/v1/coins/:user_id
func (h *CoinHandler) Balance(c *gin.Context) {
	balance, err := h.coins.Balance(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, balance)
}

// MyHistory returns the caller's ledger, newest first
// GET /api/v1/coins/me/history
func (h *CoinHandler) MyHistory(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}
	h.history(c, userID)
}

// History returns another user's ledger
// GET /api/v1/coins/:user_id/history
func (h *CoinHandler) History(c *gin.Context) {
	h.history(c, c.Param("user_id"))
}

func (h *CoinHandler) history(c *gin.Context, userID string) {
	filters := repositories.TransactionFilters{
		Limit:  queryInt(c, "limit", 0),
		Offset: queryInt(c, "offset", 0),
	}

	list, err := h.coins.History(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// Stream pushes the caller's coin events over SSE until the client hangs up
// GET /api/v1/coins/me/stream
func (h *CoinHandler) Stream(c *gin.Context) {
	userID, err := GetUserIDFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	eventCh, err := h.subscriber.Subscribe(ctx, events.TopicCoins)
	if err != nil {
		h.LogError(c, err, "Coin event subscription failed")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "event stream unavailable"})
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case event, ok := <-eventCh:
			if !ok {
				return false
			}
			if eventUserID(event) != userID {
				return true
			}
			c.SSEvent(event.Type, event)
			return true
		}
	})
}

// eventUserID pulls the subject user out of an event payload. Payloads that
// crossed the bus arrive as generic JSON maps.
func eventUserID(event *events.Event) string {
	switch data := event.Data.(type) {
	case events.CoinEvent:
		return data.UserID
	case *events.CoinEvent:
		return data.UserID
	case map[string]interface{}:
		if id, ok := data["user_id"].(string); ok {
			return id
		}
	}
	return ""
}
