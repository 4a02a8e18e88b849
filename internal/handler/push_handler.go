package handler

import (
	"net/http"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/push"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"github.com/gin-gonic/gin"
)

type PushHandler interface {
	PublicKey(c *gin.Context)
	Subscribe(c *gin.Context)
	Unsubscribe(c *gin.Context)
}

type pushHandler struct {
	relay         *push.Relay
	subscriptions repo.PushSubscriptionRepository
}

func NewPushHandler(relay *push.Relay, subscriptions repo.PushSubscriptionRepository) PushHandler {
	return &pushHandler{
		relay:         relay,
		subscriptions: subscriptions,
	}
}

type subscribeRequest struct {
	Endpoint string                 `json:"endpoint" binding:"required"`
	Keys     model.SubscriptionKeys `json:"keys" binding:"required"`
}

func (h *pushHandler) PublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"publicKey": h.relay.VAPIDPublicKey(),
	})
}

func (h *pushHandler) Subscribe(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid subscription body",
		})
		return
	}

	sub := &model.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		Keys:     req.Keys,
	}
	if err := h.subscriptions.Save(c.Request.Context(), sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to save subscription",
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"subscribed": true,
	})
}

func (h *pushHandler) Unsubscribe(c *gin.Context) {
	userID := c.GetString(ContextUserID)

	if err := h.subscriptions.Remove(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to remove subscription",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unsubscribed": true,
	})
}
