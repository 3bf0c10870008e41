package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tariel-x/eventease/internal/auth"
	"github.com/tariel-x/eventease/internal/models"
)

type pushSubscribeKeys struct {
	P256DH string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

type pushSubscribeRequest struct {
	Endpoint string            `json:"endpoint" binding:"required,url"`
	Keys     pushSubscribeKeys `json:"keys" binding:"required"`
}

func (h *Handlers) pushEnabled(c *gin.Context) bool {
	if h.config == nil || !h.config.PushEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "Push notifications are disabled"})
		return false
	}
	return true
}

func (h *Handlers) GetVAPIDPublicKey(c *gin.Context) {
	if !h.pushEnabled(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"publicKey": h.config.VAPID.PublicKey})
}

// SubscribePush stores the browser subscription, replacing any older one.
func (h *Handlers) SubscribePush(c *gin.Context) {
	if !h.pushEnabled(c) {
		return
	}
	var req pushSubscribeRequest
	if !bindJSON(c, &req) {
		return
	}
	userID := auth.UserID(c)

	sub := &models.PushSubscription{
		UserID:   userID,
		Endpoint: req.Endpoint,
		P256DH:   req.Keys.P256DH,
		Auth:     req.Keys.Auth,
	}
	if err := h.store.ReplacePushSubscription(c.Request.Context(), sub); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info("push subscription stored", "user_id", userID, "subscription_id", sub.ID)
	c.JSON(http.StatusCreated, sub)
}

func (h *Handlers) UnsubscribePush(c *gin.Context) {
	var req struct {
		Endpoint string `json:"endpoint" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if err := h.store.DeletePushSubscriptionByEndpoint(c.Request.Context(), auth.UserID(c), req.Endpoint); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Unsubscribed"})
}
