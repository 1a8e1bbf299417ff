package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"society-booking-backend/internal/model"
	"society-booking-backend/internal/mw"
)

type putSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256DH   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

type deleteSubscriptionRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

// PutSubscription handles the creation or replacement of the caller's push
// subscription.
func (h *Handler) PutSubscription(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok || caller.IsAdmin {
		c.JSON(http.StatusForbidden, gin.H{"error": "resident account required"})
		return
	}

	var req putSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint, p256dh and auth are required"})
		return
	}

	sub := &model.PushSubscription{
		Endpoint: req.Endpoint,
		UserID:   caller.ID,
		P256DH:   req.P256DH,
		Auth:     req.Auth,
	}
	if err := h.store.UpsertSubscription(c.Request.Context(), sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save subscription"})
		return
	}
	c.Status(http.StatusCreated)
}

// GetSubscription reports whether the caller has a subscription registered
// for the given endpoint.
func (h *Handler) GetSubscription(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	endpoint := c.Query("endpoint")
	if endpoint == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	sub, err := h.store.GetSubscription(c.Request.Context(), endpoint)
	if err != nil || sub.UserID != caller.ID {
		c.JSON(http.StatusNotFound, gin.H{"error": "subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"endpoint": sub.Endpoint})
}

// DeleteSubscription removes the caller's subscription for an endpoint.
func (h *Handler) DeleteSubscription(c *gin.Context) {
	caller, ok := mw.CallerFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var req deleteSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "endpoint is required"})
		return
	}

	if err := h.store.DeleteSubscription(c.Request.Context(), req.Endpoint, caller.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete subscription"})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVAPIDPublicKey returns the VAPID public key to the client.
func (h *Handler) GetVAPIDPublicKey(c *gin.Context) {
	if h.webpush == nil || h.webpush.VAPIDPublicKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "vapid keys are not configured"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"public_key": h.webpush.VAPIDPublicKey})
}
