package delivery

import (
	"errors"
	"net/http"

	authdelivery "notify-backend/internal/auth/delivery"
	pushdto "notify-backend/internal/push/dto"
	"notify-backend/internal/push/usecase"

	"github.com/gin-gonic/gin"
)

// PushHandler handles notification dispatch and subscription registration
type PushHandler struct {
	pushUsecase usecase.PushUsecase
}

// NewPushHandler creates a new PushHandler
func NewPushHandler(pushUsecase usecase.PushUsecase) *PushHandler {
	return &PushHandler{
		pushUsecase: pushUsecase,
	}
}

// SendNotification dispatches a notification to every subscription of the
// requested recipients.
// POST /api/notifications/send
func (h *PushHandler) SendNotification(c *gin.Context) {
	var req pushdto.SendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.pushUsecase.Deliver(c.Request.Context(), &req)
	if err != nil {
		if usecase.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, usecase.ErrNotConfigured) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "push notifications are not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// RegisterSubscription stores the caller's own browser subscription.
// POST /api/push/subscriptions
func (h *PushHandler) RegisterSubscription(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserID)
	if userID == "" {
		// Service callers own no subscriptions.
		c.JSON(http.StatusForbidden, gin.H{"error": "a user identity is required"})
		return
	}

	var req pushdto.RegisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub, err := h.pushUsecase.RegisterSubscription(userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, sub)
}

// UnregisterSubscription removes one of the caller's subscriptions.
// DELETE /api/push/subscriptions
func (h *PushHandler) UnregisterSubscription(c *gin.Context) {
	userID := c.GetString(authdelivery.ContextUserID)
	if userID == "" {
		c.JSON(http.StatusForbidden, gin.H{"error": "a user identity is required"})
		return
	}

	var req pushdto.UnregisterSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.pushUsecase.UnregisterSubscription(userID, req.Endpoint); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
