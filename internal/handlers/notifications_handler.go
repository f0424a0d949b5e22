package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imrishuroy/go-library-checkout/internal/checkout"
	"github.com/imrishuroy/go-library-checkout/internal/notifications"
	"github.com/imrishuroy/go-library-checkout/internal/validation"
)

func (h *api) listNotifications(c *gin.Context) {
	ns, err := h.Notifications.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": ns})
}

func (h *api) createNotification(c *gin.Context) {
	var req validation.NotificationRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	n, err := h.Notifications.Create(c.Request.Context(), notifications.Notification{
		UserID:             req.UserID,
		RegistrationNumber: req.RegistrationNumber,
		Type:               req.Type,
		Message:            req.Message,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "notification": n})
}

func (h *api) markNotificationRead(c *gin.Context) {
	n, err := h.Notifications.MarkRead(c.Request.Context(), checkout.ID(c.Param("id")))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notification": n})
}
