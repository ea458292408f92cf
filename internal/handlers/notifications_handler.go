package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sokomarket/payflow/internal/notification"
)

// NotificationsConfig groups dependencies for the notification routes.
type NotificationsConfig struct {
	Store  *notification.Store
	Logger *logrus.Logger
}

// RegisterNotificationsRoutes registers the in-app notification
// surface: list a user's notifications and flip one to read.
func RegisterNotificationsRoutes(r *gin.Engine, cfg NotificationsConfig) {
	r.GET("/notifications/:userId", func(c *gin.Context) {
		items, err := cfg.Store.ListByUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			cfg.Logger.WithError(err).Error("list notifications failed")
			fault(c, http.StatusInternalServerError, "could not list notifications")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success", "data": items})
	})

	r.PATCH("/notifications/:id/read", func(c *gin.Context) {
		if err := cfg.Store.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
			cfg.Logger.WithError(err).Error("mark notification read failed")
			fault(c, http.StatusInternalServerError, "could not update notification")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "success"})
	})
}
