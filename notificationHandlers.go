package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/roufai-ne/crou-management-system-sub011/config"
	"github.com/roufai-ne/crou-management-system-sub011/models"
	"github.com/roufai-ne/crou-management-system-sub011/notifier"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func listNotificationsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		unreadOnly := c.Query("unread") == "true"
		notifications, err := models.ListNotifications(c.Request.Context(), unreadOnly)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"notifications": notifications})
	}
}

func markNotificationReadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		id, ok := pathId(c)
		if !ok {
			return
		}
		if err := models.MarkNotificationRead(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"read": true})
	}
}

func notificationSocketHandler(hub *notifier.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		tc := requireTenant(c)
		if tc == nil {
			return
		}
		conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			config.LogError(config.GetLogger(), "notification", "notificationSocketHandler", "upgrade", nil, err)
			return
		}
		hub.Register(tc.UserId, conn)
	}
}
