package handlers

import (
	"carrent/internal/services"

	"github.com/gin-gonic/gin"
)

// WebSocketHandler upgrades an authenticated connection and hands it
// to the booking events hub.
func WebSocketHandler(hub *services.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userId")

		services.HandleWebSocket(hub, c.Writer, c.Request, userID)
	}
}
