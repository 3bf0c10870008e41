package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// HandleWebSocket upgrades the connection and streams the caller's
// notifications. Browsers cannot set headers on a websocket handshake, so the
// bearer token may also come in the "token" query parameter.
func (h *Handlers) HandleWebSocket(c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		raw, _ = strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	}
	if raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}
	userID, err := h.auth.Parse(raw)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return
	}

	conn, err := h.wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "user_id", userID, "error", err)
		return
	}
	h.hub.Serve(userID, conn)
}
