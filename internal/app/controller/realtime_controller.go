package controller

import (
	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/ikkim/manajir-storefront/internal/middleware"
	"github.com/ikkim/manajir-storefront/internal/websocket"
)

type RealtimeController struct {
	hub      *websocket.Hub
	upgrader *gorillaws.Upgrader
}

func NewRealtimeController(hub *websocket.Hub, allowedOrigins []string) *RealtimeController {
	return &RealtimeController{
		hub:      hub,
		upgrader: websocket.NewUpgrader(allowedOrigins),
	}
}

// Connect opens a live channel that receives this session's cart and
// wishlist changes
// GET /api/v1/ws
func (ctrl *RealtimeController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := middleware.GetSessionID(c)

	// Upgrade writes its own error response
	if err := ctrl.hub.Serve(ctrl.upgrader, c.Writer, c.Request, sessionID); err != nil {
		log.Warn("WebSocket upgrade failed", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	log.Debug("WebSocket connected", map[string]interface{}{
		"session_id": sessionID,
	})
}
