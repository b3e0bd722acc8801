package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/playmatatu/gravitywell/internal/ws"
)

// HandleMatchWebSocket handles real-time match communication
func HandleMatchWebSocket(gm *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return ws.HandleMatchWebSocket(gm, cfg)
}
