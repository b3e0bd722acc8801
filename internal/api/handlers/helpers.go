package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const playerIDKey = "player_id"

// playerIDFrom returns the authenticated player set by AuthMiddleware.
func playerIDFrom(c *gin.Context) int {
	return c.GetInt(playerIDKey)
}

// parseLimit reads ?limit= with a default and an upper bound.
func parseLimit(c *gin.Context, def, max int) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
