package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/highscore"
	"github.com/playmatatu/gravitywell/internal/players"
	log "github.com/sirupsen/logrus"
)

func pathPlayerID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return 0, false
	}
	return id, true
}

// GetPlayerHighScore returns a player's best score.
func GetPlayerHighScore(scores *highscore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathPlayerID(c)
		if !ok {
			return
		}
		best, err := scores.HighScore(c.Request.Context(), id)
		if errors.Is(err, players.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "player not found"})
			return
		}
		if err != nil {
			log.Printf("[HIGHSCORE] lookup failed for %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"player_id": id, "high_score": best})
	}
}

// GetPlayerMatches returns the player's recent match history.
func GetPlayerMatches(scores *highscore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathPlayerID(c)
		if !ok {
			return
		}
		results, err := scores.RecentResults(c.Request.Context(), id, parseLimit(c, 10, 50))
		if err != nil {
			log.Printf("[DB] match history failed for %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"player_id": id, "matches": results})
	}
}

// GetLeaderboard returns the top high scores.
func GetLeaderboard(scores *highscore.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := scores.Leaderboard(c.Request.Context(), parseLimit(c, 10, 100))
		if err != nil {
			log.Printf("[HIGHSCORE] leaderboard failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
	}
}
