package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/game"
	log "github.com/sirupsen/logrus"
)

// ownedSession resolves :token and checks it belongs to the caller.
func ownedSession(c *gin.Context, gm *game.GameManager) (*game.Session, bool) {
	s, err := gm.GetSessionByToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return nil, false
	}
	if s.PlayerID != playerIDFrom(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your session"})
		return nil, false
	}
	return s, true
}

func sessionBody(s *game.Session, snap game.Snapshot) gin.H {
	return gin.H{
		"token":      s.Token,
		"match_id":   s.ID,
		"high_score": s.HighScore(),
		"snapshot":   snap,
	}
}

// CreateMatch opens a new session for the caller.
func CreateMatch(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := gm.CreateSession(c.Request.Context(), playerIDFrom(c))
		if err != nil {
			log.Printf("[MATCH] create session failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create match"})
			return
		}
		c.JSON(http.StatusCreated, sessionBody(s, s.Snapshot()))
	}
}

// GetMatch returns the session's current snapshot.
func GetMatch(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownedSession(c, gm)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, sessionBody(s, s.Snapshot()))
	}
}

// StartMatch starts or restarts the session's match.
func StartMatch(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownedSession(c, gm)
		if !ok {
			return
		}
		snap, err := gm.StartMatch(s.Token)
		if errors.Is(err, game.ErrAlreadyInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, sessionBody(s, snap))
	}
}

// EndMatch stops and discards the session.
func EndMatch(gm *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := ownedSession(c, gm)
		if !ok {
			return
		}
		if err := gm.EndSession(s.Token, game.EndReasonClosed); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
