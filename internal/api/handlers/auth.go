package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/auth"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/models"
	"github.com/playmatatu/gravitywell/internal/players"
	log "github.com/sirupsen/logrus"
)

type credentials struct {
	DisplayName string `json:"display_name" binding:"required"`
	PIN         string `json:"pin" binding:"required"`
}

func issueSession(c *gin.Context, cfg *config.Config, p *models.Player, status int) {
	ttl := time.Duration(cfg.SessionTimeoutMin) * time.Minute
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	signed, exp, err := auth.IssueToken(cfg.JWTSecret, p.ID, p.DisplayName, ttl)
	if err != nil {
		log.Printf("Failed to sign token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"token": signed, "expires_at": exp.UTC(), "player": p})
}

// Register creates a player with a bcrypt-hashed PIN and returns a JWT.
func Register(repo players.Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name and pin required"})
			return
		}
		req.DisplayName = strings.TrimSpace(req.DisplayName)
		if !players.ValidDisplayName(req.DisplayName) {
			c.JSON(http.StatusBadRequest, gin.H{"error": players.ErrInvalidName.Error()})
			return
		}
		if !auth.ValidPIN(req.PIN) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "pin must be 4-6 digits"})
			return
		}

		pinHash, err := auth.HashPIN(req.PIN)
		if err != nil {
			log.Printf("Register bcrypt error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		p, err := repo.Create(c.Request.Context(), req.DisplayName, pinHash)
		if errors.Is(err, players.ErrNameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		if err != nil {
			log.Printf("[DB] create player failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		log.Printf("[AUTH] registered player %d (%s)", p.ID, p.DisplayName)
		issueSession(c, cfg, p, http.StatusCreated)
	}
}

// Login checks the PIN and returns a fresh JWT.
func Login(repo players.Repository, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentials
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "display_name and pin required"})
			return
		}

		p, err := repo.GetByDisplayName(c.Request.Context(), strings.TrimSpace(req.DisplayName))
		if err != nil && !errors.Is(err, players.ErrNotFound) {
			log.Printf("[DB] lookup player failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		if p == nil || !auth.CheckPIN(p.PINHash, req.PIN) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		issueSession(c, cfg, p, http.StatusOK)
	}
}

// AuthMiddleware validates bearer JWT and sets player_id in context
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}

		playerID, err := auth.ParseToken(cfg.JWTSecret, strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(playerIDKey, playerID)
		c.Next()
	}
}
