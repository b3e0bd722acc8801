package api

import (
	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/api/handlers"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/playmatatu/gravitywell/internal/highscore"
	"github.com/playmatatu/gravitywell/internal/middleware"
	"github.com/playmatatu/gravitywell/internal/players"
	log "github.com/sirupsen/logrus"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, cfg *config.Config, repo players.Repository, scores *highscore.Service, gm *game.GameManager) {
	router.Use(middleware.CORSMiddleware(cfg))

	if cfg.Environment != "production" {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	authRequired := handlers.AuthMiddleware(cfg)

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck(gm))
		v1.GET("/config", handlers.GetConfig(cfg))
		v1.GET("/challenge", handlers.GetChallenge)
		v1.GET("/leaderboard", handlers.GetLeaderboard(scores))

		// Player endpoints
		player := v1.Group("/player")
		{
			player.POST("/register", handlers.Register(repo, cfg))
			player.POST("/login", handlers.Login(repo, cfg))
			player.GET("/:id/highscore", handlers.GetPlayerHighScore(scores))
			player.GET("/:id/matches", handlers.GetPlayerMatches(scores))
		}

		// Match endpoints
		match := v1.Group("/match")
		{
			match.POST("", authRequired, handlers.CreateMatch(gm))
			match.GET("/:token", authRequired, handlers.GetMatch(gm))
			match.POST("/:token/start", authRequired, handlers.StartMatch(gm))
			match.DELETE("/:token", authRequired, handlers.EndMatch(gm))
			match.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleMatchWebSocket(gm, cfg))
		}
	}
}
