package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/api"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/database"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/playmatatu/gravitywell/internal/highscore"
	"github.com/playmatatu/gravitywell/internal/migrations"
	"github.com/playmatatu/gravitywell/internal/players"
	"github.com/playmatatu/gravitywell/internal/redis"
	"github.com/playmatatu/gravitywell/internal/ws"
	log "github.com/sirupsen/logrus"
)

func main() {
	// Initialize configuration (also loads .env)
	cfg := config.Load()
	cfg.ConfigureLogging()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if cfg.MigrateOnStart {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL, migrations.DefaultDir); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer rdb.Close()

	repo := players.NewPostgresRepository(db)
	scores := highscore.NewService(repo, rdb)
	if err := scores.Rebuild(ctx); err != nil {
		log.Warnf("[HIGHSCORE] leaderboard rebuild failed: %v", err)
	}

	// Initialize Game Manager and push frames out over websockets
	gm := game.InitializeManager(ctx, rdb, scores, cfg)
	gm.SetListener(ws.NewBroadcaster())

	// Wire Redis and start the event subscriber in the WS layer
	ws.SetRedisClient(rdb)
	ws.StartEventSubscriber(ctx)

	// Idle forfeits
	game.StartIdleWorker(ctx, gm, rdb, cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.SetupRoutes(router, cfg, repo, scores, gm)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Starting Gravity Well server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	gm.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown: %v", err)
	}
}
