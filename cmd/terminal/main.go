package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/gravitywell/internal/audio"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/playmatatu/gravitywell/internal/highscore"
	"github.com/playmatatu/gravitywell/internal/terminal"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()
	// log lines would tear the screen
	log.SetOutput(io.Discard)

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	sound := audio.NewSoundManager()
	if err := sound.Initialize(); err != nil {
		log.Warnf("[AUDIO] initialization failed, continuing without sound: %v", err)
	}
	defer sound.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	g := terminal.New(screen, game.NewRand(), sound, highscore.NewFileStore(cfg.HighScoreFile))
	if err := g.Run(ctx); err != nil && ctx.Err() == nil {
		screen.Fini()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
