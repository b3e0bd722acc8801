// Package terminal hosts a match in a tcell screen with mouse and keyboard input.
package terminal

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/gravitywell/internal/game"
	log "github.com/sirupsen/logrus"
)

const (
	frameInterval = game.DefaultFrameInterval
	arrowStep     = 5.0
)

// Sounder plays effects for simulation events and can be muted.
type Sounder interface {
	game.EventSink
	SetEnabled(enabled bool)
}

// ScoreStore persists the local high score.
type ScoreStore interface {
	Load() (int, error)
	Record(score int) (bool, error)
}

// Game owns the screen and the match it renders.
type Game struct {
	screen tcell.Screen
	clock  *game.Clock
	sound  Sounder
	scores ScoreStore

	width, height int
	dark          bool
	muted         bool

	highScore    int
	newHighScore bool
	recorded     bool
}

// New builds a game on an already initialized screen. sound and scores may be nil.
func New(screen tcell.Screen, rng *rand.Rand, sound Sounder, scores ScoreStore) *Game {
	g := &Game{
		screen: screen,
		sound:  sound,
		scores: scores,
		dark:   true,
	}
	var sink game.EventSink
	if sound != nil {
		sink = sound
	}
	g.clock = game.NewClock(game.NewMatch(rng), sink)
	g.width, g.height = screen.Size()

	if scores != nil {
		hs, err := scores.Load()
		if err != nil {
			log.Warnf("[HIGHSCORE] load failed: %v", err)
		}
		g.highScore = hs
	}
	return g
}

// Run processes input and ticks the match until quit or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	g.screen.EnableMouse()
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := g.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	g.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok || !g.handleEvent(ev) {
				return nil
			}
			g.draw()
		case <-ticker.C:
			g.step()
			g.draw()
		}
	}
}

// step advances one frame if a match is live. Only the Run goroutine
// touches the clock, so Tick needs no extra locking here.
func (g *Game) step() {
	if g.clock.Snapshot().Status != game.StatusInProgress {
		return
	}
	res, err := g.clock.Tick(frameInterval)
	if err != nil {
		log.Debugf("[MATCH] tick: %v", err)
		return
	}
	if res.Finished {
		g.recordFinal()
	}
}

// recordFinal writes the high score once per finished match.
func (g *Game) recordFinal() {
	if g.recorded {
		return
	}
	g.recorded = true
	snap := g.clock.Snapshot()
	if snap.Score.Player <= g.highScore {
		return
	}
	g.highScore = snap.Score.Player
	g.newHighScore = true
	if g.scores == nil {
		return
	}
	if _, err := g.scores.Record(snap.Score.Player); err != nil {
		log.Warnf("[HIGHSCORE] save failed: %v", err)
	}
}

// start begins a new match if none is running.
func (g *Game) start() {
	var err error
	g.clock.Do(func(m *game.Match) { err = m.Start() })
	if err != nil {
		return
	}
	g.clock.Reset()
	g.recorded = false
	g.newHighScore = false
}

func (g *Game) movePaddle(delta float64) {
	g.clock.Do(func(m *game.Match) { m.SetPlayerPaddle(m.PlayerPaddle + delta) })
}

// handleEvent applies one input event and reports whether to keep running.
func (g *Game) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			g.movePaddle(-arrowStep)
		case tcell.KeyRight:
			g.movePaddle(arrowStep)
		case tcell.KeyEnter:
			g.start()
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				g.start()
			case 'd':
				g.dark = !g.dark
			case 'm':
				g.muted = !g.muted
				if g.sound != nil {
					g.sound.SetEnabled(!g.muted)
				}
			}
		}

	case *tcell.EventMouse:
		x, _ := ev.Position()
		field := screenToField(x, g.width)
		g.clock.Do(func(m *game.Match) { m.SetPlayerPaddle(field) })
		if ev.Buttons()&tcell.Button1 != 0 && g.clock.Snapshot().Status != game.StatusInProgress {
			g.start()
		}

	case *tcell.EventResize:
		g.width, g.height = g.screen.Size()
		g.screen.Sync()
	}
	return true
}

// screenToField maps a terminal column onto the 0..100 field axis.
func screenToField(col, width int) float64 {
	if width <= 1 {
		return game.FieldCenter
	}
	return float64(col) / float64(width-1) * 100
}
