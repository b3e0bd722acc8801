package terminal

import (
	"fmt"
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/gravitywell/internal/game"
)

const (
	hudRows    = 2 // score line and challenge line
	footerRows = 1

	ballRune       = '●'
	wellRune       = 'o'
	wellActiveRune = '@'
	paddleRune     = '█'
	wallRune       = '│'
)

func (g *Game) palette() Palette {
	if g.dark {
		return darkPalette
	}
	return lightPalette
}

// fieldRect is the screen area the 100x100 field is scaled into.
type fieldRect struct {
	left, top, width, height int
}

func (g *Game) field() fieldRect {
	h := g.height - hudRows - footerRows
	if h < 1 {
		h = 1
	}
	return fieldRect{left: 0, top: hudRows, width: g.width, height: h}
}

// cell maps field coordinates to a screen cell inside r.
func (r fieldRect) cell(x, y float64) (int, int) {
	col := r.left + int(math.Round(x/100*float64(r.width-1)))
	row := r.top + int(math.Round(y/100*float64(r.height-1)))
	return col, row
}

func (g *Game) draw() {
	p := g.palette()
	snap := g.clock.Snapshot()

	g.screen.SetStyle(p.Background)
	g.screen.Clear()

	r := g.field()
	g.drawWalls(r, p)
	for _, w := range snap.Wells {
		col, row := r.cell(w.Position.X, w.Position.Y)
		if w.Active {
			g.screen.SetContent(col, row, wellActiveRune, nil, p.WellActive)
		} else {
			g.screen.SetContent(col, row, wellRune, nil, p.Well)
		}
	}
	g.drawPaddle(r, snap.AIPaddle, game.AIPaddleLine, p.AI)
	g.drawPaddle(r, snap.PlayerPaddle, game.PlayerPaddleLine, p.Player)

	col, row := r.cell(snap.Ball.X, snap.Ball.Y)
	g.screen.SetContent(col, row, ballRune, nil, p.Ball)

	g.drawHUD(snap, p)
	g.drawBanner(snap, p)
	g.screen.Show()
}

func (g *Game) drawWalls(r fieldRect, p Palette) {
	left, _ := r.cell(game.WallMin, 0)
	right, _ := r.cell(game.WallMax, 0)
	for row := r.top; row < r.top+r.height; row++ {
		g.screen.SetContent(left, row, wallRune, nil, p.Border)
		g.screen.SetContent(right, row, wallRune, nil, p.Border)
	}
}

func (g *Game) drawPaddle(r fieldRect, center, line float64, style tcell.Style) {
	from, row := r.cell(center-game.PaddleHalfWidth, line)
	to, _ := r.cell(center+game.PaddleHalfWidth, line)
	for col := from; col <= to; col++ {
		g.screen.SetContent(col, row, paddleRune, nil, style)
	}
}

func (g *Game) drawHUD(snap game.Snapshot, p Palette) {
	sound := "on"
	if g.muted {
		sound = "off"
	}
	drawText(g.screen, 0, 0, p.HUD, fmt.Sprintf(
		" You %d : %d AI   High score %d   Wells %d   [m] sound %s  [d] theme  [q] quit",
		snap.Score.Player, snap.Score.AI, g.highScore, snap.WellActivations, sound))

	challenge := "Daily challenge: " + game.DailyChallenge
	if snap.ChallengeCompleted {
		challenge += "  (completed!)"
	}
	drawText(g.screen, 0, 1, p.HUD, " "+challenge)
}

func (g *Game) drawBanner(snap game.Snapshot, p Palette) {
	var lines []string
	switch snap.Status {
	case game.StatusNotStarted:
		lines = []string{"Press SPACE or click to start"}
	case game.StatusFinished:
		lines = []string{game.OutcomeText(snap)}
		if g.newHighScore {
			lines = append(lines, fmt.Sprintf("New high score: %d", g.highScore))
		}
		if snap.ChallengeCompleted {
			lines = append(lines, "Challenge completed!")
		}
		lines = append(lines, "Play Again (SPACE)")
	default:
		drawText(g.screen, 0, g.height-1, p.HUD, " Move: mouse or arrows")
		return
	}

	top := g.height/2 - len(lines)/2
	for i, l := range lines {
		drawText(g.screen, (g.width-len([]rune(l)))/2, top+i, p.Banner, l)
	}
}

func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x++
	}
}
