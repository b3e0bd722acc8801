package terminal

import (
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/playmatatu/gravitywell/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSound struct {
	events  []game.Event
	enabled bool
}

func (f *fakeSound) HandleEvent(e game.Event) { f.events = append(f.events, e) }

func (f *fakeSound) SetEnabled(enabled bool) { f.enabled = enabled }

type fakeStore struct {
	high     int
	recorded []int
}

func (f *fakeStore) Load() (int, error) { return f.high, nil }
func (f *fakeStore) Record(score int) (bool, error) {
	f.recorded = append(f.recorded, score)
	if score > f.high {
		f.high = score
		return true, nil
	}
	return false, nil
}

func newTestGame(t *testing.T) (*Game, tcell.SimulationScreen, *fakeSound, *fakeStore) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(80, 30)
	t.Cleanup(screen.Fini)

	sound := &fakeSound{enabled: true}
	store := &fakeStore{high: 2}
	g := New(screen, rand.New(rand.NewPCG(1, 2)), sound, store)
	return g, screen, sound, store
}

func screenText(s tcell.SimulationScreen) string {
	cells, w, h := s.GetContents()
	var b strings.Builder
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := cells[y*w+x]
			if len(c.Runes) > 0 {
				b.WriteRune(c.Runes[0])
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestNewLoadsHighScore(t *testing.T) {
	g, screen, _, _ := newTestGame(t)
	g.draw()

	text := screenText(screen)
	assert.Contains(t, text, "High score 2")
	assert.Contains(t, text, "Press SPACE")
	assert.Contains(t, text, game.DailyChallenge)
}

func TestSpaceStartsMatch(t *testing.T) {
	g, _, _, _ := newTestGame(t)

	assert.True(t, g.handleEvent(key(' ')))
	assert.Equal(t, game.StatusInProgress, g.clock.Snapshot().Status)

	g.step()
	assert.Equal(t, uint64(1), g.clock.Snapshot().Tick)
}

func TestStepIgnoredBeforeStart(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.step()
	assert.Equal(t, uint64(0), g.clock.Snapshot().Tick)
}

func TestQuitKeys(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	assert.False(t, g.handleEvent(key('q')))
	assert.False(t, g.handleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, g.handleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModNone)))
}

func TestArrowKeysMovePaddle(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.handleEvent(key(' '))

	g.handleEvent(tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone))
	assert.Equal(t, game.FieldCenter-arrowStep, g.clock.Snapshot().PlayerPaddle)

	for i := 0; i < 20; i++ {
		g.handleEvent(tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone))
	}
	assert.Equal(t, game.PaddleMax, g.clock.Snapshot().PlayerPaddle)
}

func TestMouseSetsPaddle(t *testing.T) {
	g, _, _, _ := newTestGame(t)
	g.handleEvent(key(' '))

	g.handleEvent(tcell.NewEventMouse(0, 10, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, game.PaddleMin, g.clock.Snapshot().PlayerPaddle)

	g.handleEvent(tcell.NewEventMouse(79, 10, tcell.ButtonNone, tcell.ModNone))
	assert.Equal(t, game.PaddleMax, g.clock.Snapshot().PlayerPaddle)
}

func TestMuteAndThemeToggles(t *testing.T) {
	g, screen, sound, _ := newTestGame(t)

	g.handleEvent(key('m'))
	assert.False(t, sound.enabled)
	assert.True(t, g.muted)

	g.handleEvent(key('d'))
	assert.False(t, g.dark)
	g.draw()
	assert.Contains(t, screenText(screen), "sound off")

	g.handleEvent(key('m'))
	assert.True(t, sound.enabled)
	assert.False(t, g.muted)
}

func TestFinishedMatchRecordsHighScore(t *testing.T) {
	g, screen, sound, store := newTestGame(t)
	g.handleEvent(key(' '))

	g.clock.Do(func(m *game.Match) {
		m.Wells = nil
		m.Score = game.Score{Player: game.WinningScore - 1, AI: 0}
		m.AIPaddle = game.PaddleMax
		m.Ball = game.Ball{Position: game.Vec2{X: 50, Y: 2.5}, Velocity: game.Vec2{X: 0, Y: -0.75}, SpeedMultiplier: 1}
	})
	g.step()

	snap := g.clock.Snapshot()
	require.Equal(t, game.StatusFinished, snap.Status)
	assert.Equal(t, []int{game.WinningScore}, store.recorded)
	assert.Equal(t, game.WinningScore, g.highScore)
	assert.Contains(t, sound.events, game.Event{Type: game.EventMatchFinished, Side: game.SidePlayer})

	g.step()
	assert.Len(t, store.recorded, 1, "recorded once per match")

	g.draw()
	text := screenText(screen)
	assert.Contains(t, text, "You Win!")
	assert.Contains(t, text, "New high score: 5")
	assert.Contains(t, text, "Play Again")

	g.handleEvent(key(' '))
	assert.Equal(t, game.StatusInProgress, g.clock.Snapshot().Status)
	assert.False(t, g.newHighScore)
}

func TestScreenToField(t *testing.T) {
	assert.Equal(t, 0.0, screenToField(0, 81))
	assert.Equal(t, 50.0, screenToField(40, 81))
	assert.Equal(t, 100.0, screenToField(80, 81))
	assert.Equal(t, game.FieldCenter, screenToField(0, 1))
}
