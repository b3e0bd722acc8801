package game

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeScores struct {
	mu      sync.Mutex
	best    map[int]int
	results []models.MatchResult
	err     error
}

func (f *fakeScores) HighScore(_ context.Context, id int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.best[id], f.err
}

func (f *fakeScores) RecordFinalScore(_ context.Context, id, score int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if score <= f.best[id] {
		return false, nil
	}
	f.best[id] = score
	return true, nil
}

func (f *fakeScores) RecordResult(_ context.Context, r models.MatchResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.results = append(f.results, r)
	return nil
}

type recordingListener struct {
	mu       sync.Mutex
	frames   int
	outcomes []Outcome
	ended    []string
}

func (l *recordingListener) OnFrame(*Session, Snapshot, StepResult) {
	l.mu.Lock()
	l.frames++
	l.mu.Unlock()
}

func (l *recordingListener) OnFinished(_ *Session, _ Snapshot, out Outcome) {
	l.mu.Lock()
	l.outcomes = append(l.outcomes, out)
	l.mu.Unlock()
}

func (l *recordingListener) OnEnded(_ *Session, reason string) {
	l.mu.Lock()
	l.ended = append(l.ended, reason)
	l.mu.Unlock()
}

func newTestManager(scores ScoreKeeper) (*GameManager, *recordingListener) {
	gm := NewGameManager(nil, scores, &config.Config{FrameRateHz: 1000, SessionExpiryMinutes: 30, IdleForfeitSeconds: 60})
	gm.newRand = testRand
	l := &recordingListener{}
	gm.SetListener(l)
	return gm, l
}

// rigMatchPoint leaves the player one tick away from winning 5-4.
func rigMatchPoint(m *Match) {
	m.Start()
	m.Wells = nil
	m.Score = Score{Player: 4, AI: 4}
	m.AIPaddle = PaddleMax
	m.Ball = Ball{Position: Vec2{X: 50, Y: 2.5}, Velocity: Vec2{X: 0, Y: -0.75}, SpeedMultiplier: 1}
}

func TestCreateSession(t *testing.T) {
	scores := &fakeScores{best: map[int]int{7: 3}}
	gm, _ := newTestManager(scores)

	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, 3, s.HighScore())
	assert.Equal(t, StatusNotStarted, s.Snapshot().Status)
	assert.Equal(t, 1, gm.GetActiveSessionCount())

	got, err := gm.GetSessionByToken(s.Token)
	require.NoError(t, err)
	assert.Same(t, s, got)

	_, err = gm.GetSessionByToken("missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCreateSessionHighScoreFailure(t *testing.T) {
	gm, _ := newTestManager(&fakeScores{best: map[int]int{}, err: errors.New("db down")})

	_, err := gm.CreateSession(context.Background(), 7)
	assert.Error(t, err)
	assert.Zero(t, gm.GetActiveSessionCount())
}

func TestStartMatchAndEndSession(t *testing.T) {
	gm, l := newTestManager(nil)
	s, err := gm.CreateSession(context.Background(), 0)
	require.NoError(t, err)

	snap, err := gm.StartMatch(s.Token)
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, snap.Status)
	assert.True(t, s.Running())

	_, err = gm.StartMatch(s.Token)
	assert.ErrorIs(t, err, ErrAlreadyInProgress)

	assert.Eventually(t, func() bool {
		l.mu.Lock()
		defer l.mu.Unlock()
		return l.frames > 0
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, gm.EndSession(s.Token, EndReasonClosed))
	assert.Eventually(t, func() bool { return !s.Running() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{EndReasonClosed}, l.ended)
	assert.ErrorIs(t, gm.EndSession(s.Token, EndReasonClosed), ErrSessionNotFound)

	_, err = gm.StartMatch(s.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSetPaddle(t *testing.T) {
	gm, _ := newTestManager(nil)
	s, err := gm.CreateSession(context.Background(), 0)
	require.NoError(t, err)

	x, err := gm.SetPaddle(s.Token, 120)
	require.NoError(t, err)
	assert.Equal(t, PaddleMax, x)
	assert.Equal(t, PaddleMax, s.Snapshot().PlayerPaddle)

	_, err = gm.SetPaddle("missing", 10)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRunLoopRecordsNewHighScore(t *testing.T) {
	scores := &fakeScores{best: map[int]int{7: 3}}
	gm, l := newTestManager(scores)
	s, err := gm.CreateSession(context.Background(), 7)
	require.NoError(t, err)
	s.clock.Do(rigMatchPoint)

	gm.runLoop(context.Background(), s, 0)

	require.Len(t, l.outcomes, 1)
	out := l.outcomes[0]
	assert.Equal(t, SidePlayer, out.Winner)
	assert.Equal(t, Score{Player: 5, AI: 4}, out.Score)
	assert.True(t, out.NewHighScore)
	assert.Equal(t, 5, out.HighScore)
	assert.Equal(t, "You Win!", out.Text)
	assert.Equal(t, 5, s.HighScore())
	assert.False(t, s.Running())

	require.Len(t, scores.results, 1)
	assert.Equal(t, "player", scores.results[0].Winner)
	assert.Equal(t, s.Token, scores.results[0].SessionToken)

	// play again from the finished state
	_, err = gm.StartMatch(s.Token)
	require.NoError(t, err)
	require.NoError(t, gm.EndSession(s.Token, EndReasonClosed))
}

func TestRunLoopAnonymousLoss(t *testing.T) {
	gm, l := newTestManager(nil)
	s, err := gm.CreateSession(context.Background(), 0)
	require.NoError(t, err)
	s.clock.Do(func(m *Match) {
		m.Start()
		m.Wells = nil
		m.Score = Score{Player: 0, AI: 4}
		m.PlayerPaddle = PaddleMin
		m.Ball = Ball{Position: Vec2{X: 80, Y: 97.5}, Velocity: Vec2{X: 0, Y: 0.75}, SpeedMultiplier: 1}
	})

	gm.runLoop(context.Background(), s, 0)

	require.Len(t, l.outcomes, 1)
	assert.Equal(t, SideAI, l.outcomes[0].Winner)
	assert.False(t, l.outcomes[0].NewHighScore)
	assert.Equal(t, "AI Wins!", l.outcomes[0].Text)
}

func TestCheckExpiredSessions(t *testing.T) {
	gm, l := newTestManager(nil)
	stale, err := gm.CreateSession(context.Background(), 0)
	require.NoError(t, err)
	fresh, err := gm.CreateSession(context.Background(), 0)
	require.NoError(t, err)

	now := time.Now()
	stale.touch(now.Add(-time.Hour))

	assert.Equal(t, 1, gm.checkExpiredSessions(now))
	_, err = gm.GetSessionByToken(stale.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = gm.GetSessionByToken(fresh.Token)
	assert.NoError(t, err)
	assert.Equal(t, []string{EndReasonExpired}, l.ended)
}

func TestShutdownEndsEverySession(t *testing.T) {
	gm, _ := newTestManager(nil)
	for i := 0; i < 3; i++ {
		s, err := gm.CreateSession(context.Background(), 0)
		require.NoError(t, err)
		_, err = gm.StartMatch(s.Token)
		require.NoError(t, err)
	}

	gm.Shutdown()
	assert.Zero(t, gm.GetActiveSessionCount())
}

func TestIdleHelpers(t *testing.T) {
	assert.Equal(t, "abc", parseMember(idleMember("abc")))
	assert.Empty(t, parseMember("g:abc:p:1"))
	assert.Empty(t, parseMember("s:"))

	now := time.Unix(1000, 0)
	assert.True(t, idleExpired(900, now, 100))
	assert.False(t, idleExpired(950, now, 100))
}
