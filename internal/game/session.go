package game

import (
	"context"
	"sync"
	"time"

	"github.com/playmatatu/gravitywell/internal/models"
)

// Session is one hosted match owned by a registered player.
type Session struct {
	ID        string
	Token     string
	PlayerID  int
	CreatedAt time.Time

	clock *Clock

	mu         sync.Mutex
	lastActive time.Time
	highScore  int
	cancel     context.CancelFunc
	running    bool
	gen        int
}

// Outcome is reported once per finished match.
type Outcome struct {
	Winner             Side   `json:"winner" msgpack:"winner"`
	Score              Score  `json:"score" msgpack:"score"`
	NewHighScore       bool   `json:"new_high_score" msgpack:"new_high_score"`
	HighScore          int    `json:"high_score" msgpack:"high_score"`
	ChallengeCompleted bool   `json:"challenge_completed" msgpack:"challenge_completed"`
	Text               string `json:"text" msgpack:"text"`
}

// ScoreKeeper persists high scores and match history for registered players.
type ScoreKeeper interface {
	HighScore(ctx context.Context, playerID int) (int, error)
	RecordFinalScore(ctx context.Context, playerID, score int) (bool, error)
	RecordResult(ctx context.Context, r models.MatchResult) error
}

// FrameListener receives everything a transport needs to render a session.
// Calls come from the session's loop goroutine and must not block.
type FrameListener interface {
	OnFrame(s *Session, snap Snapshot, res StepResult)
	OnFinished(s *Session, snap Snapshot, out Outcome)
	OnEnded(s *Session, reason string)
}

// Snapshot returns the match state between ticks.
func (s *Session) Snapshot() Snapshot {
	return s.clock.Snapshot()
}

// HighScore is the player's best as known to this session.
func (s *Session) HighScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highScore
}

// LastActive is the time of the last player input.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Running reports whether the tick loop is live.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActive = now
	s.mu.Unlock()
}

func (s *Session) setHighScore(score int) {
	s.mu.Lock()
	if score > s.highScore {
		s.highScore = score
	}
	s.mu.Unlock()
}

func (s *Session) stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
