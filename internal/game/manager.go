package game

import (
	"context"
	crand "crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/models"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	idleForfeitKey   = "idle_forfeit"
	lastActivePrefix = "last_active:"

	EndReasonClosed  = "closed"
	EndReasonExpired = "expired"
	EndReasonIdle    = "idle"
)

// GameManager owns every hosted session and drives their tick loops.
type GameManager struct {
	sessions      map[string]*Session // keyed by token
	scores        ScoreKeeper
	listener      FrameListener
	rdb           *redis.Client
	config        *config.Config
	frameInterval time.Duration
	newRand       func() *rand.Rand
	mu            sync.RWMutex
}

// InitializeManager creates the manager and starts its expiry checker.
func InitializeManager(ctx context.Context, rdb *redis.Client, scores ScoreKeeper, cfg *config.Config) *GameManager {
	gm := NewGameManager(rdb, scores, cfg)
	go gm.StartExpiryChecker(ctx)
	return gm
}

// NewGameManager creates a manager. rdb and scores may be nil.
func NewGameManager(rdb *redis.Client, scores ScoreKeeper, cfg *config.Config) *GameManager {
	if cfg == nil {
		cfg = &config.Config{FrameRateHz: 60, SessionExpiryMinutes: 30, IdleForfeitSeconds: 120}
	}
	interval := DefaultFrameInterval
	if cfg.FrameRateHz > 0 {
		interval = time.Second / time.Duration(cfg.FrameRateHz)
	}
	return &GameManager{
		sessions:      make(map[string]*Session),
		scores:        scores,
		rdb:           rdb,
		config:        cfg,
		frameInterval: interval,
		newRand:       NewRand,
	}
}

// SetListener wires the transport that renders frames.
func (gm *GameManager) SetListener(l FrameListener) {
	gm.mu.Lock()
	gm.listener = l
	gm.mu.Unlock()
}

func (gm *GameManager) getListener() FrameListener {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return gm.listener
}

// generateToken generates a secure random token
func generateToken(length int) string {
	bytes := make([]byte, length)
	crand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// CreateSession creates a not-yet-started match for playerID. A playerID of
// 0 hosts an anonymous match whose high score is kept in memory only.
func (gm *GameManager) CreateSession(ctx context.Context, playerID int) (*Session, error) {
	now := time.Now()
	s := &Session{
		ID:         "match_" + generateToken(8),
		Token:      generateToken(16),
		PlayerID:   playerID,
		CreatedAt:  now,
		lastActive: now,
	}

	if gm.scores != nil && playerID > 0 {
		best, err := gm.scores.HighScore(ctx, playerID)
		if err != nil {
			return nil, fmt.Errorf("load high score: %w", err)
		}
		s.highScore = best
	}

	s.clock = NewClock(NewMatch(gm.newRand()), sessionLogSink(s))

	gm.mu.Lock()
	gm.sessions[s.Token] = s
	gm.mu.Unlock()

	log.Printf("[MATCH] session %s created for player %d (high_score=%d)", s.ID, playerID, s.highScore)
	return s, nil
}

// GetSessionByToken retrieves a session by its token
func (gm *GameManager) GetSessionByToken(token string) (*Session, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	s, ok := gm.sessions[token]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// GetActiveSessionCount returns the number of hosted sessions.
func (gm *GameManager) GetActiveSessionCount() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.sessions)
}

// StartMatch starts (or restarts after a finish) the session's match and
// launches its tick loop.
func (gm *GameManager) StartMatch(token string) (Snapshot, error) {
	s, err := gm.GetSessionByToken(token)
	if err != nil {
		return Snapshot{}, err
	}
	// the previous loop may still be recording its outcome
	if s.Running() {
		return Snapshot{}, ErrAlreadyInProgress
	}

	var startErr error
	s.clock.Do(func(m *Match) { startErr = m.Start() })
	if startErr != nil {
		return Snapshot{}, startErr
	}
	s.clock.Reset()
	gm.touch(s)

	ctx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.cancel = cancel
	s.running = true
	s.mu.Unlock()

	log.Printf("[MATCH] session %s started", s.ID)
	go gm.runLoop(ctx, s, gen)
	return s.Snapshot(), nil
}

func (gm *GameManager) runLoop(ctx context.Context, s *Session, gen int) {
	defer func() {
		s.mu.Lock()
		if s.gen == gen {
			s.running = false
			if s.cancel != nil {
				s.cancel()
				s.cancel = nil
			}
		}
		s.mu.Unlock()
	}()

	var last Snapshot
	err := s.clock.Run(ctx, gm.frameInterval, func(snap Snapshot, res StepResult) {
		last = snap
		if l := gm.getListener(); l != nil {
			l.OnFrame(s, snap, res)
		}
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warnf("[MATCH] session %s loop stopped: %v", s.ID, err)
		}
		return
	}
	if last.Status == StatusFinished {
		gm.finish(s, last)
	}
}

// finish records the high score and history, then notifies the listener.
func (gm *GameManager) finish(s *Session, snap Snapshot) Outcome {
	out := Outcome{
		Winner:             snap.Winner,
		Score:              snap.Score,
		ChallengeCompleted: snap.ChallengeCompleted,
		Text:               OutcomeText(snap),
		HighScore:          s.HighScore(),
	}

	if gm.scores != nil && s.PlayerID > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		isNew, err := gm.scores.RecordFinalScore(ctx, s.PlayerID, snap.Score.Player)
		if err != nil {
			log.Warnf("[HIGHSCORE] record failed for player %d: %v", s.PlayerID, err)
		}
		out.NewHighScore = isNew

		err = gm.scores.RecordResult(ctx, models.MatchResult{
			PlayerID:           s.PlayerID,
			SessionToken:       s.Token,
			PlayerScore:        snap.Score.Player,
			AIScore:            snap.Score.AI,
			Winner:             string(snap.Winner),
			WellActivations:    snap.WellActivations,
			ChallengeCompleted: snap.ChallengeCompleted,
		})
		if err != nil {
			log.Warnf("[DB] record match result failed for session %s: %v", s.ID, err)
		}
	} else {
		out.NewHighScore = snap.Score.Player > out.HighScore
	}

	if out.NewHighScore {
		s.setHighScore(snap.Score.Player)
		out.HighScore = snap.Score.Player
	}

	log.WithFields(log.Fields{
		"session":   s.ID,
		"winner":    out.Winner,
		"score":     fmt.Sprintf("%d-%d", out.Score.Player, out.Score.AI),
		"challenge": out.ChallengeCompleted,
	}).Info("[MATCH] finished")

	if l := gm.getListener(); l != nil {
		l.OnFinished(s, snap, out)
	}
	return out
}

// SetPaddle moves the player's paddle and counts as activity.
func (gm *GameManager) SetPaddle(token string, x float64) (float64, error) {
	s, err := gm.GetSessionByToken(token)
	if err != nil {
		return 0, err
	}
	gm.touch(s)
	var got float64
	s.clock.Do(func(m *Match) {
		m.SetPlayerPaddle(x)
		got = m.PlayerPaddle
	})
	return got, nil
}

// Touch records player activity on the session.
func (gm *GameManager) Touch(token string) error {
	s, err := gm.GetSessionByToken(token)
	if err != nil {
		return err
	}
	gm.touch(s)
	return nil
}

// touch stamps activity locally and schedules the idle check in redis.
func (gm *GameManager) touch(s *Session) {
	now := time.Now()
	s.touch(now)
	if gm.rdb == nil {
		return
	}
	ctx := context.Background()
	member := idleMember(s.Token)
	forfeitAt := now.Unix() + int64(gm.config.IdleForfeitSeconds)
	gm.rdb.Set(ctx, lastActivePrefix+member, fmt.Sprintf("%d", now.Unix()), 0)
	if err := gm.rdb.ZAdd(ctx, idleForfeitKey, redis.Z{Score: float64(forfeitAt), Member: member}).Err(); err != nil {
		log.Warnf("[IDLE] failed to schedule idle check for %s: %v", s.ID, err)
	}
}

// EndSession stops the session's loop and forgets it.
func (gm *GameManager) EndSession(token, reason string) error {
	gm.mu.Lock()
	s, ok := gm.sessions[token]
	if ok {
		delete(gm.sessions, token)
	}
	gm.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}

	s.stop()
	if gm.rdb != nil {
		ctx := context.Background()
		member := idleMember(token)
		gm.rdb.ZRem(ctx, idleForfeitKey, member)
		gm.rdb.Del(ctx, lastActivePrefix+member)
	}

	log.Printf("[MATCH] session %s ended (%s)", s.ID, reason)
	if l := gm.getListener(); l != nil {
		l.OnEnded(s, reason)
	}
	return nil
}

// StartExpiryChecker ends sessions without input for SessionExpiryMinutes.
func (gm *GameManager) StartExpiryChecker(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := gm.checkExpiredSessions(now); n > 0 {
				log.Printf("[MATCH] expired %d sessions", n)
			}
		}
	}
}

func (gm *GameManager) checkExpiredSessions(now time.Time) int {
	maxAge := time.Duration(gm.config.SessionExpiryMinutes) * time.Minute
	if maxAge <= 0 {
		return 0
	}

	gm.mu.RLock()
	var expired []string
	for token, s := range gm.sessions {
		if now.Sub(s.LastActive()) > maxAge {
			expired = append(expired, token)
		}
	}
	gm.mu.RUnlock()

	n := 0
	for _, token := range expired {
		if gm.EndSession(token, EndReasonExpired) == nil {
			n++
		}
	}
	return n
}

// Shutdown ends every session.
func (gm *GameManager) Shutdown() {
	gm.mu.RLock()
	tokens := make([]string, 0, len(gm.sessions))
	for token := range gm.sessions {
		tokens = append(tokens, token)
	}
	gm.mu.RUnlock()

	for _, token := range tokens {
		gm.EndSession(token, EndReasonClosed)
	}
}

func idleMember(token string) string {
	return "s:" + token
}

// sessionLogSink traces simulation events at debug level.
func sessionLogSink(s *Session) EventSink {
	return EventSinkFunc(func(e Event) {
		if e.Type == EventWellActivated {
			return
		}
		log.WithField("session", s.ID).Debugf("[MATCH] %s %s", e.Type, e.Side)
	})
}
