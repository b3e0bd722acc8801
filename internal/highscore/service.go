// Package highscore keeps each player's best score and the global leaderboard.
package highscore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/playmatatu/gravitywell/internal/models"
	"github.com/playmatatu/gravitywell/internal/players"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	// LeaderboardKey is the redis sorted set mirroring players.high_score.
	LeaderboardKey = "leaderboard:highscores"
	// EventsChannel carries Event payloads whenever a player beats their best.
	EventsChannel = "highscore_events"
)

// Event is published on EventsChannel.
type Event struct {
	Type     string    `json:"type"`
	PlayerID int       `json:"player_id"`
	Score    int       `json:"score"`
	At       time.Time `json:"at"`
}

// Service stores high scores in the player repository and mirrors them into
// redis. A nil redis client disables the mirror and the pubsub event.
type Service struct {
	repo players.Repository
	rdb  *redis.Client
}

func NewService(repo players.Repository, rdb *redis.Client) *Service {
	return &Service{repo: repo, rdb: rdb}
}

// HighScore returns the player's stored best.
func (s *Service) HighScore(ctx context.Context, playerID int) (int, error) {
	p, err := s.repo.GetByID(ctx, playerID)
	if err != nil {
		return 0, err
	}
	return p.HighScore, nil
}

// RecordFinalScore saves score if it is a new best and reports whether it was.
func (s *Service) RecordFinalScore(ctx context.Context, playerID, score int) (bool, error) {
	updated, err := s.repo.UpdateHighScore(ctx, playerID, score)
	if err != nil || !updated {
		return false, err
	}

	log.Printf("[HIGHSCORE] player %d new high score %d", playerID, score)
	if s.rdb == nil {
		return true, nil
	}

	member := strconv.Itoa(playerID)
	if err := s.rdb.ZAddGT(ctx, LeaderboardKey, redis.Z{Score: float64(score), Member: member}).Err(); err != nil {
		log.Warnf("[HIGHSCORE] leaderboard mirror failed for player %d: %v", playerID, err)
	}

	payload, _ := json.Marshal(Event{Type: "high_score", PlayerID: playerID, Score: score, At: time.Now().UTC()})
	if n, err := s.rdb.Publish(ctx, EventsChannel, payload).Result(); err != nil {
		log.Warnf("[HIGHSCORE] publish failed for player %d: %v", playerID, err)
	} else {
		log.Debugf("[HIGHSCORE] published to %d subscribers", n)
	}
	return true, nil
}

// RecordResult appends a finished match to the player's history.
func (s *Service) RecordResult(ctx context.Context, r models.MatchResult) error {
	return s.repo.RecordResult(ctx, r)
}

// RecentResults lists the player's latest matches, newest first.
func (s *Service) RecentResults(ctx context.Context, playerID, limit int) ([]models.MatchResult, error) {
	return s.repo.RecentResults(ctx, playerID, limit)
}

// Leaderboard returns the top scores, from redis when available and the
// repository otherwise.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if s.rdb != nil {
		entries, err := s.leaderboardFromRedis(ctx, limit)
		if err == nil && len(entries) > 0 {
			return entries, nil
		}
		if err != nil {
			log.Warnf("[HIGHSCORE] redis leaderboard unavailable, using database: %v", err)
		}
	}
	return s.repo.TopHighScores(ctx, limit)
}

func (s *Service) leaderboardFromRedis(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	zs, err := s.rdb.ZRevRangeWithScores(ctx, LeaderboardKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", LeaderboardKey, err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, _ := z.Member.(string)
		id, err := strconv.Atoi(member)
		if err != nil {
			continue
		}
		e := models.LeaderboardEntry{Rank: len(entries) + 1, PlayerID: id, HighScore: int(z.Score)}
		if p, err := s.repo.GetByID(ctx, id); err == nil {
			e.DisplayName = p.DisplayName
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Rebuild repopulates the redis leaderboard from the repository, e.g. after
// a redis flush.
func (s *Service) Rebuild(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}
	top, err := s.repo.TopHighScores(ctx, 100)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		return nil
	}
	zs := make([]redis.Z, len(top))
	for i, e := range top {
		zs[i] = redis.Z{Score: float64(e.HighScore), Member: strconv.Itoa(e.PlayerID)}
	}
	if err := s.rdb.ZAdd(ctx, LeaderboardKey, zs...).Err(); err != nil {
		return fmt.Errorf("rebuild leaderboard: %w", err)
	}
	log.Printf("[HIGHSCORE] leaderboard rebuilt with %d entries", len(zs))
	return nil
}
