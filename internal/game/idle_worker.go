package game

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// GameEventsChannel carries session lifecycle events for other consumers.
const GameEventsChannel = "game_events"

// StartIdleWorker ends sessions whose player stopped sending input, using the
// idle_forfeit sorted set that every paddle input refreshes.
func StartIdleWorker(ctx context.Context, gm *GameManager, rdb *redis.Client, cfg *config.Config) {
	if gm == nil || rdb == nil || cfg == nil {
		log.Println("[IDLE] Redis or config missing; idle worker not started")
		return
	}

	poll := time.Duration(cfg.IdleWorkerPollInterval) * time.Second
	if poll <= 0 {
		poll = 5 * time.Second
	}

	log.Println("[IDLE] Idle worker started")
	go func() {
		ticker := time.NewTicker(poll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[IDLE] Idle worker stopping")
				return
			case now := <-ticker.C:
				processIdleSessions(ctx, gm, rdb, cfg, now)
			}
		}
	}()
}

func processIdleSessions(ctx context.Context, gm *GameManager, rdb *redis.Client, cfg *config.Config, now time.Time) {
	members, err := rdb.ZRangeByScore(ctx, idleForfeitKey, &redis.ZRangeBy{Min: "-inf", Max: fmt.Sprintf("%d", now.Unix())}).Result()
	if err != nil {
		log.Printf("[IDLE] Failed to fetch idle sessions: %v", err)
		return
	}

	for _, m := range members {
		// only the worker that removes the member acts on it
		if removed, _ := rdb.ZRem(ctx, idleForfeitKey, m).Result(); removed == 0 {
			continue
		}
		token := parseMember(m)
		if token == "" {
			continue
		}

		last, _ := rdb.Get(ctx, lastActivePrefix+m).Result()
		lastTs, _ := strconv.ParseInt(last, 10, 64)
		if !idleExpired(lastTs, now, cfg.IdleForfeitSeconds) {
			continue
		}

		s, err := gm.GetSessionByToken(token)
		if err != nil {
			continue
		}
		log.Printf("[IDLE] Ending session %s due to inactivity", s.ID)
		snap := s.Snapshot()
		if err := gm.EndSession(token, EndReasonIdle); err != nil {
			continue
		}

		payload := map[string]interface{}{
			"type":        "session_idle",
			"token":       token,
			"match_id":    s.ID,
			"player_id":   s.PlayerID,
			"final_score": snap.Score,
			"message":     "Match ended due to inactivity",
		}
		b, _ := json.Marshal(payload)
		if n, err := rdb.Publish(ctx, GameEventsChannel, b).Result(); err != nil {
			log.Printf("[IDLE] publish session_idle failed: session=%s err=%v", s.ID, err)
		} else {
			log.Printf("[IDLE] published session_idle: session=%s subscribers=%d", s.ID, n)
		}
	}
}

// idleExpired reports whether the last activity at lastTs (unix seconds) is
// at least forfeitSeconds before now.
func idleExpired(lastTs int64, now time.Time, forfeitSeconds int) bool {
	return now.Unix()-lastTs >= int64(forfeitSeconds)
}

// parseMember expects member format s:<token>
func parseMember(m string) string {
	token, ok := strings.CutPrefix(m, "s:")
	if !ok || token == "" {
		return ""
	}
	return token
}
