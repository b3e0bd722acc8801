package players

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/playmatatu/gravitywell/internal/models"
)

// MemoryRepository keeps players in process memory.
type MemoryRepository struct {
	players map[int]*models.Player
	results []models.MatchResult
	nextID  int
	mu      sync.RWMutex
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{players: make(map[int]*models.Player), nextID: 1}
}

func (r *MemoryRepository) Create(_ context.Context, displayName, pinHash string) (*models.Player, error) {
	if !ValidDisplayName(displayName) {
		return nil, ErrInvalidName
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.players {
		if p.DisplayName == displayName {
			return nil, ErrNameTaken
		}
	}
	now := time.Now()
	p := &models.Player{ID: r.nextID, DisplayName: displayName, PINHash: pinHash, CreatedAt: now, UpdatedAt: now}
	r.players[p.ID] = p
	r.nextID++
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryRepository) GetByDisplayName(_ context.Context, displayName string) (*models.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.players {
		if p.DisplayName == displayName {
			cp := *p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) UpdateHighScore(_ context.Context, id, score int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[id]
	if !ok {
		return false, ErrNotFound
	}
	if score <= p.HighScore {
		return false, nil
	}
	p.HighScore = score
	p.UpdatedAt = time.Now()
	return true, nil
}

func (r *MemoryRepository) TopHighScores(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	r.mu.RLock()
	var all []models.Player
	for _, p := range r.players {
		if p.HighScore > 0 {
			all = append(all, *p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].HighScore != all[j].HighScore {
			return all[i].HighScore > all[j].HighScore
		}
		return all[i].UpdatedAt.Before(all[j].UpdatedAt)
	})

	limit = clampLimit(limit)
	if len(all) > limit {
		all = all[:limit]
	}
	out := make([]models.LeaderboardEntry, len(all))
	for i, p := range all {
		out[i] = models.LeaderboardEntry{Rank: i + 1, PlayerID: p.ID, DisplayName: p.DisplayName, HighScore: p.HighScore}
	}
	return out, nil
}

func (r *MemoryRepository) RecordResult(_ context.Context, m models.MatchResult) error {
	if m.PlayerID == 0 {
		return ErrInvalidResult
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	m.ID = len(r.results) + 1
	m.FinishedAt = time.Now()
	r.results = append(r.results, m)
	return nil
}

func (r *MemoryRepository) RecentResults(_ context.Context, playerID, limit int) ([]models.MatchResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	limit = clampLimit(limit)
	var out []models.MatchResult
	for i := len(r.results) - 1; i >= 0 && len(out) < limit; i-- {
		if r.results[i].PlayerID == playerID {
			out = append(out, r.results[i])
		}
	}
	return out, nil
}
