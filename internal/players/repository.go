// Package players stores registered accounts, their high scores and match history.
package players

import (
	"context"
	"errors"

	"github.com/playmatatu/gravitywell/internal/models"
)

var (
	ErrNotFound      = errors.New("player not found")
	ErrNameTaken     = errors.New("display name already taken")
	ErrInvalidName   = errors.New("display name must be 3-32 characters")
	ErrInvalidResult = errors.New("match result needs a player")
)

// Repository is the persistence boundary for players. Postgres backs it in
// the server; the in-memory version backs handler and service tests.
type Repository interface {
	Create(ctx context.Context, displayName, pinHash string) (*models.Player, error)
	GetByID(ctx context.Context, id int) (*models.Player, error)
	GetByDisplayName(ctx context.Context, displayName string) (*models.Player, error)
	// UpdateHighScore stores score only if it beats the current high score and
	// reports whether it did.
	UpdateHighScore(ctx context.Context, id, score int) (bool, error)
	TopHighScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
	RecordResult(ctx context.Context, r models.MatchResult) error
	RecentResults(ctx context.Context, playerID, limit int) ([]models.MatchResult, error)
}

// ValidDisplayName reports whether name is acceptable for registration.
func ValidDisplayName(name string) bool {
	n := len([]rune(name))
	return n >= 3 && n <= 32
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 10
	}
	if limit > 100 {
		return 100
	}
	return limit
}
