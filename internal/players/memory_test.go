package players

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/playmatatu/gravitywell/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryCreate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	p, err := repo.Create(ctx, "alice", "hash")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ID)
	assert.Zero(t, p.HighScore)

	_, err = repo.Create(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = repo.Create(ctx, "al", "hash")
	assert.ErrorIs(t, err, ErrInvalidName)

	got, err := repo.GetByDisplayName(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = repo.GetByID(ctx, 42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryHighScoreOnlyGoesUp(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	p, err := repo.Create(ctx, "alice", "hash")
	require.NoError(t, err)

	updated, err := repo.UpdateHighScore(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.True(t, updated)

	updated, err = repo.UpdateHighScore(ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, updated, "ties do not count")

	updated, err = repo.UpdateHighScore(ctx, p.ID, 1)
	require.NoError(t, err)
	assert.False(t, updated)

	got, _ := repo.GetByID(ctx, p.ID)
	assert.Equal(t, 3, got.HighScore)

	_, err = repo.UpdateHighScore(ctx, 99, 5)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryLeaderboard(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for name, score := range map[string]int{"alice": 4, "bobby": 5, "carol": 0, "dave1": 2} {
		p, err := repo.Create(ctx, name, "hash")
		require.NoError(t, err)
		if score > 0 {
			_, err = repo.UpdateHighScore(ctx, p.ID, score)
			require.NoError(t, err)
		}
	}

	top, err := repo.TopHighScores(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "bobby", top[0].DisplayName)
	assert.Equal(t, 1, top[0].Rank)
	assert.Equal(t, "alice", top[1].DisplayName)

	all, err := repo.TopHighScores(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3, "players without a score are not ranked")
}

// Run with -race: leaderboard reads must not observe in-place score writes.
func TestMemoryRepositoryLeaderboardWhileScoring(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	for i := 0; i < 5; i++ {
		_, err := repo.Create(ctx, fmt.Sprintf("player%d", i), "hash")
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			_, _ = repo.UpdateHighScore(ctx, i%5+1, i)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 2000; i++ {
			top, err := repo.TopHighScores(ctx, 5)
			if err != nil {
				t.Error(err)
				return
			}
			for j := 1; j < len(top); j++ {
				if top[j].HighScore > top[j-1].HighScore {
					t.Errorf("leaderboard out of order: %+v", top)
					return
				}
			}
		}
	}()
	wg.Wait()

	top, err := repo.TopHighScores(ctx, 5)
	require.NoError(t, err)
	require.Len(t, top, 5)
	assert.Equal(t, 1999, top[0].HighScore)
}

func TestMemoryRepositoryResults(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()

	assert.ErrorIs(t, repo.RecordResult(ctx, models.MatchResult{}), ErrInvalidResult)

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.RecordResult(ctx, models.MatchResult{PlayerID: 1, PlayerScore: i, AIScore: 5, Winner: "ai"}))
	}
	require.NoError(t, repo.RecordResult(ctx, models.MatchResult{PlayerID: 2, PlayerScore: 5, Winner: "player"}))

	got, err := repo.RecentResults(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].PlayerScore, "newest first")
	assert.Equal(t, 1, got[1].PlayerScore)
}
