package players

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/playmatatu/gravitywell/internal/models"
)

const uniqueViolation = "23505"

// PostgresRepository implements Repository with sqlx.
type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, displayName, pinHash string) (*models.Player, error) {
	if !ValidDisplayName(displayName) {
		return nil, ErrInvalidName
	}
	var p models.Player
	err := r.db.GetContext(ctx, &p, `
		INSERT INTO players (display_name, pin_hash, high_score, created_at, updated_at)
		VALUES ($1, $2, 0, NOW(), NOW())
		RETURNING id, display_name, pin_hash, high_score, created_at, updated_at`,
		displayName, pinHash)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("insert player: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT id, display_name, pin_hash, high_score, created_at, updated_at FROM players WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %d: %w", id, err)
	}
	return &p, nil
}

func (r *PostgresRepository) GetByDisplayName(ctx context.Context, displayName string) (*models.Player, error) {
	var p models.Player
	err := r.db.GetContext(ctx, &p, `SELECT id, display_name, pin_hash, high_score, created_at, updated_at FROM players WHERE display_name=$1`, displayName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get player %q: %w", displayName, err)
	}
	return &p, nil
}

func (r *PostgresRepository) UpdateHighScore(ctx context.Context, id, score int) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE players SET high_score=$2, updated_at=NOW() WHERE id=$1 AND high_score < $2`, id, score)
	if err != nil {
		return false, fmt.Errorf("update high score for %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *PostgresRepository) TopHighScores(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var rows []models.LeaderboardEntry
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, display_name, high_score FROM players
		WHERE high_score > 0
		ORDER BY high_score DESC, updated_at ASC
		LIMIT $1`, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows, nil
}

func (r *PostgresRepository) RecordResult(ctx context.Context, m models.MatchResult) error {
	if m.PlayerID == 0 {
		return ErrInvalidResult
	}
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO match_results (player_id, session_token, player_score, ai_score, winner, well_activations, challenge_completed, finished_at)
		VALUES (:player_id, :session_token, :player_score, :ai_score, :winner, :well_activations, :challenge_completed, NOW())`, m)
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecentResults(ctx context.Context, playerID, limit int) ([]models.MatchResult, error) {
	var rows []models.MatchResult
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, player_id, session_token, player_score, ai_score, winner, well_activations, challenge_completed, finished_at
		FROM match_results WHERE player_id=$1
		ORDER BY finished_at DESC LIMIT $2`, playerID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("select match results: %w", err)
	}
	return rows, nil
}
