package models

import "time"

// Player is a registered account. PINHash never leaves the server.
type Player struct {
	ID          int       `db:"id" json:"id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	PINHash     string    `db:"pin_hash" json:"-"`
	HighScore   int       `db:"high_score" json:"high_score"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MatchResult is one finished match, stored for history.
type MatchResult struct {
	ID                 int       `db:"id" json:"id"`
	PlayerID           int       `db:"player_id" json:"player_id"`
	SessionToken       string    `db:"session_token" json:"-"`
	PlayerScore        int       `db:"player_score" json:"player_score"`
	AIScore            int       `db:"ai_score" json:"ai_score"`
	Winner             string    `db:"winner" json:"winner"`
	WellActivations    int       `db:"well_activations" json:"well_activations"`
	ChallengeCompleted bool      `db:"challenge_completed" json:"challenge_completed"`
	FinishedAt         time.Time `db:"finished_at" json:"finished_at"`
}

// LeaderboardEntry is one row of the high score table.
type LeaderboardEntry struct {
	Rank        int    `db:"-" json:"rank"`
	PlayerID    int    `db:"id" json:"player_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	HighScore   int    `db:"high_score" json:"high_score"`
}
