package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/gravitywell/internal/config"
	"github.com/playmatatu/gravitywell/internal/game"
)

// GetConfig returns the read-only physics constants a client needs to render.
func GetConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"frame_rate_hz":            cfg.FrameRateHz,
			"winning_score":            game.WinningScore,
			"min_gravity_wells":        game.MinGravityWells,
			"max_gravity_wells":        game.MaxGravityWells,
			"gravity_well_radius":      game.GravityWellRadius,
			"gravity_strength":         game.GravityStrength,
			"well_generation_seconds":  game.WellGenerationPeriod.Seconds(),
			"center_exclusion_radius":  game.CenterExclusionRadius,
			"ball_speed_increment":     game.BallSpeedIncrement,
			"initial_ball_speed":       game.InitialBallSpeed,
			"paddle_half_width":        game.PaddleHalfWidth,
			"paddle_min":               game.PaddleMin,
			"paddle_max":               game.PaddleMax,
			"ai_paddle_line":           game.AIPaddleLine,
			"player_paddle_line":       game.PlayerPaddleLine,
			"challenge_min_activation": game.ChallengeMinActivations,
		})
	}
}

// GetChallenge returns the daily challenge.
func GetChallenge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"challenge":       game.DailyChallenge,
		"min_activations": game.ChallengeMinActivations,
		"winning_score":   game.WinningScore,
	})
}
