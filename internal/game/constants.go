package game

import "time"

// Physics and playfield constants. All coordinates are percentages of the
// play area on both axes, so the field is 100x100.
const (
	WinningScore          = 5
	MinGravityWells       = 2
	MaxGravityWells       = 4
	GravityWellRadius     = 10.0
	GravityStrength       = 0.1
	WellGenerationPeriod  = 5 * time.Second // simulated time, not wall clock
	CenterExclusionRadius = 15.0
	BallSpeedIncrement    = 0.0001 // per tick
	InitialBallSpeed      = 0.75

	FieldCenter = 50.0

	PaddleMin       = 15.0
	PaddleMax       = 85.0
	PaddleHalfWidth = 15.0

	WallMin = 2.0
	WallMax = 98.0

	AIPaddleLine     = 5.0
	PlayerPaddleLine = 95.0

	PlayerGoalLine = 2.0  // ball at or above this y scores for the player
	AIGoalLine     = 98.0 // ball at or below this y scores for the AI

	PaddlePerturbation = 0.3
	ServeSpreadX       = 0.45
	AIMaxStep          = 0.5

	// minSpeedEpsilon guards rescaling against a velocity that collapsed to zero.
	minSpeedEpsilon = 1e-9
)
