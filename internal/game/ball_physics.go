package game

import (
	"math"
	"math/rand/v2"
)

// Ball is the ball's physics state.
type Ball struct {
	Position        Vec2    `json:"position" msgpack:"position"`
	Velocity        Vec2    `json:"velocity" msgpack:"velocity"`
	SpeedMultiplier float64 `json:"speed_multiplier" msgpack:"speed_multiplier"` // ramps per tick, reset each round
}

// Paddles holds the horizontal centers of both paddles.
type Paddles struct {
	Player float64
	AI     float64
}

// PhysicsResult is the outcome of one integration step.
type PhysicsResult struct {
	Ball   Ball
	Wells  []GravityWell
	Events []Event
	Scored Side // empty unless the ball crossed a goal line
}

// Integrate advances the ball by one tick. The steps run in a fixed order:
// move, gravity, speed floor, walls, paddles, absolute speed floor, scoring.
// Gravity only shapes the approach; collision responses always win.
//
// When a goal line is crossed the returned Ball is the input ball unchanged;
// resetting the round is the caller's job.
func Integrate(ball Ball, wells []GravityWell, paddles Paddles, rng *rand.Rand) PhysicsResult {
	var res PhysicsResult
	mult := ball.SpeedMultiplier

	pos := ball.Position.Plus(ball.Velocity.Times(mult))

	vel, force := applyGravity(pos, ball.Velocity, wells)
	res.Wells = force.Wells
	if len(force.NewlyActivated) > 0 {
		res.Events = append(res.Events, Event{Type: EventWellActivated, Wells: force.NewlyActivated})
	}

	// Side walls
	if pos.X <= WallMin || pos.X >= WallMax {
		pos.X = clamp(pos.X, WallMin, WallMax)
		vel.X = -vel.X
	}

	// Paddles
	if pos.Y <= AIPaddleLine && math.Abs(pos.X-paddles.AI) < PaddleHalfWidth {
		pos.Y = AIPaddleLine
		vel.X += uniform(rng, -PaddlePerturbation, PaddlePerturbation)
		vel.Y = math.Abs(vel.Y)
		res.Events = append(res.Events, Event{Type: EventBallHitPaddle, Side: SideAI})
	} else if pos.Y >= PlayerPaddleLine && math.Abs(pos.X-paddles.Player) < PaddleHalfWidth {
		pos.Y = PlayerPaddleLine
		vel.X += uniform(rng, -PaddlePerturbation, PaddlePerturbation)
		vel.Y = -math.Abs(vel.Y)
		res.Events = append(res.Events, Event{Type: EventBallHitPaddle, Side: SidePlayer})
	}

	vel = enforceMinSpeed(vel, ball.Velocity, InitialBallSpeed*mult)

	switch {
	case pos.Y <= PlayerGoalLine:
		res.Scored = SidePlayer
	case pos.Y >= AIGoalLine:
		res.Scored = SideAI
	}
	if res.Scored != "" {
		res.Ball = ball
		res.Events = append(res.Events, Event{Type: EventPointScored, Side: res.Scored})
		return res
	}

	res.Ball = Ball{
		Position:        pos,
		Velocity:        vel,
		SpeedMultiplier: mult + BallSpeedIncrement,
	}
	return res
}

// applyGravity adds the field's pull at pos to vel. The result is never
// slower than vel: gravity redirects the ball but cannot brake it.
func applyGravity(pos, vel Vec2, wells []GravityWell) (Vec2, ForceResult) {
	force := ForceAt(pos, wells)
	return enforceMinSpeed(vel.Plus(force.Delta), vel, vel.Magnitude()), force
}

// enforceMinSpeed rescales v up to min. If v has collapsed to (almost) zero
// there is no direction to keep, so fallback's direction is used instead.
func enforceMinSpeed(v, fallback Vec2, min float64) Vec2 {
	speed := v.Magnitude()
	if speed >= min {
		return v
	}
	if speed < minSpeedEpsilon {
		if fallback.Magnitude() < minSpeedEpsilon {
			return v
		}
		return fallback.WithMagnitude(min)
	}
	return v.Times(min / speed)
}
