package game

import (
	"errors"
	"math/rand/v2"
)

var (
	// ErrNotInProgress is returned when a command needs a running match.
	ErrNotInProgress = errors.New("match is not in progress")
	// ErrAlreadyInProgress is returned by Start on a running match.
	ErrAlreadyInProgress = errors.New("match is already in progress")
)

// Score holds both sides' points. Both only ever go up within a match.
type Score struct {
	Player int `json:"player" msgpack:"player"`
	AI     int `json:"ai" msgpack:"ai"`
}

// Match is the complete state of one game against the AI. It is not safe
// for concurrent use; the host that drives it serializes access.
type Match struct {
	Ball            Ball
	PlayerPaddle    float64
	AIPaddle        float64
	Score           Score
	Wells           []GravityWell
	Status          GameStatus
	Winner          Side
	Tick            uint64
	WellActivations int

	field *GravityField
	rng   *rand.Rand
}

// StepResult describes what happened during one Advance.
type StepResult struct {
	Events   []Event
	Scored   Side
	Finished bool // true only on the tick the match ended
}

// NewMatch creates a match that has not started yet. All randomness
// (well placement, serves, paddle spin) comes from rng.
func NewMatch(rng *rand.Rand) *Match {
	if rng == nil {
		rng = NewRand()
	}
	return &Match{
		Ball:         Ball{Position: Vec2{X: FieldCenter, Y: FieldCenter}, SpeedMultiplier: 1},
		PlayerPaddle: FieldCenter,
		AIPaddle:     FieldCenter,
		Status:       StatusNotStarted,
		field:        NewGravityField(rng),
		rng:          rng,
	}
}

// Start begins a match from NotStarted or Finished. Score, paddles and wells
// are reset and the ball is served in a random vertical direction.
func (m *Match) Start() error {
	if m.Status == StatusInProgress {
		return ErrAlreadyInProgress
	}

	m.Score = Score{}
	m.Winner = ""
	m.Tick = 0
	m.WellActivations = 0
	m.PlayerPaddle = FieldCenter
	m.AIPaddle = FieldCenter
	m.Wells = m.field.Generate()

	vy := InitialBallSpeed
	if m.rng.IntN(2) == 0 {
		vy = -InitialBallSpeed
	}
	m.serve(vy)

	m.Status = StatusInProgress
	return nil
}

// Advance runs one frame: physics, AI paddle, then scoring. A point always
// re-serves the ball, including the point that ends the match.
func (m *Match) Advance() (StepResult, error) {
	if m.Status != StatusInProgress {
		return StepResult{}, ErrNotInProgress
	}
	m.Tick++

	targetX := m.Ball.Position.X
	phys := Integrate(m.Ball, m.Wells, Paddles{Player: m.PlayerPaddle, AI: m.AIPaddle}, m.rng)
	m.Wells = phys.Wells
	m.AIPaddle = AIStep(m.AIPaddle, targetX)

	res := StepResult{Events: phys.Events, Scored: phys.Scored}
	for _, e := range phys.Events {
		if e.Type == EventWellActivated {
			m.WellActivations += len(e.Wells)
		}
	}

	if phys.Scored == "" {
		m.Ball = phys.Ball
		return res, nil
	}

	if phys.Scored == SidePlayer {
		m.Score.Player++
	} else {
		m.Score.AI++
	}
	if m.Score.Player >= WinningScore || m.Score.AI >= WinningScore {
		m.Status = StatusFinished
		m.Winner = phys.Scored
		res.Finished = true
		res.Events = append(res.Events, Event{Type: EventMatchFinished, Side: phys.Scored})
	}
	m.resetRound(phys.Scored)
	return res, nil
}

// resetRound re-serves from the center and replaces the whole well set.
// After a player point the serve heads toward the player (+y); after an AI
// point it heads toward the AI (-y).
func (m *Match) resetRound(scorer Side) {
	vy := InitialBallSpeed
	if scorer == SideAI {
		vy = -InitialBallSpeed
	}
	m.serve(vy)
	m.Wells = m.field.Generate()
}

func (m *Match) serve(vy float64) {
	m.Ball = Ball{
		Position:        Vec2{X: FieldCenter, Y: FieldCenter},
		Velocity:        Vec2{X: uniform(m.rng, -ServeSpreadX, ServeSpreadX), Y: vy},
		SpeedMultiplier: 1,
	}
}

// SetPlayerPaddle moves the player's paddle, clamped to the playable range.
func (m *Match) SetPlayerPaddle(x float64) {
	m.PlayerPaddle = ClampPaddle(x)
}

// TickWellSpawner adds a well if the field is below its cap. It is driven by
// a timer that is independent of Advance.
func (m *Match) TickWellSpawner() error {
	if m.Status != StatusInProgress {
		return ErrNotInProgress
	}
	m.Wells = m.field.MaybeSpawn(m.Wells)
	return nil
}

// WellState is the render-facing part of a well.
type WellState struct {
	Position Vec2 `json:"position" msgpack:"position"`
	Active   bool `json:"active" msgpack:"active"`
}

// Snapshot is the read model handed to renderers after every Advance.
type Snapshot struct {
	Ball               Vec2        `json:"ball" msgpack:"ball"`
	PlayerPaddle       float64     `json:"player_paddle" msgpack:"player_paddle"`
	AIPaddle           float64     `json:"ai_paddle" msgpack:"ai_paddle"`
	Score              Score       `json:"score" msgpack:"score"`
	Wells              []WellState `json:"wells" msgpack:"wells"`
	Status             GameStatus  `json:"status" msgpack:"status"`
	Winner             Side        `json:"winner,omitempty" msgpack:"winner,omitempty"`
	Tick               uint64      `json:"tick" msgpack:"tick"`
	WellActivations    int         `json:"well_activations" msgpack:"well_activations"`
	ChallengeCompleted bool        `json:"challenge_completed" msgpack:"challenge_completed"`
}

// Snapshot copies the current state.
func (m *Match) Snapshot() Snapshot {
	wells := make([]WellState, len(m.Wells))
	for i, w := range m.Wells {
		wells[i] = WellState{Position: w.Position, Active: w.Active}
	}
	s := Snapshot{
		Ball:            m.Ball.Position,
		PlayerPaddle:    m.PlayerPaddle,
		AIPaddle:        m.AIPaddle,
		Score:           m.Score,
		Wells:           wells,
		Status:          m.Status,
		Winner:          m.Winner,
		Tick:            m.Tick,
		WellActivations: m.WellActivations,
	}
	s.ChallengeCompleted = EvaluateChallenge(s)
	return s
}
