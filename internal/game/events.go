package game

// EventType names a notification the simulation emits for audio/UI collaborators.
type EventType string

const (
	EventBallHitPaddle EventType = "BALL_HIT_PADDLE"
	EventPointScored   EventType = "POINT_SCORED"
	EventWellActivated EventType = "WELL_ACTIVATED"
	EventMatchFinished EventType = "MATCH_FINISHED"
)

// Event is a fire-and-forget notification. Each type fires at most once per tick.
type Event struct {
	Type  EventType `json:"type" msgpack:"type"`
	Side  Side      `json:"side,omitempty" msgpack:"side,omitempty"`   // paddle that was hit, scorer, or winner
	Wells []int     `json:"wells,omitempty" msgpack:"wells,omitempty"` // indices of newly activated wells
}

// EventSink receives simulation events. Implementations must not block.
type EventSink interface {
	HandleEvent(Event)
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(Event)

func (f EventSinkFunc) HandleEvent(e Event) {
	f(e)
}

// hasEvent reports whether events contains an event of type t.
func hasEvent(events []Event, t EventType) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
