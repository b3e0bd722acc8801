package game

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultFrameInterval is the host tick used when none is configured (~60Hz).
const DefaultFrameInterval = time.Second / 60

// Clock drives a Match: one Advance per tick, plus a well spawner that fires
// every WellGenerationPeriod of simulated time. Both timers live in the same
// loop, so stopping the loop stops both.
type Clock struct {
	match      *Match
	sink       EventSink
	sinceSpawn time.Duration
	mu         sync.Mutex
}

// NewClock wraps m. sink may be nil.
func NewClock(m *Match, sink EventSink) *Clock {
	return &Clock{match: m, sink: sink}
}

// Tick advances exactly one frame and adds dt to the spawn timer. Events are
// delivered to the sink before Tick returns. Callers that share the match
// with other goroutines should use Run or Do instead.
func (c *Clock) Tick(dt time.Duration) (StepResult, error) {
	res, err := c.match.Advance()
	if err != nil {
		return res, err
	}
	c.dispatch(res.Events)
	if res.Finished {
		c.sinceSpawn = 0
		return res, nil
	}

	c.sinceSpawn += dt
	for c.sinceSpawn >= WellGenerationPeriod {
		c.sinceSpawn -= WellGenerationPeriod
		if err := c.MaybeSpawnWell(); err != nil {
			return res, err
		}
	}
	return res, nil
}

// MaybeSpawnWell fires the well spawner once.
func (c *Clock) MaybeSpawnWell() error {
	return c.match.TickWellSpawner()
}

// Run ticks every frameInterval until the match finishes or ctx is done.
// onFrame, if set, gets a snapshot taken right after each tick.
func (c *Clock) Run(ctx context.Context, frameInterval time.Duration, onFrame func(Snapshot, StepResult)) error {
	if frameInterval <= 0 {
		frameInterval = DefaultFrameInterval
	}
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.mu.Lock()
			res, err := c.Tick(frameInterval)
			snap := c.match.Snapshot()
			c.mu.Unlock()
			if err != nil {
				return err
			}
			if onFrame != nil {
				onFrame(snap, res)
			}
			if snap.Status != StatusInProgress {
				return nil
			}
		}
	}
}

// Do runs fn with exclusive access to the match, between ticks.
func (c *Clock) Do(fn func(m *Match)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.match)
}

// Snapshot returns the match state between ticks.
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.match.Snapshot()
}

// Reset clears the spawn timer, e.g. before a restart.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sinceSpawn = 0
}

// dispatch hands events to the sink. A failing collaborator must never take
// the simulation down with it.
func (c *Clock) dispatch(events []Event) {
	if c.sink == nil {
		return
	}
	for _, e := range events {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[CLOCK] event sink panicked on %s: %v", e.Type, r)
				}
			}()
			c.sink.HandleEvent(e)
		}()
	}
}
