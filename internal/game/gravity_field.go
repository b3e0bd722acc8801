package game

import (
	"math"
	"math/rand/v2"
)

// GravityWell is a point attractor that bends the ball's path inside its radius.
type GravityWell struct {
	Position Vec2    `json:"position" msgpack:"position"`
	Strength float64 `json:"strength" msgpack:"strength"`
	Active   bool    `json:"active" msgpack:"active"` // ball inside the radius on the last query
}

// GravityField creates wells and computes their pull on the ball.
type GravityField struct {
	rng *rand.Rand
}

// NewGravityField creates a field drawing from rng.
func NewGravityField(rng *rand.Rand) *GravityField {
	return &GravityField{rng: rng}
}

// Generate returns a fresh set of MinGravityWells..MaxGravityWells wells.
func (f *GravityField) Generate() []GravityWell {
	n := MinGravityWells + f.rng.IntN(MaxGravityWells-MinGravityWells+1)
	wells := make([]GravityWell, 0, MaxGravityWells)
	for i := 0; i < n; i++ {
		wells = append(wells, f.newWell())
	}
	return wells
}

// MaybeSpawn appends exactly one well unless the set is already at the cap.
// The input slice is never modified.
func (f *GravityField) MaybeSpawn(wells []GravityWell) []GravityWell {
	if len(wells) >= MaxGravityWells {
		return wells
	}
	out := make([]GravityWell, len(wells), len(wells)+1)
	copy(out, wells)
	return append(out, f.newWell())
}

// newWell samples a position outside the serve zone around the center.
// A point is rejected only when it is inside the exclusion band on both axes.
func (f *GravityField) newWell() GravityWell {
	var x, y float64
	for {
		x = f.rng.Float64() * 100
		y = f.rng.Float64() * 100
		if !InServeZone(Vec2{X: x, Y: y}) {
			break
		}
	}
	return GravityWell{
		Position: Vec2{X: x, Y: y},
		Strength: uniform(f.rng, GravityStrength/2, GravityStrength*1.5),
	}
}

// InServeZone reports whether p lies in the square around the center that
// wells may not occupy.
func InServeZone(p Vec2) bool {
	return math.Abs(p.X-FieldCenter) < CenterExclusionRadius && math.Abs(p.Y-FieldCenter) < CenterExclusionRadius
}

// ForceResult is the outcome of querying the field at one position.
type ForceResult struct {
	Delta          Vec2          // velocity change toward active wells
	Wells          []GravityWell // copy of the input with Active recomputed
	NewlyActivated []int         // wells that went inactive -> active in this query
}

// ForceAt sums the pull of every well within GravityWellRadius of pos.
// A well exactly at pos is active but contributes no force.
func ForceAt(pos Vec2, wells []GravityWell) ForceResult {
	res := ForceResult{Wells: make([]GravityWell, len(wells))}
	for i, w := range wells {
		toWell := w.Position.Minus(pos)
		distance := toWell.Magnitude()
		if distance >= GravityWellRadius {
			w.Active = false
			res.Wells[i] = w
			continue
		}
		if distance > 0 {
			res.Delta = res.Delta.Plus(toWell.Times(w.Strength / distance))
		}
		if !w.Active {
			res.NewlyActivated = append(res.NewlyActivated, i)
		}
		w.Active = true
		res.Wells[i] = w
	}
	return res
}
