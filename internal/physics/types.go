package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/config"
)

// Sample is one emitted trajectory point. Body identifies which trajectory
// the point belongs to (0 for the projectile, 0/1 for the two-body run).
type Sample struct {
	Body  int     `json:"body"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	T     float64 `json:"t"`
	Speed float64 `json:"speed"`
}

type BodyState struct {
	Pos mgl64.Vec2 `json:"pos"`
	Vel mgl64.Vec2 `json:"vel"`
}

// Momentum holds per-body momentum vectors and their sum at one instant.
type Momentum struct {
	P1    mgl64.Vec2 `json:"p1"`
	P2    mgl64.Vec2 `json:"p2"`
	Total mgl64.Vec2 `json:"total"`
}

// CollisionEvent captures momentum immediately before and after the most
// recent impulse resolution.
type CollisionEvent struct {
	T      float64  `json:"t"`
	Before Momentum `json:"before"`
	After  Momentum `json:"after"`
}

// State is a self-contained snapshot of a run. Snapshots are copies: the
// engine keeps mutating its internal state after handing one out.
type State struct {
	Bodies    []BodyState     `json:"bodies"`
	T         float64         `json:"t"`
	Contact   bool            `json:"contact,omitempty"`
	Collision *CollisionEvent `json:"collision,omitempty"`
}

// Simulation is one run of a demo variant. Implementations are built fresh
// per start command and never reused; Step must not be called after it has
// reported done.
type Simulation interface {
	// Seed returns the initial sample(s) at t=0.
	Seed() []Sample
	// Step advances the run by one fixed time increment and returns the
	// samples it produced, plus whether a stopping condition was reached.
	Step() ([]Sample, bool)
	// Snapshot returns a copy of the aggregate state.
	Snapshot() State
}

// New builds the Simulation for the given parameters. Params must already
// be clamped.
func New(p config.Params) (Simulation, error) {
	switch p.Variant {
	case config.VariantProjectile:
		return NewProjectile(p), nil
	case config.VariantTwoBody:
		return NewTwoBody(p), nil
	default:
		return nil, fmt.Errorf("unknown variant: %s", p.Variant)
	}
}

func speedOf(v mgl64.Vec2) float64 {
	return v.Len()
}
