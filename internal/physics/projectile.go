package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/dynamo"
	"github.com/san-kum/physlab/internal/integrators"
)

// interpEps guards interpolation denominators that can collapse to zero.
const interpEps = 1e-12

// dragSystem is the quadratic-drag ODE for a single body. State layout is
// (x, y, vx, vy). Wind is a horizontal bulk air velocity; drag acts on the
// velocity relative to the air.
type dragSystem struct {
	mass    float64
	gravity float64
	wind    float64
	k       float64 // 0.5 * rho * Cd * A
}

var _ dynamo.Hamiltonian = (*dragSystem)(nil)

func (d *dragSystem) StateDim() int { return 4 }

func (d *dragSystem) Derive(x dynamo.State, t float64) dynamo.State {
	vx, vy := x[2], x[3]
	relX := vx - d.wind
	relY := vy
	mag := math.Hypot(relX, relY)
	km := d.k / d.mass
	return dynamo.State{
		vx,
		vy,
		-km * mag * relX,
		-d.gravity - km*mag*relY,
	}
}

// Energy reports kinetic plus potential energy; with drag disabled it is
// conserved up to integration error.
func (d *dragSystem) Energy(x dynamo.State) float64 {
	ke := 0.5 * d.mass * (x[2]*x[2] + x[3]*x[3])
	pe := d.mass * d.gravity * x[1]
	return ke + pe
}

// Projectile advances a single drag-affected body with RK4 until it
// crosses y=0 going down or runs out of simulated time. The landing sample
// is linearly interpolated to sit exactly on the ground.
type Projectile struct {
	dyn    *dragSystem
	integ  *integrators.RK4
	x      dynamo.State
	t      float64
	dt     float64
	maxT   float64
	steps  int
	landed bool
	done   bool
}

func NewProjectile(p config.Params) *Projectile {
	angle := p.LaunchAngle * math.Pi / 180
	return &Projectile{
		dyn: &dragSystem{
			mass:    p.Mass,
			gravity: p.Gravity,
			wind:    p.Wind,
			k:       0.5 * p.AirDensity * p.DragCoeff * p.CrossArea,
		},
		integ: integrators.NewRK4(),
		x: dynamo.State{
			p.X0,
			p.Y0,
			p.LaunchSpeed * math.Cos(angle),
			p.LaunchSpeed * math.Sin(angle),
		},
		dt:   p.Dt,
		maxT: p.MaxDuration,
	}
}

func (s *Projectile) sample() Sample {
	return Sample{
		X:     s.x[0],
		Y:     s.x[1],
		T:     s.t,
		Speed: math.Hypot(s.x[2], s.x[3]),
	}
}

func (s *Projectile) Seed() []Sample {
	return []Sample{s.sample()}
}

func (s *Projectile) Step() ([]Sample, bool) {
	if s.done {
		return nil, true
	}

	prev := s.x.Clone()
	prevT := s.t
	s.x = s.integ.Step(s.dyn, s.x, s.t, s.dt)
	s.t += s.dt
	s.steps++

	if !s.x.IsValid() {
		// The run owner contains this; see the tick recovery in engine.
		panic(dynamo.StepError{
			Time:    s.t,
			Step:    s.steps,
			Message: "state diverged to non-finite values",
		})
	}

	if prev[1] >= 0 && s.x[1] < 0 {
		// Crossed the ground inside this step: back up to the exact
		// crossing instant instead of emitting a below-ground point.
		denom := prev[1] - s.x[1]
		if denom < interpEps {
			denom = interpEps
		}
		alpha := prev[1] / denom
		for i := range s.x {
			s.x[i] = prev[i] + alpha*(s.x[i]-prev[i])
		}
		s.x[1] = 0
		s.t = prevT + alpha*s.dt
		s.landed = true
		s.done = true
		return []Sample{s.sample()}, true
	}

	if s.t >= s.maxT {
		s.done = true
		return []Sample{s.sample()}, true
	}

	return []Sample{s.sample()}, false
}

func (s *Projectile) Snapshot() State {
	return State{
		Bodies: []BodyState{{
			Pos: mgl64.Vec2{s.x[0], s.x[1]},
			Vel: mgl64.Vec2{s.x[2], s.x[3]},
		}},
		T: s.t,
	}
}

// Landed reports whether the run ended on ground contact rather than on
// the duration cap.
func (s *Projectile) Landed() bool { return s.landed }
