package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/physlab/internal/config"
)

const (
	// distEps floors a degenerate center-to-center distance so the
	// impulse projection never divides by zero.
	distEps = 1e-9
	// contactNudge is the slice of simulated time both bodies travel
	// along their new velocities right after a resolved collision, so
	// the overlap test on the next evaluation does not re-trigger.
	// A heuristic, not a full contact solver: a very high closing speed
	// with a large dt can still tunnel through the debounce window.
	contactNudge = 1e-4
)

type twoBodySpec struct {
	mass   float64
	radius float64
}

// TwoBody advances two circles with constant velocity, reflecting them off
// a fixed box and resolving circle-circle overlap with an elastic impulse.
// Within one step the order is: advance, reflect, resolve, then recompute
// the contact flag.
type TwoBody struct {
	spec   [2]twoBodySpec
	pos    [2]mgl64.Vec2
	vel    [2]mgl64.Vec2
	bounds config.Box
	t      float64
	dt     float64
	maxT   float64

	contact bool
	last    *CollisionEvent
	done    bool
}

func NewTwoBody(p config.Params) *TwoBody {
	return &TwoBody{
		spec: [2]twoBodySpec{
			{mass: p.Body1.Mass, radius: p.Body1.Radius},
			{mass: p.Body2.Mass, radius: p.Body2.Radius},
		},
		pos: [2]mgl64.Vec2{
			{p.Body1.X, p.Body1.Y},
			{p.Body2.X, p.Body2.Y},
		},
		vel: [2]mgl64.Vec2{
			{p.Body1.VX, p.Body1.VY},
			{p.Body2.VX, p.Body2.VY},
		},
		bounds: p.Bounds,
		dt:     p.Dt,
		maxT:   p.MaxDuration,
	}
}

func (s *TwoBody) sample(i int) Sample {
	return Sample{
		Body:  i,
		X:     s.pos[i][0],
		Y:     s.pos[i][1],
		T:     s.t,
		Speed: speedOf(s.vel[i]),
	}
}

func (s *TwoBody) Seed() []Sample {
	return []Sample{s.sample(0), s.sample(1)}
}

func (s *TwoBody) Step() ([]Sample, bool) {
	if s.done {
		return nil, true
	}

	prev := s.pos
	prevDist := prev[0].Sub(prev[1]).Len()

	for i := range s.pos {
		s.pos[i] = s.pos[i].Add(s.vel[i].Mul(s.dt))
	}
	s.t += s.dt

	for i := range s.pos {
		s.reflect(i)
	}

	rsum := s.spec[0].radius + s.spec[1].radius
	dist := s.pos[0].Sub(s.pos[1]).Len()
	if dist <= rsum && !s.contact {
		s.resolve(prev, prevDist, rsum, dist)
	}
	if s.pos[0].Sub(s.pos[1]).Len() > rsum {
		s.contact = false
	}

	if s.t >= s.maxT {
		s.done = true
		return []Sample{s.sample(0), s.sample(1)}, true
	}
	return []Sample{s.sample(0), s.sample(1)}, false
}

// reflect clamps body i to the box and mirrors the wall-perpendicular
// velocity component. Magnitude is preserved; this is a mirror, not a
// damped bounce.
func (s *TwoBody) reflect(i int) {
	r := s.spec[i].radius
	if s.pos[i][0]-r < s.bounds.XMin {
		s.pos[i][0] = s.bounds.XMin + r
		s.vel[i][0] = -s.vel[i][0]
	} else if s.pos[i][0]+r > s.bounds.XMax {
		s.pos[i][0] = s.bounds.XMax - r
		s.vel[i][0] = -s.vel[i][0]
	}
	if s.pos[i][1]-r < s.bounds.YMin {
		s.pos[i][1] = s.bounds.YMin + r
		s.vel[i][1] = -s.vel[i][1]
	} else if s.pos[i][1]+r > s.bounds.YMax {
		s.pos[i][1] = s.bounds.YMax - r
		s.vel[i][1] = -s.vel[i][1]
	}
}

// resolve rewinds both centers to the instant the circles first touched,
// applies the 2D elastic impulse, and records momentum on both sides of
// the exchange.
func (s *TwoBody) resolve(prev [2]mgl64.Vec2, prevDist, rsum, dist float64) {
	// Linear solve for the sub-step fraction where distance == rsum.
	denom := dist - prevDist
	alpha := 1.0
	if math.Abs(denom) > interpEps {
		alpha = (rsum - prevDist) / denom
	}
	alpha = math.Max(0, math.Min(1, alpha))
	for i := range s.pos {
		s.pos[i] = prev[i].Add(s.pos[i].Sub(prev[i]).Mul(alpha))
	}

	before := s.momentum()

	m1, m2 := s.spec[0].mass, s.spec[1].mass
	sep := s.pos[0].Sub(s.pos[1])
	d2 := sep.Dot(sep)
	if d2 < distEps {
		d2 = distEps
	}
	v1, v2 := s.vel[0], s.vel[1]
	s.vel[0] = v1.Sub(sep.Mul(2 * m2 / (m1 + m2) * v1.Sub(v2).Dot(sep) / d2))
	s.vel[1] = v2.Sub(sep.Mul(-1).Mul(2 * m1 / (m1 + m2) * v2.Sub(v1).Dot(sep.Mul(-1)) / d2))

	after := s.momentum()
	s.last = &CollisionEvent{T: s.t, Before: before, After: after}
	s.contact = true

	for i := range s.pos {
		s.pos[i] = s.pos[i].Add(s.vel[i].Mul(contactNudge))
	}
}

func (s *TwoBody) momentum() Momentum {
	p1 := s.vel[0].Mul(s.spec[0].mass)
	p2 := s.vel[1].Mul(s.spec[1].mass)
	return Momentum{P1: p1, P2: p2, Total: p1.Add(p2)}
}

func (s *TwoBody) Snapshot() State {
	st := State{
		Bodies: []BodyState{
			{Pos: s.pos[0], Vel: s.vel[0]},
			{Pos: s.pos[1], Vel: s.vel[1]},
		},
		T:       s.t,
		Contact: s.contact,
	}
	if s.last != nil {
		ev := *s.last
		st.Collision = &ev
	}
	return st
}

// KineticEnergy is the summed kinetic energy of both bodies. Reflections
// and elastic impulses both preserve it.
func (s *TwoBody) KineticEnergy() float64 {
	e := 0.0
	for i := range s.vel {
		e += 0.5 * s.spec[i].mass * s.vel[i].Dot(s.vel[i])
	}
	return e
}
