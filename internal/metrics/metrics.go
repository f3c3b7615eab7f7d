// Package metrics provides host-side observers over state snapshots, in
// the usual Name/Observe/Value/Reset shape.
package metrics

import (
	"math"

	"github.com/san-kum/physlab/internal/physics"
)

type Metric interface {
	Name() string
	Observe(st physics.State)
	Value() float64
	Reset()
}

// Apex tracks the highest altitude reached by the first body.
type Apex struct {
	max float64
}

func NewApex() *Apex { return &Apex{max: math.Inf(-1)} }

func (a *Apex) Name() string { return "apex" }

func (a *Apex) Observe(st physics.State) {
	if len(st.Bodies) == 0 {
		return
	}
	if y := st.Bodies[0].Pos[1]; y > a.max {
		a.max = y
	}
}

func (a *Apex) Value() float64 {
	if math.IsInf(a.max, -1) {
		return 0
	}
	return a.max
}

func (a *Apex) Reset() { a.max = math.Inf(-1) }

// Range reports the horizontal distance of the first body from its first
// observed position.
type Range struct {
	seen  bool
	x0, x float64
}

func NewRange() *Range { return &Range{} }

func (r *Range) Name() string { return "range" }

func (r *Range) Observe(st physics.State) {
	if len(st.Bodies) == 0 {
		return
	}
	x := st.Bodies[0].Pos[0]
	if !r.seen {
		r.x0 = x
		r.seen = true
	}
	r.x = x
}

func (r *Range) Value() float64 { return r.x - r.x0 }

func (r *Range) Reset() { *r = Range{} }

// FlightTime is the simulated time of the last observed snapshot.
type FlightTime struct {
	t float64
}

func NewFlightTime() *FlightTime { return &FlightTime{} }

func (f *FlightTime) Name() string             { return "flight_time" }
func (f *FlightTime) Observe(st physics.State) { f.t = st.T }
func (f *FlightTime) Value() float64           { return f.t }
func (f *FlightTime) Reset()                   { f.t = 0 }

// MomentumBalance tracks the worst momentum mismatch across collision
// resolutions: |p_total_after - p_total_before| of each recorded event.
// Wall reflections legitimately change total momentum, so the balance is
// only meaningful across the impulse itself.
type MomentumBalance struct {
	lastT float64
	worst float64
	count int
}

func NewMomentumBalance() *MomentumBalance { return &MomentumBalance{lastT: -1} }

func (m *MomentumBalance) Name() string { return "momentum_balance" }

func (m *MomentumBalance) Observe(st physics.State) {
	ev := st.Collision
	if ev == nil || ev.T == m.lastT {
		return
	}
	m.lastT = ev.T
	m.count++
	if diff := ev.After.Total.Sub(ev.Before.Total).Len(); diff > m.worst {
		m.worst = diff
	}
}

func (m *MomentumBalance) Value() float64 { return m.worst }

// Collisions is how many distinct events were observed.
func (m *MomentumBalance) Collisions() int { return m.count }

func (m *MomentumBalance) Reset() { *m = MomentumBalance{lastT: -1} }

// EnergyDrift tracks the maximum relative kinetic-energy drift for the
// two-body run; reflections and elastic impulses should both preserve it.
type EnergyDrift struct {
	masses  []float64
	initial float64
	max     float64
	seen    bool
}

func NewEnergyDrift(masses ...float64) *EnergyDrift {
	return &EnergyDrift{masses: masses}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(st physics.State) {
	if len(st.Bodies) != len(e.masses) {
		return
	}
	ke := 0.0
	for i, b := range st.Bodies {
		ke += 0.5 * e.masses[i] * b.Vel.Dot(b.Vel)
	}
	if !e.seen {
		e.initial = ke
		e.seen = true
		return
	}
	if e.initial == 0 {
		return
	}
	drift := math.Abs(ke-e.initial) / math.Abs(e.initial)
	if drift > e.max {
		e.max = drift
	}
}

func (e *EnergyDrift) Value() float64 { return e.max }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.max = 0
	e.seen = false
}
