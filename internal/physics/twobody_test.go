package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/physics"
)

// openArena keeps the walls far enough away that a single approach is the
// only interaction within the configured duration.
func openArena() config.Box {
	return config.Box{XMin: -50, XMax: 50, YMin: -50, YMax: 50}
}

func headOnParams() config.Params {
	return config.Params{
		Variant:     config.VariantTwoBody,
		Body1:       config.BodyParams{Mass: 1, Radius: 0.25, X: -5, VX: 5},
		Body2:       config.BodyParams{Mass: 1, Radius: 0.25, X: 5, VX: -5},
		Bounds:      openArena(),
		Dt:          0.01,
		MaxDuration: 5,
		TimeScale:   1,
	}
}

// collisionTimes runs the simulation to completion and returns the times
// of all distinct recorded collision events.
func collisionTimes(sim physics.Simulation) []float64 {
	var times []float64
	last := math.Inf(-1)
	for {
		_, done := sim.Step()
		if ev := sim.Snapshot().Collision; ev != nil && ev.T != last {
			last = ev.T
			times = append(times, ev.T)
		}
		if done {
			return times
		}
	}
}

var _ = Describe("TwoBody", func() {
	Describe("elastic collision resolution", func() {
		It("fully exchanges velocities for equal masses head-on", func() {
			sim := physics.NewTwoBody(headOnParams())
			Expect(collisionTimes(sim)).To(HaveLen(1))

			st := sim.Snapshot()
			Expect(st.Bodies[0].Vel[0]).To(BeNumerically("~", -5, 1e-9))
			Expect(st.Bodies[0].Vel[1]).To(BeNumerically("~", 0, 1e-9))
			Expect(st.Bodies[1].Vel[0]).To(BeNumerically("~", 5, 1e-9))
			Expect(st.Bodies[1].Vel[1]).To(BeNumerically("~", 0, 1e-9))
		})

		It("conserves momentum and kinetic energy across the impulse", func() {
			p := headOnParams()
			p.Body1 = config.BodyParams{Mass: 3, Radius: 0.4, X: -4, Y: -0.2, VX: 4, VY: 0.5}
			p.Body2 = config.BodyParams{Mass: 1.5, Radius: 0.3, X: 4, Y: 0.3, VX: -3, VY: -0.25}
			sim := physics.NewTwoBody(p)

			keBefore := sim.KineticEnergy()
			Expect(collisionTimes(sim)).NotTo(BeEmpty())

			ev := sim.Snapshot().Collision
			Expect(ev).NotTo(BeNil())
			Expect(ev.After.Total[0]).To(BeNumerically("~", ev.Before.Total[0], 1e-9))
			Expect(ev.After.Total[1]).To(BeNumerically("~", ev.Before.Total[1], 1e-9))

			// Walls mirror velocity, impulses are elastic: kinetic energy
			// holds for the whole run.
			Expect(sim.KineticEnergy()).To(BeNumerically("~", keBefore, 1e-9))
		})

		It("places both bodies at touching distance at the contact instant", func() {
			p := headOnParams()
			sim := physics.NewTwoBody(p)
			rsum := p.Body1.Radius + p.Body2.Radius

			for {
				_, done := sim.Step()
				st := sim.Snapshot()
				if st.Collision != nil {
					// Bodies were rewound to touching, then nudged apart
					// along their outgoing velocities.
					dist := st.Bodies[0].Pos.Sub(st.Bodies[1].Pos).Len()
					Expect(dist).To(BeNumerically(">=", rsum-1e-6))
					Expect(dist).To(BeNumerically("<", rsum+0.1))
					break
				}
				Expect(done).To(BeFalse(), "finished without colliding")
			}
		})

		It("resolves exactly once per approach/separation cycle", func() {
			sim := physics.NewTwoBody(headOnParams())
			Expect(collisionTimes(sim)).To(HaveLen(1))
		})

		It("resolves again after a wall bounce brings the bodies back", func() {
			p := headOnParams()
			p.Bounds = config.Box{XMin: -8, XMax: 8, YMin: -5, YMax: 5}
			p.MaxDuration = 6
			sim := physics.NewTwoBody(p)
			Expect(len(collisionTimes(sim))).To(BeNumerically(">=", 2))
		})

		It("survives coincident centers without producing NaN", func() {
			p := headOnParams()
			p.Body1 = config.BodyParams{Mass: 1, Radius: 0.5, X: 0, Y: 0, VX: 1}
			p.Body2 = config.BodyParams{Mass: 1, Radius: 0.5, X: 0, Y: 0, VX: -1}
			sim := physics.NewTwoBody(p)

			sim.Step()
			st := sim.Snapshot()
			for _, b := range st.Bodies {
				for i := 0; i < 2; i++ {
					Expect(math.IsNaN(b.Pos[i])).To(BeFalse())
					Expect(math.IsNaN(b.Vel[i])).To(BeFalse())
				}
			}
		})
	})

	Describe("boundary reflection", func() {
		It("clamps to the wall and mirrors the perpendicular component", func() {
			p := headOnParams()
			p.Bounds = config.Box{XMin: -2, XMax: 2, YMin: -2, YMax: 2}
			p.Body1 = config.BodyParams{Mass: 1, Radius: 0.25, X: 1.8, VX: 10}
			p.Body2 = config.BodyParams{Mass: 1, Radius: 0.25, X: -1.8, VX: -10, Y: 1}
			sim := physics.NewTwoBody(p)

			_, done := sim.Step()
			Expect(done).To(BeFalse())

			st := sim.Snapshot()
			Expect(st.Bodies[0].Pos[0]).To(BeNumerically("~", 2-0.25, 1e-12))
			Expect(st.Bodies[0].Vel[0]).To(BeNumerically("~", -10, 1e-12))
			Expect(st.Bodies[1].Pos[0]).To(BeNumerically("~", -2+0.25, 1e-12))
			Expect(st.Bodies[1].Vel[0]).To(BeNumerically("~", 10, 1e-12))
		})

		It("mirrors vertical motion off the floor and ceiling", func() {
			p := headOnParams()
			p.Bounds = config.Box{XMin: -2, XMax: 2, YMin: -1, YMax: 1}
			p.Body1 = config.BodyParams{Mass: 1, Radius: 0.25, Y: -0.9, VY: -5}
			p.Body2 = config.BodyParams{Mass: 1, Radius: 0.25, X: 1, Y: 0.9, VY: 5}
			sim := physics.NewTwoBody(p)

			sim.Step()
			st := sim.Snapshot()
			Expect(st.Bodies[0].Pos[1]).To(BeNumerically("~", -1+0.25, 1e-12))
			Expect(st.Bodies[0].Vel[1]).To(BeNumerically("~", 5, 1e-12))
			Expect(st.Bodies[1].Pos[1]).To(BeNumerically("~", 1-0.25, 1e-12))
			Expect(st.Bodies[1].Vel[1]).To(BeNumerically("~", -5, 1e-12))
		})
	})

	Describe("run lifecycle", func() {
		It("stops at the duration cap", func() {
			p := headOnParams()
			p.MaxDuration = 0.25
			sim := physics.NewTwoBody(p)

			steps := 0
			for {
				_, done := sim.Step()
				steps++
				if done {
					break
				}
				Expect(steps).To(BeNumerically("<", 1000))
			}
			Expect(sim.Snapshot().T).To(BeNumerically(">=", 0.25))
		})

		It("emits one sample per body per step", func() {
			sim := physics.NewTwoBody(headOnParams())
			Expect(sim.Seed()).To(HaveLen(2))

			batch, _ := sim.Step()
			Expect(batch).To(HaveLen(2))
			Expect(batch[0].Body).To(Equal(0))
			Expect(batch[1].Body).To(Equal(1))
		})
	})
})
