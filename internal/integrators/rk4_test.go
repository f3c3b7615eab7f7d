package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/physlab/internal/dynamo"
)

// harmonic oscillator: x'' = -x
type oscillator struct{}

func (o *oscillator) Derive(x dynamo.State, t float64) dynamo.State {
	return dynamo.State{x[1], -x[0]}
}

func (o *oscillator) StateDim() int { return 2 }

func TestRK4Accuracy(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{1.0, 0.0}
	dt := 0.01
	steps := 100

	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, float64(i)*dt, dt)
	}

	expectedX := math.Cos(float64(steps) * dt)
	expectedV := -math.Sin(float64(steps) * dt)

	errVec := dynamo.State{x[0] - expectedX, x[1] - expectedV}
	if errVec.Norm() > 1e-6 {
		t.Errorf("state error %.2e: got (%.8f, %.8f), expected (%.8f, %.8f)",
			errVec.Norm(), x[0], x[1], expectedX, expectedV)
	}
}

func TestRK4DoesNotMutateInput(t *testing.T) {
	dyn := &oscillator{}
	integ := NewRK4()

	x := dynamo.State{0.5, -0.25}
	orig := x.Clone()
	_ = integ.Step(dyn, x, 0, 0.01)

	for i := range x {
		if x[i] != orig[i] {
			t.Fatalf("input state mutated at index %d: %f != %f", i, x[i], orig[i])
		}
	}
}
