package engine

import (
	"math"
	"testing"
	"time"
)

func TestPacerStepCap(t *testing.T) {
	t0 := time.Now()
	p := NewPacer(0.01, 1.0, t0)

	// One full second owed: far more than the cap allows.
	n := p.Owe(t0.Add(time.Second))
	if n != MaxStepsPerTick {
		t.Fatalf("expected %d steps, got %d", MaxStepsPerTick, n)
	}

	want := 1.0 - float64(MaxStepsPerTick)*0.01
	if math.Abs(p.Leftover()-want) > 1e-12 {
		t.Errorf("leftover %.6f, want %.6f", p.Leftover(), want)
	}
}

func TestPacerCarriesRemainder(t *testing.T) {
	t0 := time.Now()
	p := NewPacer(0.01, 1.0, t0)

	t1 := t0.Add(15 * time.Millisecond)
	if n := p.Owe(t1); n != 1 {
		t.Fatalf("first tick: expected 1 step, got %d", n)
	}
	if math.Abs(p.Leftover()-0.005) > 1e-9 {
		t.Fatalf("leftover %.6f, want 0.005", p.Leftover())
	}

	// The carried 5ms plus another 5ms makes exactly one more step.
	t2 := t1.Add(5 * time.Millisecond)
	if n := p.Owe(t2); n != 1 {
		t.Errorf("second tick: expected 1 step, got %d", n)
	}
	if p.Leftover() > 1e-9 {
		t.Errorf("leftover %.9f, want 0", p.Leftover())
	}
}

func TestPacerSpeedScalesOwedTime(t *testing.T) {
	t0 := time.Now()
	p := NewPacer(0.01, 4.0, t0)

	if n := p.Owe(t0.Add(10 * time.Millisecond)); n != 4 {
		t.Errorf("speed 4x over 10ms: expected 4 steps, got %d", n)
	}

	p.SetSpeed(0.5)
	if n := p.Owe(t0.Add(30 * time.Millisecond)); n != 1 {
		t.Errorf("speed 0.5x over 20ms: expected 1 step, got %d", n)
	}
}

func TestPacerRebaseDiscardsPausedInterval(t *testing.T) {
	t0 := time.Now()
	p := NewPacer(0.01, 1.0, t0)

	// A long pause, then rebase: none of it may count as elapsed.
	t1 := t0.Add(10 * time.Second)
	p.Rebase(t1)
	if n := p.Owe(t1); n != 0 {
		t.Errorf("expected 0 steps right after rebase, got %d", n)
	}
	if n := p.Owe(t1.Add(10 * time.Millisecond)); n != 1 {
		t.Errorf("expected 1 step for 10ms after rebase, got %d", n)
	}
}

func TestPacerIgnoresBackwardClock(t *testing.T) {
	t0 := time.Now()
	p := NewPacer(0.01, 1.0, t0)

	if n := p.Owe(t0.Add(-time.Second)); n != 0 {
		t.Errorf("expected 0 steps for a backward clock, got %d", n)
	}
	if p.Leftover() != 0 {
		t.Errorf("leftover %.9f, want 0", p.Leftover())
	}
}
