package engine

import "time"

// MaxStepsPerTick bounds the integration work done in a single tick so
// tick latency stays bounded no matter how far real time has run ahead.
const MaxStepsPerTick = 10

// Pacer converts real elapsed time into a whole number of fixed-size
// simulation steps, carrying fractional remainder forward. Under sustained
// overload the carried remainder means simulated time permanently lags
// real time; that lag is documented behavior, not corrected.
type Pacer struct {
	dt    float64
	speed float64
	owed  float64
	last  time.Time
}

func NewPacer(dt, speed float64, now time.Time) *Pacer {
	return &Pacer{dt: dt, speed: speed, last: now}
}

// Owe accrues owed simulated seconds for the real interval since the last
// call and returns how many whole steps to run now, capped at
// MaxStepsPerTick. Leftover owed time stays in the accumulator.
func (p *Pacer) Owe(now time.Time) int {
	delta := now.Sub(p.last).Seconds()
	p.last = now
	if delta < 0 {
		delta = 0
	}
	p.owed += delta * p.speed

	n := 0
	for p.owed >= p.dt && n < MaxStepsPerTick {
		p.owed -= p.dt
		n++
	}
	return n
}

// Rebase resets the real-time origin without touching the accumulator.
// Called on resume so paused wall-clock time is never counted as elapsed.
func (p *Pacer) Rebase(now time.Time) {
	p.last = now
}

func (p *Pacer) SetSpeed(speed float64) {
	p.speed = speed
}

// Leftover is the owed simulated time still below one dt.
func (p *Pacer) Leftover() float64 {
	return p.owed
}
