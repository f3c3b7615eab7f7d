// Package engine owns the run lifecycle for a single simulation instance:
// command dispatch, wall-clock pacing, and per-tick snapshot emission.
//
// The engine runs on its own goroutine. All interaction goes through an
// ordered command queue; state is never touched from outside, so no
// locking exists anywhere in the hot path. Hosts read snapshots from
// Notes and must drain it: per-tick snapshots are dropped when the host
// lags, terminal notices are delivered blocking.
package engine

import (
	"fmt"
	"time"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/physics"
)

// Phase is the lifecycle state of an engine.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseRunning
	PhasePaused
	PhaseDone
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseDone:
		return "done"
	case PhaseErrored:
		return "error"
	}
	return "unknown"
}

type NoteType int

const (
	// NoteTick carries the samples produced since the previous tick and
	// the latest aggregate state.
	NoteTick NoteType = iota
	// NoteDone signals the run reached a stopping condition.
	NoteDone
	// NoteError signals an internal fault; the engine is inert until the
	// next start.
	NoteError
)

func (t NoteType) String() string {
	switch t {
	case NoteTick:
		return "tick"
	case NoteDone:
		return "done"
	case NoteError:
		return "error"
	}
	return "unknown"
}

// Note is one snapshot message from engine to host.
type Note struct {
	Type    NoteType
	Samples []physics.Sample
	State   physics.State
	Err     string
	// Dropped counts tick snapshots discarded so far because the host
	// was not draining Notes fast enough.
	Dropped uint64
}

type cmdKind int

const (
	cmdStart cmdKind = iota
	cmdPause
	cmdResume
	cmdSetSpeed
	cmdClose
)

type command struct {
	kind   cmdKind
	params config.Params
	speed  float64
}

// tickInterval is the cadence of the recurring timer while running.
const tickInterval = time.Second / 60

// Engine drives one simulation run at a time. Create with New, discard
// with Close; a closed engine cannot be restarted.
type Engine struct {
	cmds  chan command
	notes chan Note

	// Everything below is owned by the loop goroutine.
	phase   Phase
	sim     physics.Simulation
	pacer   *Pacer
	speed   float64
	batch   []physics.Sample
	ticker  *time.Ticker
	dropped uint64
}

func New() *Engine {
	e := newEngine()
	go e.loop()
	return e
}

// newEngine builds an engine without starting its goroutine; the loop is
// separate so tests can drive dispatch and ticks deterministically.
func newEngine() *Engine {
	return &Engine{
		cmds:  make(chan command, 16),
		notes: make(chan Note, 64),
		phase: PhaseIdle,
	}
}

// Notes is the snapshot stream. It is closed by Close.
func (e *Engine) Notes() <-chan Note { return e.notes }

// Start begins a fresh run. Valid from idle, done, or error; ignored
// otherwise. Params are clamped, never rejected. A positive speed
// overrides params.TimeScale.
func (e *Engine) Start(p config.Params, speed float64) {
	e.cmds <- command{kind: cmdStart, params: p, speed: speed}
}

// Pause cancels the recurring tick without discarding run state.
func (e *Engine) Pause() { e.cmds <- command{kind: cmdPause} }

// Resume re-bases the pacing origin and restarts ticking.
func (e *Engine) Resume() { e.cmds <- command{kind: cmdResume} }

// SetSpeed updates the real-to-simulated time multiplier in any phase.
func (e *Engine) SetSpeed(speed float64) {
	e.cmds <- command{kind: cmdSetSpeed, speed: speed}
}

// Close terminates the engine goroutine and closes Notes. Must be called
// exactly once, by the host that created the engine.
func (e *Engine) Close() { e.cmds <- command{kind: cmdClose} }

func (e *Engine) loop() {
	for {
		var tickC <-chan time.Time
		if e.ticker != nil {
			tickC = e.ticker.C
		}
		select {
		case c := <-e.cmds:
			if c.kind == cmdClose {
				e.stopTicker()
				close(e.notes)
				return
			}
			e.handle(c, time.Now())
		case now := <-tickC:
			e.tick(now)
		}
	}
}

// handle applies one command at the given instant. Commands invalid for
// the current phase are ignored: the protocol has no rejection path.
func (e *Engine) handle(c command, now time.Time) {
	switch c.kind {
	case cmdStart:
		if e.phase == PhaseRunning || e.phase == PhasePaused {
			return
		}
		e.start(c, now)
	case cmdPause:
		if e.phase != PhaseRunning {
			return
		}
		e.stopTicker()
		e.phase = PhasePaused
	case cmdResume:
		if e.phase != PhasePaused {
			return
		}
		e.pacer.Rebase(now)
		e.startTicker()
		e.phase = PhaseRunning
	case cmdSetSpeed:
		speed := c.speed
		if !(speed > 0) {
			speed = config.Epsilon
		}
		e.speed = speed
		if e.pacer != nil {
			e.pacer.SetSpeed(speed)
		}
	}
}

// start rebuilds all run state from scratch. Nothing from a previous run
// survives: simulation, pacer, and batch are fresh allocations.
func (e *Engine) start(c command, now time.Time) {
	p := c.params
	p.Clamp()

	speed := c.speed
	if !(speed > 0) {
		speed = p.TimeScale
	}

	sim, err := physics.New(p)
	if err != nil {
		e.fail(err.Error())
		return
	}

	e.sim = sim
	e.speed = speed
	e.pacer = NewPacer(p.Dt, speed, now)
	e.batch = nil
	e.dropped = 0

	e.emit(Note{Type: NoteTick, Samples: sim.Seed(), State: sim.Snapshot()})

	e.phase = PhaseRunning
	e.startTicker()
}

// tick runs the bounded batch of integration steps owed for this interval
// and flushes one snapshot. Any panic below is contained here: the run
// dies with an error notice instead of taking the process down.
func (e *Engine) tick(now time.Time) {
	if e.phase != PhaseRunning {
		// A tick already queued when pause landed; drop it.
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.fail(fmt.Sprintf("tick: %v", r))
		}
	}()

	steps := e.pacer.Owe(now)
	for i := 0; i < steps; i++ {
		samples, done := e.sim.Step()
		e.batch = append(e.batch, samples...)
		if done {
			e.flush()
			e.finish()
			return
		}
	}
	e.flush()
}

// flush hands the accumulated batch to the host together with the latest
// state. The batch slice is given away, not reused.
func (e *Engine) flush() {
	n := Note{Type: NoteTick, Samples: e.batch, State: e.sim.Snapshot()}
	e.batch = nil
	e.emit(n)
}

func (e *Engine) finish() {
	e.stopTicker()
	e.phase = PhaseDone
	e.emitBlocking(Note{Type: NoteDone})
}

func (e *Engine) fail(msg string) {
	e.stopTicker()
	e.phase = PhaseErrored
	e.emitBlocking(Note{Type: NoteError, Err: msg})
}

// emit delivers a per-tick snapshot without blocking the computation
// goroutine. If the host is not keeping up the snapshot is dropped and
// counted; the next delivered note carries the tally.
func (e *Engine) emit(n Note) {
	n.Dropped = e.dropped
	select {
	case e.notes <- n:
	default:
		e.dropped++
	}
}

// emitBlocking delivers terminal notices. These must not be lost, so the
// send waits for the host; the host contract is to drain Notes.
func (e *Engine) emitBlocking(n Note) {
	n.Dropped = e.dropped
	e.notes <- n
}

func (e *Engine) startTicker() {
	e.stopTicker()
	e.ticker = time.NewTicker(tickInterval)
}

func (e *Engine) stopTicker() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
}
