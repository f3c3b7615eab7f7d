package protocol

import (
	"encoding/json"
	"testing"

	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/physics"
)

func TestParseCommandStart(t *testing.T) {
	raw := `{"type":"start","params":{"variant":"projectile","launchSpeed":42},"speed":2}`
	cmd, err := ParseCommand([]byte(raw))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Type != CmdStart {
		t.Errorf("type = %q, want start", cmd.Type)
	}
	if cmd.Params == nil || cmd.Params.LaunchSpeed != 42 {
		t.Errorf("params = %+v, want launchSpeed 42", cmd.Params)
	}
	if cmd.Speed != 2 {
		t.Errorf("speed = %g, want 2", cmd.Speed)
	}
}

func TestParseCommandBare(t *testing.T) {
	for _, typ := range []string{CmdPause, CmdResume, CmdSetSpeed} {
		cmd, err := ParseCommand([]byte(`{"type":"` + typ + `"}`))
		if err != nil {
			t.Errorf("%s: %v", typ, err)
			continue
		}
		if cmd.Params != nil {
			t.Errorf("%s: unexpected params %+v", typ, cmd.Params)
		}
	}
}

func TestParseCommandUnknownType(t *testing.T) {
	if _, err := ParseCommand([]byte(`{"type":"reboot"}`)); err == nil {
		t.Error("expected an error for an unknown type")
	}
	if _, err := ParseCommand([]byte(`{}`)); err == nil {
		t.Error("expected an error for a missing type")
	}
}

func TestParseCommandMalformed(t *testing.T) {
	if _, err := ParseCommand([]byte(`{"type":`)); err == nil {
		t.Error("expected an error for truncated JSON")
	}
}

func TestParseCommandIgnoresUnknownFields(t *testing.T) {
	cmd, err := ParseCommand([]byte(`{"type":"pause","extra":true,"nested":{"a":1}}`))
	if err != nil {
		t.Fatal(err)
	}
	if cmd.Type != CmdPause {
		t.Errorf("type = %q, want pause", cmd.Type)
	}
}

func TestFromEngineTick(t *testing.T) {
	in := engine.Note{
		Type:    engine.NoteTick,
		Samples: []physics.Sample{{Body: 0, X: 1, Y: 2, T: 0.5}},
		State:   physics.State{T: 0.5},
		Dropped: 3,
	}
	out := FromEngine(in)
	if out.Type != NoteTick {
		t.Errorf("type = %q, want tick", out.Type)
	}
	if len(out.Samples) != 1 || out.State == nil || out.State.T != 0.5 {
		t.Errorf("payload not carried: %+v", out)
	}
	if out.Dropped != 3 {
		t.Errorf("dropped = %d, want 3", out.Dropped)
	}
}

func TestFromEngineTerminal(t *testing.T) {
	done := FromEngine(engine.Note{Type: engine.NoteDone})
	if done.Type != NoteDone || done.State != nil || done.Samples != nil {
		t.Errorf("done note carried payload: %+v", done)
	}

	fail := FromEngine(engine.Note{Type: engine.NoteError, Err: "tick: boom"})
	if fail.Type != NoteError || fail.Message != "tick: boom" {
		t.Errorf("error note = %+v", fail)
	}
}

func TestNoteWireShape(t *testing.T) {
	n := FromEngine(engine.Note{Type: engine.NoteDone})
	data, err := json.Marshal(n)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"type":"done"}` {
		t.Errorf("done wire form = %s", data)
	}
}
