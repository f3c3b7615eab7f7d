// Package protocol defines the JSON messages a remote host exchanges with
// an engine: commands in, snapshot notices out. Unknown message fields are
// ignored by decoding; unknown message types are an error.
package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/engine"
	"github.com/san-kum/physlab/internal/physics"
)

const (
	CmdStart    = "start"
	CmdPause    = "pause"
	CmdResume   = "resume"
	CmdSetSpeed = "setSpeed"

	NoteTick  = "tick"
	NoteDone  = "done"
	NoteError = "error"
)

// Command is a host-to-engine message. Params and Speed are only
// meaningful for start and setSpeed.
type Command struct {
	Type   string         `json:"type"`
	Params *config.Params `json:"params,omitempty"`
	Speed  float64        `json:"speed,omitempty"`
}

// Note is an engine-to-host message.
type Note struct {
	Type    string           `json:"type"`
	Samples []physics.Sample `json:"samples,omitempty"`
	State   *physics.State   `json:"state,omitempty"`
	Message string           `json:"message,omitempty"`
	Dropped uint64           `json:"dropped,omitempty"`
}

// ParseCommand decodes and validates one inbound message.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, fmt.Errorf("parse command: %w", err)
	}
	switch cmd.Type {
	case CmdStart, CmdPause, CmdResume, CmdSetSpeed:
		return &cmd, nil
	default:
		return nil, fmt.Errorf("unknown command type: %q", cmd.Type)
	}
}

// FromEngine converts an engine note into its wire form.
func FromEngine(n engine.Note) Note {
	out := Note{Dropped: n.Dropped}
	switch n.Type {
	case engine.NoteTick:
		st := n.State
		out.Type = NoteTick
		out.Samples = n.Samples
		out.State = &st
	case engine.NoteDone:
		out.Type = NoteDone
	case engine.NoteError:
		out.Type = NoteError
		out.Message = n.Err
	}
	return out
}
