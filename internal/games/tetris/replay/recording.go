// Package replay records per-tick action streams and plays them back
// against a fresh world.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
)

// ErrMalformedRecording is returned for recordings that cannot be replayed.
var ErrMalformedRecording = errors.New("malformed recording")

// Frame is one group of actions injected Gap ticks after the previous frame.
// A frame without actions only advances time.
type Frame struct {
	Gap     int
	Actions []sim.Action
}

// Timing overrides the world's lock and drop tuning. A recording without it
// replays with the defaults.
type Timing struct {
	LockDelay        int `json:"lockDelay" yaml:"lock_delay"`
	MaxLockResets    int `json:"maxLockResets" yaml:"max_lock_resets"`
	DropBase         int `json:"dropBase" yaml:"drop_base"`
	DropStep         int `json:"dropStep" yaml:"drop_step"`
	DropMin          int `json:"dropMin" yaml:"drop_min"`
	SoftDropInterval int `json:"softDropInterval" yaml:"soft_drop_interval"`
}

// Recording holds everything needed to rebuild a game tick for tick.
type Recording struct {
	ID          uuid.UUID       `json:"id" yaml:"id"`
	Seed        int64           `json:"seed" yaml:"seed"`
	BoardWidth  int             `json:"boardWidth,omitempty" yaml:"board_width,omitempty"`
	BoardHeight int             `json:"boardHeight,omitempty" yaml:"board_height,omitempty"`
	BufferRows  int             `json:"bufferHeight,omitempty" yaml:"buffer_height,omitempty"`
	VisibleRows int             `json:"visualHeight,omitempty" yaml:"visual_height,omitempty"`
	GravityMode sim.GravityMode `json:"gravityMode,omitempty" yaml:"gravity_mode,omitempty"`

	// CascadeGravity is the legacy spelling of GravityMode: cascade.
	CascadeGravity bool `json:"cascadeGravity,omitempty" yaml:"cascade_gravity,omitempty"`

	Mode   sim.GameMode `json:"gameMode" yaml:"game_mode"`
	Timing *Timing      `json:"timing,omitempty" yaml:"timing,omitempty"`
	Frames []Frame      `json:"frames" yaml:"frames"`

	// ExpectedGrid lists the non-empty grid rows, top to bottom, that the
	// replay must end with.
	ExpectedGrid []string `json:"expectedGrid,omitempty" yaml:"expected_grid,omitempty"`
}

// NewRecording captures the initialization parameters of opts.
func NewRecording(opts sim.Options) *Recording {
	return &Recording{
		ID:          uuid.New(),
		Seed:        opts.Seed,
		BoardWidth:  opts.Width,
		BoardHeight: opts.Height,
		BufferRows:  opts.BufferHeight,
		VisibleRows: opts.VisualHeight,
		GravityMode: opts.GravityMode,
		Mode:        opts.Mode,
		Timing: &Timing{
			LockDelay:        opts.LockDelay,
			MaxLockResets:    opts.MaxLockResets,
			DropBase:         opts.Rules.DropBase,
			DropStep:         opts.Rules.DropStep,
			DropMin:          opts.Rules.DropMin,
			SoftDropInterval: opts.Rules.SoftDropInterval,
		},
	}
}

// Options returns the world options the recording was made with.
func (r *Recording) Options() sim.Options {
	opts := sim.DefaultOptions()
	opts.Seed = r.Seed
	opts.Width = r.BoardWidth
	opts.Height = r.BoardHeight
	opts.BufferHeight = r.BufferRows
	opts.VisualHeight = r.VisibleRows
	opts.GravityMode = r.GravityMode
	if opts.GravityMode == "" && r.CascadeGravity {
		opts.GravityMode = sim.GravityCascade
	}
	opts.Mode = r.Mode
	if t := r.Timing; t != nil {
		opts.LockDelay = t.LockDelay
		opts.MaxLockResets = t.MaxLockResets
		opts.Rules = sim.Rules{
			DropBase:         t.DropBase,
			DropStep:         t.DropStep,
			DropMin:          t.DropMin,
			SoftDropInterval: t.SoftDropInterval,
		}
	}
	return opts
}

// Ticks is the number of ticks a full replay runs.
func (r *Recording) Ticks() int {
	n := 0
	for _, f := range r.Frames {
		n += f.Gap
	}
	return n
}

// Validate checks the recording can be replayed.
func (r *Recording) Validate() error {
	if r.GravityMode != "" && !r.GravityMode.Valid() {
		return fmt.Errorf("%w: gravity mode %q", ErrMalformedRecording, r.GravityMode)
	}
	if err := r.Options().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedRecording, err)
	}
	for i, f := range r.Frames {
		if f.Gap < 1 {
			return fmt.Errorf("%w: frame %d has gap %d", ErrMalformedRecording, i, f.Gap)
		}
		for _, a := range f.Actions {
			if !a.Valid() {
				return fmt.Errorf("%w: frame %d: unknown action %q", ErrMalformedRecording, i, a)
			}
		}
	}
	return nil
}

// MarshalJSON encodes the frame as [gap, action...].
func (f Frame) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(f.Actions)+1)
	out = append(out, f.Gap)
	for _, a := range f.Actions {
		out = append(out, string(a))
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes [gap, action...].
func (f *Frame) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: frame: %v", ErrMalformedRecording, err)
	}
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty frame", ErrMalformedRecording)
	}
	var frame Frame
	if err := json.Unmarshal(raw[0], &frame.Gap); err != nil {
		return fmt.Errorf("%w: frame gap: %v", ErrMalformedRecording, err)
	}
	for _, r := range raw[1:] {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return fmt.Errorf("%w: frame action: %v", ErrMalformedRecording, err)
		}
		a, err := sim.ParseAction(s)
		if err != nil {
			return fmt.Errorf("%w: frame: %v", ErrMalformedRecording, err)
		}
		frame.Actions = append(frame.Actions, a)
	}
	*f = frame
	return nil
}

// MarshalYAML encodes the frame as a flow sequence.
func (f Frame) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(f.Gap)})
	for _, a := range f.Actions {
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(a)})
	}
	return node, nil
}

// UnmarshalYAML decodes a [gap, action...] sequence.
func (f *Frame) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode || len(value.Content) == 0 {
		return fmt.Errorf("%w: line %d: frame must be a non-empty sequence", ErrMalformedRecording, value.Line)
	}
	var frame Frame
	if err := value.Content[0].Decode(&frame.Gap); err != nil {
		return fmt.Errorf("%w: line %d: frame gap: %v", ErrMalformedRecording, value.Line, err)
	}
	for _, n := range value.Content[1:] {
		var s string
		if err := n.Decode(&s); err != nil {
			return fmt.Errorf("%w: line %d: frame action: %v", ErrMalformedRecording, n.Line, err)
		}
		a, err := sim.ParseAction(s)
		if err != nil {
			return fmt.Errorf("%w: line %d: %v", ErrMalformedRecording, n.Line, err)
		}
		frame.Actions = append(frame.Actions, a)
	}
	*f = frame
	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Decode parses a recording; JSON when asJSON is set, YAML otherwise.
func Decode(data []byte, asJSON bool) (*Recording, error) {
	var rec Recording
	var err error
	if asJSON {
		err = json.Unmarshal(data, &rec)
	} else {
		err = yaml.Unmarshal(data, &rec)
	}
	if err != nil {
		if errors.Is(err, ErrMalformedRecording) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecording, err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Encode renders a recording as JSON or YAML.
func Encode(rec *Recording, asJSON bool) ([]byte, error) {
	if asJSON {
		return json.MarshalIndent(rec, "", "  ")
	}
	return yaml.Marshal(rec)
}

// Load reads a recording, picking the format from the file extension.
func Load(path string) (*Recording, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	rec, err := Decode(data, isJSON(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rec, nil
}

// Save writes a recording, picking the format from the file extension.
func Save(path string, rec *Recording) error {
	data, err := Encode(rec, isJSON(path))
	if err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create recording directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write recording: %w", err)
	}
	return nil
}
