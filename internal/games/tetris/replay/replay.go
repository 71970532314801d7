package replay

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
)

// ErrGridMismatch is returned by Verify when the final grid differs from
// the recording's expected grid.
var ErrGridMismatch = errors.New("final grid does not match")

// Recorder turns the per-tick action lists into gap-compressed frames.
type Recorder struct {
	frames []Frame
	since  int
}

// Observe records the actions about to be consumed by one tick.
func (r *Recorder) Observe(actions []sim.Action) {
	r.since++
	if len(actions) == 0 {
		return
	}
	r.frames = append(r.frames, Frame{Gap: r.since, Actions: slices.Clone(actions)})
	r.since = 0
}

// Frames returns the recorded frames. Trailing idle ticks become a final
// frame without actions.
func (r *Recorder) Frames() []Frame {
	frames := slices.Clone(r.frames)
	if r.since > 0 {
		frames = append(frames, Frame{Gap: r.since})
	}
	return frames
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.frames = nil
	r.since = 0
}

// Replay feeds recorded frames back one tick at a time. The caller drives
// the ticks.
type Replay struct {
	frames    []Frame
	index     int
	remaining int
}

// New creates a replay over frames.
func New(frames []Frame) *Replay {
	r := &Replay{frames: frames}
	if len(frames) > 0 {
		r.remaining = frames[0].Gap
	}
	return r
}

// Done reports whether every frame has been delivered.
func (r *Replay) Done() bool {
	return r.index >= len(r.frames)
}

// Next advances one tick and returns the actions due on it.
func (r *Replay) Next() []sim.Action {
	if r.Done() {
		return nil
	}
	r.remaining--
	if r.remaining > 0 {
		return nil
	}
	actions := r.frames[r.index].Actions
	r.index++
	if !r.Done() {
		r.remaining = r.frames[r.index].Gap
	}
	return actions
}

// Inject pushes this tick's actions into w's input.
func (r *Replay) Inject(w *sim.World) {
	if actions := r.Next(); len(actions) > 0 {
		w.PushActions(actions...)
	}
}

// Session is a world whose input is recorded as it is consumed.
type Session struct {
	world *sim.World
	rec   Recorder
}

// NewSession starts a recorded game.
func NewSession(opts sim.Options) (*Session, error) {
	w, err := sim.New(opts)
	if err != nil {
		return nil, err
	}
	return &Session{world: w}, nil
}

// World returns the simulated world.
func (s *Session) World() *sim.World { return s.world }

// Step queues actions and ticks once.
func (s *Session) Step(actions ...sim.Action) {
	s.world.PushActions(actions...)
	s.Tick()
}

// Tick records the pending actions and advances the world.
func (s *Session) Tick() {
	s.rec.Observe(s.world.PendingActions())
	s.world.Tick()
}

// Restart begins a new game with seed and a new recording.
func (s *Session) Restart(seed int64) {
	s.world.Restart(seed)
	s.rec.Reset()
}

// Recording returns everything recorded since the game started.
func (s *Session) Recording() *Recording {
	rec := NewRecording(s.world.Options())
	rec.Frames = s.rec.Frames()
	return rec
}

// Run replays rec on a fresh world until its frames are exhausted.
func Run(rec *Recording) (*sim.World, error) {
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	w, err := sim.New(rec.Options())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedRecording, err)
	}
	r := New(rec.Frames)
	for !r.Done() {
		r.Inject(w)
		w.Tick()
	}
	return w, nil
}

// GridRows returns the non-empty rows of b, top to bottom, in the snapshot
// cell encoding.
func GridRows(b *sim.Board) ([]string, error) {
	var rows []string
	for _, row := range b.Grid {
		if !slices.ContainsFunc(row, func(id sim.PieceID) bool { return id != 0 }) {
			continue
		}
		s, err := sim.EncodeRow(row)
		if err != nil {
			return nil, err
		}
		rows = append(rows, s)
	}
	return rows, nil
}

// Verify replays rec and compares the final grid with rec.ExpectedGrid,
// when the recording has one.
func Verify(rec *Recording) (*sim.World, error) {
	w, err := Run(rec)
	if err != nil {
		return nil, err
	}
	if rec.ExpectedGrid == nil {
		return w, nil
	}
	got, err := GridRows(w.Board())
	if err != nil {
		return w, err
	}
	if !slices.Equal(got, rec.ExpectedGrid) {
		return w, fmt.Errorf("%w:\nwant:\n%s\ngot:\n%s", ErrGridMismatch,
			strings.Join(rec.ExpectedGrid, "\n"), strings.Join(got, "\n"))
	}
	return w, nil
}
