package tui

import (
	"time"

	"github.com/vovakirdan/blockfall/internal/core"
)

// DefaultSoftDropHold is how long a soft drop stays held after the last
// down key event. It has to outlast the terminal's initial key-repeat
// delay, commonly 500ms, or a held key releases before its first repeat.
const DefaultSoftDropHold = 600 * time.Millisecond

// HoldTicks converts a hold duration into whole ticks, rounding up.
// A zero or negative hold picks DefaultSoftDropHold.
func HoldTicks(hold, tick time.Duration) int {
	if hold <= 0 {
		hold = DefaultSoftDropHold
	}
	if tick <= 0 {
		tick = core.DefaultConfig().TickInterval()
	}
	return max(1, int((hold+tick-1)/tick))
}

// InputAdapter turns terminal key presses into per-tick input frames.
// Terminals report presses only, so the adapter synthesizes the release
// actions the simulation expects: a hard drop is released on the tick
// after it fires, and a soft drop once the key stops repeating.
type InputAdapter struct {
	pending   core.InputFrame
	holdTicks int  // soft drop hold window
	softHeld  int  // ticks left before soft drop is released
	hardHeld  bool // a hard drop fired on the previous frame
}

// NewInputAdapter creates an adapter with nothing held that keeps a soft
// drop for holdTicks ticks after each press.
func NewInputAdapter(holdTicks int) *InputAdapter {
	return &InputAdapter{holdTicks: max(holdTicks, 1)}
}

// Press records a key press for the next frame.
func (a *InputAdapter) Press(act core.Action) {
	switch act {
	case core.ActionNone:
		return
	case core.ActionSoftDrop:
		if a.softHeld == 0 {
			a.pending.Set(core.ActionSoftDrop)
		}
		a.softHeld = a.holdTicks + 1
	default:
		a.pending.Set(act)
	}
}

// Frame returns the actions for the next tick and advances held keys.
func (a *InputAdapter) Frame() core.InputFrame {
	out := core.NewInputFrame()

	if a.hardHeld {
		out.Set(core.ActionHardDropRelease)
		a.hardHeld = false
	}
	for _, act := range a.pending.Actions {
		out.Set(act)
	}
	a.pending.Clear()

	if out.Has(core.ActionHardDrop) {
		a.hardHeld = true
	}
	if a.softHeld > 0 {
		a.softHeld--
		if a.softHeld == 0 {
			out.Set(core.ActionSoftDropRelease)
		}
	}
	return out
}

// Reset drops pending presses and held keys.
func (a *InputAdapter) Reset() {
	a.pending.Clear()
	a.softHeld = 0
	a.hardHeld = false
}
