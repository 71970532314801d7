package core

import "slices"

// Action represents a semantic game action, abstracted from physical key presses.
// This allows games to work with high-level intents rather than raw input.
type Action int

const (
	ActionNone            Action = iota
	ActionLeft                   // A, Left arrow - shift left
	ActionRight                  // D, Right arrow - shift right
	ActionSoftDrop               // S, Down arrow - start soft drop
	ActionSoftDropRelease        // soft drop key released
	ActionRotateCW               // W, Up arrow, X - rotate clockwise
	ActionRotateCCW              // Z - rotate counter-clockwise
	ActionHardDrop               // Space - hard drop
	ActionHardDropRelease        // hard drop key released, locks the piece
	ActionHold                   // C, Shift - swap with the hold slot
	ActionShake                  // V - settle loose blocks (cascade variants)
	ActionUp                     // menu navigation
	ActionDown                   // menu navigation
	ActionConfirm                // Enter - confirm selection in menu
	ActionBack                   // B, Escape - go back to menu
	ActionRestart                // R key - restart game after game over
	ActionQuit                   // Q, Ctrl+C - exit game/session
	ActionPause                  // P - pause/unpause game
)

var actionNames = map[Action]string{
	ActionNone:            "None",
	ActionLeft:            "Left",
	ActionRight:           "Right",
	ActionSoftDrop:        "SoftDrop",
	ActionSoftDropRelease: "SoftDropRelease",
	ActionRotateCW:        "RotateCW",
	ActionRotateCCW:       "RotateCCW",
	ActionHardDrop:        "HardDrop",
	ActionHardDropRelease: "HardDropRelease",
	ActionHold:            "Hold",
	ActionShake:           "Shake",
	ActionUp:              "Up",
	ActionDown:            "Down",
	ActionConfirm:         "Confirm",
	ActionBack:            "Back",
	ActionRestart:         "Restart",
	ActionQuit:            "Quit",
	ActionPause:           "Pause",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame represents the input for a single simulation tick.
// Actions keep the order they were triggered in, since the simulation
// applies them in sequence.
type InputFrame struct {
	Actions []Action
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{}
}

// Set appends an action for this frame. Repeats of the same action within
// one frame are dropped.
func (f *InputFrame) Set(a Action) {
	if a == ActionNone || f.Has(a) {
		return
	}
	f.Actions = append(f.Actions, a)
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return slices.Contains(f.Actions, a)
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	f.Actions = f.Actions[:0]
}

// Clone creates a copy of this input frame.
func (f InputFrame) Clone() InputFrame {
	if f.Actions == nil {
		return InputFrame{}
	}
	return InputFrame{Actions: append([]Action(nil), f.Actions...)}
}
