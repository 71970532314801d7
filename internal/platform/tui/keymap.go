package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/blockfall/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// gameKeys holds the in-game bindings. Arrows and WASD both work.
var gameKeys = map[string]core.Action{
	"left":  core.ActionLeft,
	"a":     core.ActionLeft,
	"right": core.ActionRight,
	"d":     core.ActionRight,
	"down":  core.ActionSoftDrop,
	"s":     core.ActionSoftDrop,
	"up":    core.ActionRotateCW,
	"w":     core.ActionRotateCW,
	"x":     core.ActionRotateCW,
	"z":     core.ActionRotateCCW,
	" ":     core.ActionHardDrop,
	"c":     core.ActionHold,
	"shift": core.ActionHold,
	"v":     core.ActionShake,
	"p":     core.ActionPause,
	"r":     core.ActionRestart,
	"b":     core.ActionBack,
	"esc":   core.ActionBack,
	"enter": core.ActionConfirm,
}

// MapKey translates a key message to a game action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	key := msg.String()

	// Global quit keys
	switch key {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	}

	if a, ok := gameKeys[key]; ok {
		return a, false
	}
	return core.ActionNone, false
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	}

	return MenuActionNone
}
