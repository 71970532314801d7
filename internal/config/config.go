// Package config provides YAML-based game configuration loading and
// difficulty presets for the block-falling variants.
package config

import "fmt"

// TetrisConfig contains all configuration for the block-falling game.
type TetrisConfig struct {
	Board       BoardConfig  `yaml:"board"`
	GravityMode string       `yaml:"gravity_mode"` // "normal", "cascade" or "sticky"
	Mode        ModeConfig   `yaml:"mode"`
	Timing      TimingConfig `yaml:"timing"`
}

// BoardConfig defines the playfield size.
type BoardConfig struct {
	Width        int `yaml:"width"`
	Height       int `yaml:"height"`
	BufferHeight int `yaml:"buffer_height"` // hidden rows above the field
	VisualHeight int `yaml:"visual_height"` // 0 shows the full height
}

// ModeConfig defines the game mode.
type ModeConfig struct {
	Type          string `yaml:"type"`           // "a" (marathon) or "b" (garbage)
	StartLevel    int    `yaml:"start_level"`    // 0 pins the level
	GarbageHeight int    `yaml:"garbage_height"` // mode B only
	LinesGoal     int    `yaml:"lines_goal"`     // 0 means no goal
	Sparsity      int    `yaml:"sparsity"`       // extra garbage holes per row
	ManualShake   bool   `yaml:"manual_shake"`
}

// TimingConfig defines lock and drop speeds in ticks.
type TimingConfig struct {
	LockDelay        int `yaml:"lock_delay"`
	MaxLockResets    int `yaml:"max_lock_resets"`
	DropBase         int `yaml:"drop_base"` // interval at level 1
	DropStep         int `yaml:"drop_step"` // ticks removed per level
	DropMin          int `yaml:"drop_min"`
	SoftDropInterval int `yaml:"soft_drop_interval"`
}

// Validate reports values the game cannot start with.
func (c TetrisConfig) Validate() error {
	switch {
	case c.Board.Width < 4:
		return fmt.Errorf("config: board width %d is too narrow", c.Board.Width)
	case c.Board.Height < 4:
		return fmt.Errorf("config: board height %d is too short", c.Board.Height)
	case c.Board.BufferHeight < 2:
		return fmt.Errorf("config: buffer height %d leaves no room to spawn", c.Board.BufferHeight)
	case c.Board.VisualHeight < 0 || c.Board.VisualHeight > c.Board.Height:
		return fmt.Errorf("config: visual height %d outside [0,%d]", c.Board.VisualHeight, c.Board.Height)
	}
	switch c.GravityMode {
	case "", "normal", "cascade", "sticky":
	default:
		return fmt.Errorf("config: unknown gravity mode %q", c.GravityMode)
	}
	switch c.Mode.Type {
	case "", "a", "b":
	default:
		return fmt.Errorf("config: unknown mode %q", c.Mode.Type)
	}
	if c.Mode.StartLevel < 0 {
		return fmt.Errorf("config: negative start level %d", c.Mode.StartLevel)
	}
	if c.Mode.GarbageHeight < 0 || c.Mode.GarbageHeight >= c.Board.Height {
		return fmt.Errorf("config: garbage height %d outside [0,%d)", c.Mode.GarbageHeight, c.Board.Height)
	}
	if c.Mode.Sparsity < 0 {
		return fmt.Errorf("config: negative sparsity %d", c.Mode.Sparsity)
	}
	if c.Timing.LockDelay < 0 || c.Timing.MaxLockResets < 0 || c.Timing.DropStep < 0 {
		return fmt.Errorf("config: negative timing value")
	}
	return nil
}

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// ParsePreset maps a CLI string to a preset. Unknown names return "".
func ParsePreset(s string) DifficultyPreset {
	switch p := DifficultyPreset(s); p {
	case DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return p
	default:
		return ""
	}
}

// StartLevelForPreset returns the start level for a difficulty preset.
func StartLevelForPreset(preset DifficultyPreset) int {
	switch preset {
	case DifficultyNormal:
		return 5
	case DifficultyHard:
		return 10
	case DifficultyFixed:
		return 0
	default:
		return 1
	}
}

// IsFixedPreset returns true if the preset disables level progression.
func IsFixedPreset(preset DifficultyPreset) bool {
	return preset == DifficultyFixed
}
