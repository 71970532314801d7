package config

import (
	_ "embed"
)

//go:embed defaults/tetris.yaml
var defaultTetrisYAML []byte

// DefaultTetrisConfig returns the default configuration.
func DefaultTetrisConfig() TetrisConfig {
	return TetrisConfig{
		Board: BoardConfig{
			Width:        10,
			Height:       20,
			BufferHeight: 4,
			VisualHeight: 20,
		},
		GravityMode: "normal",
		Mode: ModeConfig{
			Type:       "a",
			StartLevel: 1,
		},
		Timing: TimingConfig{
			LockDelay:        30,
			MaxLockResets:    15,
			DropBase:         63,
			DropStep:         5,
			DropMin:          3,
			SoftDropInterval: 3,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a game.
func GetDefaultYAML(gameID string) []byte {
	switch gameID {
	case "tetris":
		return defaultTetrisYAML
	default:
		return nil
	}
}
