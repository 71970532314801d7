package config

// ApplyTetrisPreset modifies the config based on a difficulty preset.
// The preset picks the start level; easy and hard also loosen or tighten
// the lock delay.
func ApplyTetrisPreset(cfg *TetrisConfig, preset DifficultyPreset) {
	if preset == "" {
		return
	}
	cfg.Mode.StartLevel = StartLevelForPreset(preset)

	switch preset {
	case DifficultyEasy:
		cfg.Timing.LockDelay = 45
		cfg.Timing.MaxLockResets = 20
	case DifficultyHard:
		cfg.Timing.LockDelay = 20
		cfg.Timing.MaxLockResets = 8
	}
}
