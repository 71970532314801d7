// Package tetris registers the falling-block simulation as playable modes.
// The rules live in the sim package; this package maps platform actions to
// simulation tokens, loads configuration and draws the well.
package tetris

import (
	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/replay"
	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
	"github.com/vovakirdan/blockfall/internal/registry"
)

// Variant describes one registered flavor of the game.
type Variant struct {
	ID      string
	Title   string
	Summary string
	Gravity sim.GravityMode // empty uses the configured gravity mode
	Garbage bool            // force mode B
}

// Variants lists every registered flavor, in menu order.
var Variants = []Variant{
	{ID: "tetris", Title: "Tetris", Summary: "Full rows clear and the stack shifts down"},
	{ID: "tetris_cascade", Title: "Tetris (Cascade)", Summary: "Loose pieces fall after a clear and can chain",
		Gravity: sim.GravityCascade},
	{ID: "tetris_sticky", Title: "Tetris (Sticky)", Summary: "Touching blocks of one color fuse before they fall",
		Gravity: sim.GravitySticky},
	{ID: "tetris_garbage", Title: "Tetris (Garbage)", Summary: "Dig through garbage rows to reach the line goal",
		Garbage: true},
}

// DefaultGarbageHeight is used by the garbage variant when the config has none.
const DefaultGarbageHeight = 8

// chainDisplayTicks is how long a chain banner stays on screen.
const chainDisplayTicks = 90

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// startLevel overrides the configured start level when >= 0
var startLevel = -1

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset.
func SetDifficultyPreset(preset string) {
	difficultyPreset = config.ParsePreset(preset)
}

// SetStartLevel overrides the start level of the next games.
// A negative level restores the configured one.
func SetStartLevel(level int) {
	startLevel = level
}

// actionTokens maps platform actions to simulation tokens.
var actionTokens = map[core.Action]sim.Action{
	core.ActionLeft:            sim.ActionLeft,
	core.ActionRight:           sim.ActionRight,
	core.ActionSoftDrop:        sim.ActionSoftDrop,
	core.ActionSoftDropRelease: sim.ActionSoftDropRelease,
	core.ActionRotateCW:        sim.ActionRotateCW,
	core.ActionRotateCCW:       sim.ActionRotateCCW,
	core.ActionHardDrop:        sim.ActionHardDrop,
	core.ActionHardDropRelease: sim.ActionHardDropRelease,
	core.ActionHold:            sim.ActionHold,
	core.ActionShake:           sim.ActionShake,
}

// Tokens translates an input frame into simulation tokens, keeping order.
func Tokens(in core.InputFrame) []sim.Action {
	var out []sim.Action
	for _, a := range in.Actions {
		if tok, ok := actionTokens[a]; ok {
			out = append(out, tok)
		}
	}
	return out
}

// Game implements registry.Game on top of a recorded simulation session.
type Game struct {
	variant Variant
	runtime core.RuntimeConfig
	cfg     config.TetrisConfig
	session *replay.Session
	paused  bool

	chain      int // clears in the latest cascade
	chainTicks int // ticks left to show the chain banner
}

// New creates a game for variant.
func New(v Variant) *Game {
	return &Game{variant: v}
}

// ID returns the unique identifier for this game.
func (g *Game) ID() string {
	return g.variant.ID
}

// Title returns the display name for this game.
func (g *Game) Title() string {
	return g.variant.Title
}

// Options builds simulation options from a loaded config for variant v.
func Options(cfg config.TetrisConfig, v Variant, seed int64) sim.Options {
	opts := sim.Options{
		Seed:          seed,
		Width:         cfg.Board.Width,
		Height:        cfg.Board.Height,
		BufferHeight:  cfg.Board.BufferHeight,
		VisualHeight:  cfg.Board.VisualHeight,
		GravityMode:   sim.GravityMode(cfg.GravityMode),
		LockDelay:     cfg.Timing.LockDelay,
		MaxLockResets: cfg.Timing.MaxLockResets,
		Mode: sim.GameMode{
			Type:          sim.ModeType(cfg.Mode.Type),
			StartLevel:    cfg.Mode.StartLevel,
			GarbageHeight: cfg.Mode.GarbageHeight,
			LinesGoal:     cfg.Mode.LinesGoal,
			Sparsity:      cfg.Mode.Sparsity,
			ManualShake:   cfg.Mode.ManualShake,
		},
		Rules: sim.Rules{
			DropBase:         cfg.Timing.DropBase,
			DropStep:         cfg.Timing.DropStep,
			DropMin:          cfg.Timing.DropMin,
			SoftDropInterval: cfg.Timing.SoftDropInterval,
		},
	}
	if v.Gravity != "" {
		opts.GravityMode = v.Gravity
		// Cascade variants always allow the shake key.
		opts.Mode.ManualShake = true
	}
	if v.Garbage {
		opts.Mode.Type = sim.ModeB
		if opts.Mode.GarbageHeight == 0 {
			opts.Mode.GarbageHeight = DefaultGarbageHeight
		}
	}
	if opts.Mode.Type != sim.ModeB {
		opts.Mode.GarbageHeight = 0
	}
	return opts
}

// Reset initializes or restarts the game.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	g.runtime = runtime

	// Load game config
	cfg, err := config.LoadTetris(configPath)
	if err != nil {
		cfg = config.DefaultTetrisConfig()
	}

	// Apply difficulty preset if set
	config.ApplyTetrisPreset(&cfg, difficultyPreset)
	if startLevel >= 0 {
		cfg.Mode.StartLevel = startLevel
	}
	g.cfg = cfg

	opts := Options(cfg, g.variant, runtime.Seed)
	session, err := replay.NewSession(opts)
	if err != nil {
		// Config validated on load; only a hand-edited mode can get here.
		session, _ = replay.NewSession(Options(config.DefaultTetrisConfig(), g.variant, runtime.Seed))
	}
	g.session = session
	g.paused = false
	g.chain = 0
	g.chainTicks = 0
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	w := g.session.World()
	if w.State().Phase.Terminal() {
		return core.StepResult{State: g.State()}
	}

	// Handle pause toggle
	if in.Has(core.ActionPause) {
		g.paused = !g.paused
	}
	if g.paused {
		return core.StepResult{State: g.State()}
	}

	lines := w.Score().Lines
	g.session.Step(Tokens(in)...)

	if g.chainTicks > 0 {
		g.chainTicks--
	}
	if w.Score().Lines > lines && w.Board().GravityMode != sim.GravityNormal {
		clears := 0
		for _, step := range w.Animations() {
			if len(step.Cleared) > 0 {
				clears++
			}
		}
		if clears > 1 {
			g.chain = clears
			g.chainTicks = chainDisplayTicks
		}
	}

	return core.StepResult{State: g.State()}
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.session == nil {
		return core.GameState{}
	}
	w := g.session.World()
	score := w.Score()
	phase := w.State().Phase
	return core.GameState{
		Score:    score.Score,
		Lines:    score.Lines,
		Level:    score.Level,
		GameOver: phase.Terminal(),
		Won:      phase == sim.PhaseVictory,
		Paused:   g.paused,
	}
}

// World exposes the running simulation.
func (g *Game) World() *sim.World {
	return g.session.World()
}

// Recording returns the actions recorded since the last reset.
func (g *Game) Recording() *replay.Recording {
	return g.session.Recording()
}

// Snapshot exports the simulation state as JSON.
func (g *Game) Snapshot() ([]byte, error) {
	return g.session.World().MarshalSnapshot()
}

func init() {
	for i, v := range Variants {
		info := registry.GameInfo{ID: v.ID, Title: v.Title, Summary: v.Summary, Order: i}
		registry.Register(info, func() registry.Game {
			return New(v)
		})
	}
}
