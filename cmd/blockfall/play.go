package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagRecord     string
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the specified mode (default: tetris).

Controls:
  Left/Right, A/D  - Move
  Down, S          - Soft drop
  Up, W, X         - Rotate clockwise
  Z                - Rotate counter-clockwise
  Space            - Hard drop
  C                - Hold
  V                - Shake loose blocks (cascade and sticky modes)
  P                - Pause
  R                - Restart (paused or after game over)
  B/Esc            - Leave (paused or after game over)
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - Start at level 1 with a long lock delay
  normal - Start at level 5
  hard   - Start at level 10 with a short lock delay
  fixed  - Level 0, gravity never speeds up

Without --difficulty a start menu lets you pick a preset or level.

Examples:
  blockfall play
  blockfall play tetris_sticky --difficulty hard
  blockfall play tetris_garbage --config ./my-tetris.yaml
  blockfall play --seed 42 --record run.yaml`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	playCmd.Flags().StringVar(&flagRecord, "record", "", "Save the recording of each finished game (.yaml or .json)")
}

func runPlay(_ *cobra.Command, args []string) {
	gameID := tetris.Variants[0].ID
	if len(args) > 0 {
		gameID = args[0]
	}

	// Check if game exists
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'blockfall list' to see available modes.")
		os.Exit(1)
	}

	cfg := runtimeConfig()

	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		os.Exit(1)
	}

	if !configureGame(game.Title(), cfg) {
		return
	}

	// Open score storage
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not open scores database: %v\n", err)
		// Continue without storage - game still works
		store = nil
	}

	opts := tui.Options{
		RecordPath:   flagRecord,
		FixedSeed:    flagSeed != 0,
		SoftDropHold: flagSoftHold,
		Logger:       newLogger("blockfall"),
	}
	runErr := tui.Run(game, store, cfg, opts)

	// Close store before potential exit
	if store != nil {
		store.Close()
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
	if flagRecord != "" {
		fmt.Printf("Last recording saved to %s\n", flagRecord)
	}
}

// runtimeConfig sizes the game to the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}

	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// configureGame applies --config and the difficulty. Without --difficulty
// it shows the start menu. It returns false when the player backed out.
func configureGame(title string, cfg core.RuntimeConfig) bool {
	tetris.SetConfigPath(flagConfig)
	tetris.SetDifficultyPreset(flagDifficulty)
	tetris.SetStartLevel(-1)

	if flagDifficulty != "" {
		return true
	}

	sel, err := tui.RunLevelSelector(title, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return false
	}
	if sel == nil {
		return false
	}

	if sel.Level >= 0 {
		tetris.SetStartLevel(sel.Level)
	} else {
		tetris.SetDifficultyPreset(string(sel.Preset))
	}
	return true
}
