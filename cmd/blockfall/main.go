// blockfall is a deterministic falling-block puzzle for the terminal.
//
// Usage:
//
//	blockfall list                - List available modes
//	blockfall play [mode]         - Play a mode
//	blockfall menu                - Start menu to pick modes interactively
//	blockfall scores [mode]       - Show high scores
//	blockfall replay <recording>  - Run a recording headlessly
//	blockfall serve               - Start SSH server for remote play
//
// Global flags:
//
//	--fps <rate>    - Set tick rate (default: 60)
//	--seed <value>  - Set RNG seed for reproducible gameplay
//	--db <path>     - Set database path (default: ~/.blockfall/scores.db)
//	--softdrop-hold - Soft drop hold after the last key repeat (default: 600ms)
//
// A .env file in the working directory may set BLOCKFALL_DB,
// BLOCKFALL_CONFIG and BLOCKFALL_SEED. Flags win over the environment.
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/platform/tui"

	// Import games to register them
	_ "github.com/vovakirdan/blockfall/internal/games/tetris"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagSoftHold time.Duration
)

func main() {
	// A missing .env is the normal case
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "blockfall",
	Short: "Blockfall - a falling-block puzzle in your terminal",
	Long: `Blockfall is a deterministic falling-block puzzle. Every game can be
recorded and replayed tick for tick.

Available commands:
  list     - Show all modes
  play     - Play a mode directly
  menu     - Interactive mode picker
  scores   - View high scores
  replay   - Run a recording headlessly
  serve    - Start SSH server for remote play

Examples:
  blockfall list
  blockfall play tetris_cascade
  blockfall play --record last.yaml
  blockfall replay last.yaml --snapshot end.json
  blockfall serve --ssh :2222`,
	SilenceUsage:      true,
	PersistentPreRunE: applyEnv,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.blockfall/scores.db", "Path to scores database")
	rootCmd.PersistentFlags().DurationVar(&flagSoftHold, "softdrop-hold", tui.DefaultSoftDropHold, "How long soft drop stays on after the last down key repeat")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(serveCmd)
}

// applyEnv fills flags the user did not set from the environment.
func applyEnv(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	if v := os.Getenv("BLOCKFALL_DB"); v != "" && !flags.Changed("db") {
		flagDBPath = v
	}
	if v := os.Getenv("BLOCKFALL_SEED"); v != "" && !flags.Changed("seed") {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("BLOCKFALL_SEED: %w", err)
		}
		flagSeed = seed
	}
	if v := os.Getenv("BLOCKFALL_CONFIG"); v != "" && flags.Lookup("config") != nil && !flags.Changed("config") {
		flagConfig = v
	}
	if flagFPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %d", flagFPS)
	}
	if flagSoftHold <= 0 {
		return fmt.Errorf("--softdrop-hold must be positive, got %v", flagSoftHold)
	}
	return nil
}

// newLogger returns the stderr logger the commands share.
func newLogger(prefix string) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
}
