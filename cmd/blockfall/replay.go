package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/games/tetris/replay"
	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagSnapshot    string
	flagRecordingID string
)

var replayCmd = &cobra.Command{
	Use:   "replay [recording]",
	Short: "Run a recording headlessly",
	Long: `Replay a recording tick for tick and print the final state.

The recording is read from a .yaml or .json file, or from the scores
database with --id. When the recording carries an expectedGrid, the
final grid must match it or the command fails.

Examples:
  blockfall replay run.yaml
  blockfall replay run.json --snapshot end.json
  blockfall replay --id 0b7e4f9c-2f43-4c1b-9f0e-8f6f7a3c9d21`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&flagSnapshot, "snapshot", "", "Write the final snapshot JSON to this file")
	replayCmd.Flags().StringVar(&flagRecordingID, "id", "", "Load the recording from the scores database")
}

func runReplay(cmd *cobra.Command, args []string) error {
	logger := newLogger("replay")

	rec, source, err := loadRecording(args)
	if err != nil {
		return err
	}
	logger.Info("replaying", "source", source, "seed", rec.Seed, "gravity", rec.GravityMode, "ticks", rec.Ticks())

	w, err := replay.Verify(rec)
	if w != nil {
		printWorld(cmd, w)
	}
	if errors.Is(err, replay.ErrGridMismatch) {
		logger.Error("final grid differs from the recording")
		return err
	}
	if err != nil {
		return err
	}
	if rec.ExpectedGrid != nil {
		logger.Info("final grid matches the recording")
	}

	if flagSnapshot != "" {
		data, err := w.MarshalSnapshot()
		if err != nil {
			return fmt.Errorf("export snapshot: %w", err)
		}
		if err := os.WriteFile(flagSnapshot, data, 0o644); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		logger.Info("snapshot written", "path", flagSnapshot, "bytes", len(data))
	}
	return nil
}

// loadRecording reads the recording named by args or --id and describes
// where it came from.
func loadRecording(args []string) (*replay.Recording, string, error) {
	switch {
	case flagRecordingID != "" && len(args) > 0:
		return nil, "", fmt.Errorf("give a recording file or --id, not both")

	case flagRecordingID != "":
		id, err := uuid.Parse(flagRecordingID)
		if err != nil {
			return nil, "", fmt.Errorf("--id: %w", err)
		}
		store, err := storage.Open(flagDBPath)
		if err != nil {
			return nil, "", err
		}
		defer store.Close()

		data, err := store.Recording(id)
		if err != nil {
			return nil, "", err
		}
		rec, err := replay.Decode(data, false)
		return rec, "db:" + id.String(), err

	case len(args) == 1:
		rec, err := replay.Load(args[0])
		return rec, args[0], err
	}
	return nil, "", fmt.Errorf("missing recording file")
}

// printWorld writes the final state and visible grid to stdout.
func printWorld(cmd *cobra.Command, w *sim.World) {
	out := cmd.OutOrStdout()
	score := w.Score()

	fmt.Fprintf(out, "score: %d\n", score.Score)
	fmt.Fprintf(out, "lines: %d\n", score.Lines)
	fmt.Fprintf(out, "level: %d\n", score.Level)
	fmt.Fprintf(out, "phase: %s\n", w.State().Phase)
	fmt.Fprintf(out, "ticks: %d\n", w.Ticks())
	fmt.Fprintln(out, gridText(w.Board(), w.Pieces()))
}

// gridText draws the visible rows with one letter per piece kind.
func gridText(b *sim.Board, pieces *sim.PieceTable) string {
	var sb strings.Builder
	border := "+" + strings.Repeat("-", b.Width) + "+"
	sb.WriteString(border)
	for y := b.FirstVisibleRow(); y < b.Rows(); y++ {
		sb.WriteString("\n|")
		for _, id := range b.Grid[y] {
			if id == 0 {
				sb.WriteByte('.')
				continue
			}
			sb.WriteString(pieces.Kind(id).String())
		}
		sb.WriteString("|")
	}
	sb.WriteString("\n")
	sb.WriteString(border)
	return sb.String()
}
