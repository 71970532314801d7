package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top 10 high scores for a mode, or the best score of
every mode when none is given.

Recorded games list their recording id, which 'blockfall replay --id'
can run again.

Examples:
  blockfall scores
  blockfall scores tetris_cascade`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func runScores(_ *cobra.Command, args []string) {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening scores database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	if len(args) == 0 {
		if err := printSummary(store); err != nil {
			fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
			os.Exit(1)
		}
		return
	}

	gameID := args[0]
	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown mode %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'blockfall list' to see available modes.")
		os.Exit(1)
	}
	if err := printTop(store, gameID); err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}
}

func printTop(store *storage.Store, gameID string) error {
	info, ok := registry.Lookup(gameID)
	if !ok {
		return fmt.Errorf("unknown mode %q", gameID)
	}

	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		return err
	}

	fmt.Printf("High Scores - %s\n", info.Title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'blockfall play %s' to set the first high score!\n", gameID)
		return nil
	}

	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-16s  %s\n", "Rank", "Score", "Lines", "Level", "Date", "Recording")
	fmt.Printf("  %-4s  %-10s  %-5s  %-5s  %-16s  %s\n", "----", "-----", "-----", "-----", "----", "---------")

	for i, e := range scores {
		rec := "-"
		if e.RecordingID != uuid.Nil {
			rec = e.RecordingID.String()
		}
		fmt.Printf("  %-4d  %-10d  %-5d  %-5d  %-16s  %s\n",
			i+1, e.Score, e.Lines, e.Level, e.CreatedAt.Format("2006-01-02 15:04"), rec)
	}

	return nil
}

func printSummary(store *storage.Store) error {
	stats, err := store.GetAllGamesStats()
	if err != nil {
		return err
	}

	fmt.Println("High Scores")
	fmt.Println()
	fmt.Printf("  %-16s  %-6s  %-10s  %-5s  %s\n", "Mode", "Games", "Best", "Lines", "Last played")
	fmt.Printf("  %-16s  %-6s  %-10s  %-5s  %s\n", "----", "-----", "----", "-----", "-----------")

	for _, g := range registry.List() {
		s, ok := stats[g.ID]
		if !ok {
			fmt.Printf("  %-16s  %-6d  %-10s  %-5s  %s\n", g.ID, 0, "-", "-", "never")
			continue
		}
		fmt.Printf("  %-16s  %-6d  %-10d  %-5d  %s\n",
			g.ID, s.GamesCount, s.HighScore, s.BestLines, s.LastPlayed.Format("2006-01-02 15:04"))
	}
	return nil
}
