package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	// Check that the file was created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreSaveAndRetrieve(t *testing.T) {
	store := openTestStore(t)

	entries := []ScoreEntry{
		{GameID: "tetris", Score: 1200, Lines: 12, Level: 2, Seed: 1},
		{GameID: "tetris", Score: 400, Lines: 4, Level: 1, Seed: 2},
		{GameID: "tetris", Score: 2600, Lines: 21, Level: 3, Seed: 3},
		{GameID: "tetris_cascade", Score: 5000, Lines: 30, Level: 4, Seed: 4},
	}
	for _, e := range entries {
		if _, err := store.SaveScore(e); err != nil {
			t.Fatalf("SaveScore() failed: %v", err)
		}
	}

	scores, err := store.TopScores("tetris", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(scores) != 3 {
		t.Fatalf("Expected 3 scores, got %d", len(scores))
	}

	// Should be sorted descending
	want := []int{2600, 1200, 400}
	for i, w := range want {
		if scores[i].Score != w {
			t.Errorf("scores[%d] = %d, expected %d", i, scores[i].Score, w)
		}
	}
	top := scores[0]
	if top.Lines != 21 || top.Level != 3 || top.Seed != 3 {
		t.Errorf("top entry lost fields: %+v", top)
	}
	if top.RecordingID != uuid.Nil {
		t.Errorf("unrecorded game should have no recording id, got %s", top.RecordingID)
	}
	if top.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}

	cascade, err := store.TopScores("tetris_cascade", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if len(cascade) != 1 {
		t.Errorf("Expected 1 cascade score, got %d", len(cascade))
	}
}

func TestStoreTiesBreakOnLines(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 800, Lines: 4})
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 800, Lines: 8})

	scores, err := store.TopScores("tetris", 10)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}
	if scores[0].Lines != 8 {
		t.Errorf("equal scores should rank more lines first, got %+v", scores)
	}
}

func TestStoreTopScoresLimit(t *testing.T) {
	store := openTestStore(t)

	for i := range 5 {
		store.SaveScore(ScoreEntry{GameID: "test", Score: (i + 1) * 100})
	}

	// Request only top 3
	scores, err := store.TopScores("test", 3)
	if err != nil {
		t.Fatalf("TopScores() failed: %v", err)
	}

	if len(scores) != 3 {
		t.Errorf("Expected 3 scores with limit, got %d", len(scores))
	}

	// Should be 500, 400, 300 (top 3)
	if scores[0].Score != 500 || scores[1].Score != 400 || scores[2].Score != 300 {
		t.Errorf("Scores not in expected order: %v", scores)
	}

	// A non-positive limit falls back to ten
	for range 10 {
		store.SaveScore(ScoreEntry{GameID: "test", Score: 1})
	}
	scores, _ = store.TopScores("test", 0)
	if len(scores) != 10 {
		t.Errorf("Expected default limit of 10, got %d", len(scores))
	}
}

func TestStoreHighScore(t *testing.T) {
	store := openTestStore(t)

	// No scores yet
	high, err := store.HighScore("tetris")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 0 {
		t.Errorf("Expected high score of 0 for empty game, got %d", high)
	}

	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 100})
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 300})
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 200})

	high, err = store.HighScore("tetris")
	if err != nil {
		t.Fatalf("HighScore() failed: %v", err)
	}
	if high != 300 {
		t.Errorf("Expected high score of 300, got %d", high)
	}
}

func TestStoreClearScores(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 100})
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 200})
	store.SaveScore(ScoreEntry{GameID: "tetris_sticky", Score: 300})

	if err := store.ClearScores("tetris"); err != nil {
		t.Fatalf("ClearScores() failed: %v", err)
	}

	scores, _ := store.TopScores("tetris", 10)
	if len(scores) != 0 {
		t.Errorf("Expected 0 scores after clear, got %d", len(scores))
	}

	sticky, _ := store.TopScores("tetris_sticky", 10)
	if len(sticky) != 1 {
		t.Errorf("Other variants should not be affected by clearing tetris")
	}
}

func TestStoreRecordings(t *testing.T) {
	store := openTestStore(t)
	id := uuid.New()

	if _, err := store.Recording(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing recording should return ErrNotFound, got %v", err)
	}

	if err := store.SaveRecording(id, "tetris", []byte("seed: 1\n")); err != nil {
		t.Fatalf("SaveRecording() failed: %v", err)
	}
	if err := store.SaveRecording(id, "tetris", []byte("seed: 2\n")); err != nil {
		t.Fatalf("SaveRecording() overwrite failed: %v", err)
	}

	data, err := store.Recording(id)
	if err != nil {
		t.Fatalf("Recording() failed: %v", err)
	}
	if string(data) != "seed: 2\n" {
		t.Errorf("Recording() = %q, expected the latest data", data)
	}

	if err := store.SaveRecording(uuid.Nil, "tetris", data); err == nil {
		t.Error("SaveRecording() should reject a nil id")
	}

	// Scores keep the link to their recording
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 10, RecordingID: id})
	scores, _ := store.TopScores("tetris", 1)
	if len(scores) != 1 || scores[0].RecordingID != id {
		t.Errorf("score should reference recording %s, got %+v", id, scores)
	}
}

func TestStoreGamesStats(t *testing.T) {
	store := openTestStore(t)

	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 100, Lines: 1})
	store.SaveScore(ScoreEntry{GameID: "tetris", Score: 300, Lines: 3})
	store.SaveScore(ScoreEntry{GameID: "tetris_garbage", Score: 50, Lines: 25})

	stats, err := store.GetAllGamesStats()
	if err != nil {
		t.Fatalf("GetAllGamesStats() failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("Expected stats for 2 games, got %d", len(stats))
	}

	tetris := stats["tetris"]
	if tetris.GamesCount != 2 || tetris.HighScore != 300 || tetris.BestLines != 3 {
		t.Errorf("unexpected tetris stats: %+v", tetris)
	}
	if tetris.AvgScore != 200 {
		t.Errorf("AvgScore = %v, expected 200", tetris.AvgScore)
	}
	if stats["tetris_garbage"].BestLines != 25 {
		t.Errorf("unexpected garbage stats: %+v", stats["tetris_garbage"])
	}
}

func TestStoreNestedPath(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "deep", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() with nested path failed: %v", err)
	}
	defer store.Close()

	// Verify nested directories were created
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created in nested directory")
	}
}
