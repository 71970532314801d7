package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vovakirdan/blockfall/internal/games/tetris/replay"
	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
)

func TestReplayCommand(t *testing.T) {
	dir := t.TempDir()

	opts := sim.DefaultOptions()
	opts.Seed = 42
	session, err := replay.NewSession(opts)
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	for range 4 {
		session.Step(sim.ActionHardDrop)
		session.Step(sim.ActionHardDropRelease)
		for range 5 {
			session.Step()
		}
	}
	rec := session.Recording()
	rec.ExpectedGrid, err = replay.GridRows(session.World().Board())
	if err != nil {
		t.Fatalf("GridRows() failed: %v", err)
	}

	recPath := filepath.Join(dir, "run.yaml")
	if err := replay.Save(recPath, rec); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	snapPath := filepath.Join(dir, "end.json")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"replay", recPath, "--snapshot", snapPath, "--db", filepath.Join(dir, "scores.db")})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("replay failed: %v", err)
	}

	text := out.String()
	for _, want := range []string{"score:", "lines: 0", "phase: playing", "+----------+"} {
		if !strings.Contains(text, want) {
			t.Errorf("output is missing %q:\n%s", want, text)
		}
	}

	data, err := os.ReadFile(snapPath)
	if err != nil {
		t.Fatalf("snapshot not written: %v", err)
	}
	want, _ := session.World().MarshalSnapshot()
	if !bytes.Equal(data, want) {
		t.Error("written snapshot should match the recorded session")
	}
}

func TestGridText(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.Width = 4
	opts.Height = 4
	w, err := sim.New(opts)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	got := gridText(w.Board(), w.Pieces())
	want := "+----+\n|....|\n|....|\n|....|\n|....|\n+----+"
	if got != want {
		t.Errorf("gridText() =\n%s\nexpected\n%s", got, want)
	}
}
