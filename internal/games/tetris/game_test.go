package tetris

import (
	"strings"
	"testing"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/replay"
	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
	"github.com/vovakirdan/blockfall/internal/registry"
)

func testConfig(seed int64) core.RuntimeConfig {
	return core.RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 60,
		Seed:     seed,
	}
}

// inputs builds a repeating input pattern.
func inputs(n int) []core.InputFrame {
	frames := make([]core.InputFrame, n)
	for i := range frames {
		frames[i] = core.NewInputFrame()
		switch i % 40 {
		case 5:
			frames[i].Set(core.ActionLeft)
			frames[i].Set(core.ActionRotateCW)
		case 12:
			frames[i].Set(core.ActionRight)
		case 30:
			frames[i].Set(core.ActionHardDrop)
		case 31:
			frames[i].Set(core.ActionHardDropRelease)
		}
	}
	return frames
}

func TestGameDeterminism(t *testing.T) {
	// Same seed and inputs must produce identical results
	for _, v := range Variants {
		t.Run(v.ID, func(t *testing.T) {
			g1, g2 := New(v), New(v)
			g1.Reset(testConfig(12345))
			g2.Reset(testConfig(12345))

			for _, in := range inputs(600) {
				g1.Step(in)
				g2.Step(in)
			}

			s1, err := g1.Snapshot()
			if err != nil {
				t.Fatalf("Snapshot() failed: %v", err)
			}
			s2, err := g2.Snapshot()
			if err != nil {
				t.Fatalf("Snapshot() failed: %v", err)
			}
			if string(s1) != string(s2) {
				t.Error("Determinism failed: snapshots differ")
			}
			if g1.State() != g2.State() {
				t.Errorf("Determinism failed: states differ. Run1=%+v, Run2=%+v", g1.State(), g2.State())
			}
		})
	}
}

func TestRecordingReplaysGame(t *testing.T) {
	g := New(Variants[1])
	g.Reset(testConfig(7))
	for _, in := range inputs(500) {
		g.Step(in)
	}

	w, err := replay.Run(g.Recording())
	if err != nil {
		t.Fatalf("replay.Run() failed: %v", err)
	}
	want, _ := g.Snapshot()
	got, _ := w.MarshalSnapshot()
	if string(want) != string(got) {
		t.Error("replaying the recording should reproduce the game")
	}
}

func TestPauseFreezesSimulation(t *testing.T) {
	g := New(Variants[0])
	g.Reset(testConfig(1))
	g.Step(core.NewInputFrame())

	pause := core.NewInputFrame()
	pause.Set(core.ActionPause)
	g.Step(pause)
	if !g.State().Paused {
		t.Fatal("game should be paused")
	}

	ticks := g.World().Ticks()
	for range 100 {
		g.Step(core.NewInputFrame())
	}
	if g.World().Ticks() != ticks {
		t.Error("paused game should not tick")
	}

	g.Step(pause)
	if g.State().Paused {
		t.Error("second pause should resume")
	}
}

func TestTokensKeepOrder(t *testing.T) {
	in := core.NewInputFrame()
	in.Set(core.ActionRotateCCW)
	in.Set(core.ActionPause)
	in.Set(core.ActionHold)
	in.Set(core.ActionLeft)

	got := Tokens(in)
	want := []sim.Action{sim.ActionRotateCCW, sim.ActionHold, sim.ActionLeft}
	if len(got) != len(want) {
		t.Fatalf("Tokens() = %v, expected %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens()[%d] = %v, expected %v", i, got[i], want[i])
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultTetrisConfig()
	cfg.Mode.GarbageHeight = 5

	tests := []struct {
		variant     Variant
		gravity     sim.GravityMode
		mode        sim.ModeType
		garbage     int
		manualShake bool
	}{
		{Variants[0], sim.GravityNormal, sim.ModeA, 0, false},
		{Variants[1], sim.GravityCascade, sim.ModeA, 0, true},
		{Variants[2], sim.GravitySticky, sim.ModeA, 0, true},
		{Variants[3], sim.GravityNormal, sim.ModeB, 5, false},
	}

	for _, tc := range tests {
		t.Run(tc.variant.ID, func(t *testing.T) {
			opts := Options(cfg, tc.variant, 9)
			if opts.GravityMode != tc.gravity {
				t.Errorf("gravity = %q, expected %q", opts.GravityMode, tc.gravity)
			}
			if opts.Mode.Type != tc.mode || opts.Mode.GarbageHeight != tc.garbage {
				t.Errorf("mode = %+v", opts.Mode)
			}
			if opts.Mode.ManualShake != tc.manualShake {
				t.Errorf("manual shake = %v, expected %v", opts.Mode.ManualShake, tc.manualShake)
			}
			if err := opts.Validate(); err != nil {
				t.Errorf("options should validate: %v", err)
			}
		})
	}

	cfg.Mode.GarbageHeight = 0
	if got := Options(cfg, Variants[3], 1).Mode.GarbageHeight; got != DefaultGarbageHeight {
		t.Errorf("garbage variant height = %d, expected %d", got, DefaultGarbageHeight)
	}
}

func TestRender(t *testing.T) {
	g := New(Variants[0])
	g.Reset(testConfig(3))
	// Soft drop the first piece out of the hidden rows.
	soft := core.NewInputFrame()
	soft.Set(core.ActionSoftDrop)
	g.Step(soft)
	for range 12 {
		g.Step(core.NewInputFrame())
	}

	screen := core.NewScreen(80, 24)
	g.Render(screen)
	out := screen.String()
	for _, want := range []string{"HOLD", "NEXT", "SCORE", "LINES", "LEVEL"} {
		if !strings.Contains(out, want) {
			t.Errorf("render is missing %q", want)
		}
	}
	if !strings.ContainsRune(out, BlockChar) {
		t.Error("the falling piece should be visible")
	}
	if !strings.ContainsRune(out, GhostChar) {
		t.Error("the ghost piece should be visible")
	}

	small := core.NewScreen(20, 10)
	g.Render(small)
	if !strings.Contains(small.String(), "too small") {
		t.Error("small screens should show a warning")
	}
}

func TestRegistered(t *testing.T) {
	for _, v := range Variants {
		g, err := registry.Create(v.ID)
		if err != nil {
			t.Fatalf("registry.Create(%q) failed: %v", v.ID, err)
		}
		if g.Title() != v.Title {
			t.Errorf("Title() = %q, expected %q", g.Title(), v.Title)
		}
	}

	list := registry.List()
	if len(list) < len(Variants) {
		t.Fatalf("registry lists %d modes, expected %d", len(list), len(Variants))
	}
	for i, v := range Variants {
		if list[i].ID != v.ID || list[i].Summary == "" {
			t.Errorf("List()[%d] = %+v, expected %q with a summary", i, list[i], v.ID)
		}
	}
}

func TestStartLevelOverride(t *testing.T) {
	SetStartLevel(7)
	defer SetStartLevel(-1)

	g := New(Variants[0])
	g.Reset(testConfig(5))
	if got := g.World().Score().Level; got != 7 {
		t.Errorf("level = %d, expected 7", got)
	}
}
