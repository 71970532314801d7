package tui

import (
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/blockfall/internal/core"
)

func sessionUpdate(t *testing.T, m SessionModel, msg tea.Msg) SessionModel {
	t.Helper()
	next, _ := m.Update(msg)
	sm, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update() returned %T", next)
	}
	return sm
}

func testSession(seed int64) SessionModel {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: seed}
	return NewSessionModel(nil, cfg, "tester", log.New(io.Discard))
}

func TestSessionFixedSeed(t *testing.T) {
	m := testSession(5)
	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.gameModel == nil {
		t.Fatal("enter should start the selected mode")
	}
	if m.gameModel.config.Seed != 5 {
		t.Errorf("seed = %d, expected the server seed", m.gameModel.config.Seed)
	}

	m = sessionUpdate(t, m, runeKey('p'))
	m = sessionUpdate(t, m, TickMsg{})
	m = sessionUpdate(t, m, runeKey('r'))
	m = sessionUpdate(t, m, TickMsg{})
	if m.gameModel.config.Seed != 5 {
		t.Errorf("restart changed the seed to %d", m.gameModel.config.Seed)
	}
}

func TestSessionRandomSeed(t *testing.T) {
	m := testSession(0)
	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.gameModel == nil || m.gameModel.config.Seed == 0 {
		t.Fatal("sessions without a server seed should pick one per game")
	}
}

func TestSessionBackToMenu(t *testing.T) {
	m := testSession(3)
	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = sessionUpdate(t, m, runeKey('p'))
	m = sessionUpdate(t, m, TickMsg{})
	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.gameModel != nil {
		t.Fatal("leaving a paused game should return to the menu")
	}
	if m.quitting {
		t.Error("going back must keep the session open")
	}

	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.scoreboard == nil {
		t.Fatal("tab should open the scoreboard")
	}
	m = sessionUpdate(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.scoreboard != nil {
		t.Error("esc should close the scoreboard")
	}

	next, cmd := m.Update(runeKey('q'))
	if !next.(SessionModel).quitting || cmd == nil {
		t.Error("q in the menu should end the session")
	}
}
