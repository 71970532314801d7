package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/replay"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// Recorder is implemented by games that record their input stream.
type Recorder interface {
	Recording() *replay.Recording
}

// Options tunes a game session beyond the runtime config.
type Options struct {
	// RecordPath, when set, receives the recording of every finished game
	// as YAML or JSON (by extension).
	RecordPath string

	// FixedSeed replays the same piece sequence after a restart.
	FixedSeed bool

	// SoftDropHold is how long soft drop stays on after the last down key
	// event. Zero uses DefaultSoftDropHold.
	SoftDropHold time.Duration

	// Logger reports persistence failures. Nil discards them.
	Logger *log.Logger
}

// GameModel is the Bubble Tea model for one game, from the first tick to
// the player leaving it. It saves the result once per finished game.
type GameModel struct {
	game       registry.Game
	screen     *core.Screen
	store      *storage.Store
	config     core.RuntimeConfig
	opts       Options
	input      *InputAdapter
	keyMapper  *KeyMapper
	gameState  core.GameState
	quitting   bool
	backToMenu bool
	scoreSaved bool // Whether the result has been saved for the current game
	quitOnBack bool // Standalone play has no menu to return to
}

// NewGameModel creates a new Bubble Tea model for the given game.
func NewGameModel(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) GameModel {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return GameModel{
		game:      game,
		screen:    core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		store:     store,
		config:    cfg,
		opts:      opts,
		input:     NewInputAdapter(HoldTicks(opts.SoftDropHold, cfg.TickInterval())),
		keyMapper: NewKeyMapper(),
	}
}

// Init initializes the model and starts the game.
func (m GameModel) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickInterval())
}

// Update handles messages and updates the model state.
func (m GameModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		// The well has a fixed size, so a resize only changes the canvas.
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m GameModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionBack:
		// Leaving mid-game needs a pause first
		if m.gameState.GameOver || m.gameState.Paused {
			m.backToMenu = true
			if m.quitOnBack {
				return m, tea.Quit
			}
		}
	case core.ActionRestart:
		if m.gameState.GameOver || m.gameState.Paused {
			m.input.Press(core.ActionRestart)
		}
	case core.ActionConfirm:
		// Enter on the end screen starts over
		if m.gameState.GameOver {
			m.input.Press(core.ActionRestart)
		}
	default:
		m.input.Press(action)
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m GameModel) handleTick() (tea.Model, tea.Cmd) {
	frame := m.input.Frame()

	if frame.Has(core.ActionRestart) {
		m.restart()
		return m, tickCmd(m.config.TickInterval())
	}

	result := m.game.Step(frame)
	m.gameState = result.State

	// Save the result on game over (once)
	if m.gameState.GameOver && !m.scoreSaved {
		m.saveResult()
		m.scoreSaved = true
	}

	return m, tickCmd(m.config.TickInterval())
}

// restart begins a new game, with a fresh seed unless the seed is fixed.
// A running game is abandoned without saving.
func (m *GameModel) restart() {
	if !m.opts.FixedSeed {
		m.config.Seed = time.Now().UnixNano()
	}
	m.game.Reset(m.config)
	m.gameState = m.game.State()
	m.scoreSaved = false
	m.input.Reset()
}

// saveResult stores the score and, when the game records input, the
// recording. Failures are logged and never interrupt play.
func (m *GameModel) saveResult() {
	entry := storage.ScoreEntry{
		GameID: m.game.ID(),
		Score:  m.gameState.Score,
		Lines:  m.gameState.Lines,
		Level:  m.gameState.Level,
		Seed:   m.config.Seed,
	}

	if r, ok := m.game.(Recorder); ok {
		rec := r.Recording()
		rec.ID = uuid.New()
		if m.opts.RecordPath != "" {
			if err := replay.Save(m.opts.RecordPath, rec); err != nil {
				m.logError("could not save recording", err, "path", m.opts.RecordPath)
			}
		}
		if m.store != nil && entry.Score > 0 {
			data, err := replay.Encode(rec, false)
			if err == nil {
				err = m.store.SaveRecording(rec.ID, entry.GameID, data)
			}
			if err != nil {
				m.logError("could not store recording", err, "id", rec.ID)
			} else {
				entry.RecordingID = rec.ID
			}
		}
	}

	if m.store == nil || entry.Score == 0 {
		return
	}
	if _, err := m.store.SaveScore(entry); err != nil {
		m.logError("could not save score", err, "game", entry.GameID)
	}
}

func (m *GameModel) logError(msg string, err error, keyvals ...any) {
	if m.opts.Logger == nil {
		return
	}
	m.opts.Logger.Error(msg, append(keyvals, "error", err)...)
}

// saveScreenshot saves the current screen to a file.
func (m *GameModel) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return
	}
	dir := filepath.Join(home, ".blockfall", "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp)

	//nolint:errcheck // Best-effort save, game continues regardless
	os.WriteFile(filepath.Join(dir, filename), []byte(m.screen.String()), 0o600)
}

// View renders the current state to a string for display.
func (m GameModel) View() string {
	if m.quitting || m.backToMenu {
		return ""
	}

	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// IsQuitting returns true if user requested to quit entirely.
func (m GameModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m GameModel) BackToMenu() bool {
	return m.backToMenu
}

// State returns the game state as of the last tick.
func (m GameModel) State() core.GameState {
	return m.gameState
}

// Run starts the Bubble Tea program for a single game.
// It returns when the player quits or leaves the game.
func Run(game registry.Game, store *storage.Store, cfg core.RuntimeConfig, opts Options) error {
	model := NewGameModel(game, store, cfg, opts)
	model.quitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(), // Use alternate screen buffer
	)

	_, err := p.Run()
	return err
}
