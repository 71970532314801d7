package sim

import (
	"fmt"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// Component names as they appear in snapshots and queries.
const (
	CompBoard       = "Board"
	CompScore       = "Score"
	CompGameState   = "GameState"
	CompNextQueue   = "NextQueue"
	CompHoldPiece   = "HoldPiece"
	CompPieceTable  = "PieceTable"
	CompGameMode    = "GameMode"
	CompInput       = "Input"
	CompActivePiece = "ActivePiece"
	CompDrop        = "Drop"
)

// GravityMode selects how blocks settle after a line clear.
type GravityMode string

const (
	GravityNormal  GravityMode = "normal"
	GravityCascade GravityMode = "cascade"
	GravitySticky  GravityMode = "sticky"
)

// Valid reports whether m is a known mode.
func (m GravityMode) Valid() bool {
	switch m {
	case GravityNormal, GravityCascade, GravitySticky:
		return true
	}
	return false
}

// Phase is the lock state machine position.
type Phase string

const (
	PhasePlaying  Phase = "playing"
	PhaseLocking  Phase = "locking"
	PhaseLockNow  Phase = "lock_now"
	PhaseGameOver Phase = "gameover"
	PhaseVictory  Phase = "victory"
)

// Terminal reports whether the phase is absorbing.
func (p Phase) Terminal() bool {
	return p == PhaseGameOver || p == PhaseVictory
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	switch p {
	case PhasePlaying, PhaseLocking, PhaseLockNow, PhaseGameOver, PhaseVictory:
		return true
	}
	return false
}

// ModeType is the game mode: A is endless, B starts with garbage and has a line goal.
type ModeType string

const (
	ModeA ModeType = "a"
	ModeB ModeType = "b"
)

// Action is a per-tick input token.
type Action string

const (
	ActionLeft            Action = "left"
	ActionRight           Action = "right"
	ActionSoftDrop        Action = "softdrop"
	ActionSoftDropRelease Action = "softdrop_release"
	ActionRotateCW        Action = "rotate_cw"
	ActionRotateCCW       Action = "rotate_ccw"
	ActionHardDrop        Action = "harddrop"
	ActionHardDropRelease Action = "harddrop_release"
	ActionHold            Action = "hold"
	ActionShake           Action = "shake"
)

// Actions lists every token in a stable order.
var Actions = []Action{
	ActionLeft, ActionRight, ActionSoftDrop, ActionSoftDropRelease,
	ActionRotateCW, ActionRotateCCW, ActionHardDrop, ActionHardDropRelease,
	ActionHold, ActionShake,
}

// Valid reports whether a is a known token.
func (a Action) Valid() bool {
	for _, k := range Actions {
		if a == k {
			return true
		}
	}
	return false
}

// ParseAction validates a token string.
func ParseAction(s string) (Action, error) {
	a := Action(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown action %q", s)
	}
	return a, nil
}

// PieceID is a piece table instance id. Zero marks an empty cell.
type PieceID uint32

// Board is the playfield. Grid rows 0..BufferHeight-1 are hidden.
type Board struct {
	Width        int
	Height       int
	BufferHeight int
	VisualHeight int
	Grid         [][]PieceID
	GravityMode  GravityMode
	GridVersion  uint64
}

// Score tracks points, cleared lines and level.
type Score struct {
	Score int `json:"score"`
	Lines int `json:"lines"`
	Level int `json:"level"`
}

// GameMode holds the settings chosen when the game started.
type GameMode struct {
	Type          ModeType `json:"type" yaml:"type"`
	StartLevel    int      `json:"startLevel" yaml:"start_level"`
	GarbageHeight int      `json:"garbageHeight" yaml:"garbage_height"`
	LinesGoal     int      `json:"linesGoal,omitempty" yaml:"lines_goal,omitempty"` // 0 means no goal
	Sparsity      int      `json:"sparsity" yaml:"sparsity"`
	ManualShake   bool     `json:"manualShake" yaml:"manual_shake"`
}

// GameState is the lock state machine.
type GameState struct {
	Phase         Phase `json:"phase"`
	LockTimer     int   `json:"lockTimer"`
	LockDelay     int   `json:"lockDelay"`
	LockResets    int   `json:"lockResets"`
	MaxLockResets int   `json:"maxLockResets"`
	HardDropping  bool  `json:"hardDropping"`
}

// HoldPiece is the hold slot. Kind is piece.None when empty.
type HoldPiece struct {
	Kind    piece.Kind `json:"type"`
	PieceID PieceID    `json:"pieceId"`
	Used    bool       `json:"used"`
}

// NextQueue is the lookahead buffer and the generator that fills it.
type NextQueue struct {
	Queue []piece.Kind
	RNG   *RNG
}

// Input holds the tokens for the current tick.
type Input struct {
	Actions []Action `json:"actions"`
	Shake   bool     `json:"shake"` // settle requested, consumed by line clear
}

// ActivePiece is the falling piece. X, Y locate its bounding box.
type ActivePiece struct {
	Kind     piece.Kind `json:"type"`
	X        int        `json:"x"`
	Y        int        `json:"y"`
	Rotation int        `json:"rotation"`
	PieceID  PieceID    `json:"pieceId"`
}

// Drop is the auto-fall timer of the active piece.
type Drop struct {
	Timer    int  `json:"timer"`
	Interval int  `json:"interval"`
	SoftDrop bool `json:"softDrop"`
}
