package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/blockfall/internal/games/tetris/sim"
)

func play(t *testing.T, opts sim.Options, ticks int) *Session {
	t.Helper()
	s, err := NewSession(opts)
	require.NoError(t, err)
	for i := range ticks {
		switch i % 31 {
		case 2:
			s.Step(sim.ActionLeft, sim.ActionRotateCW)
		case 9:
			s.Step(sim.ActionRight)
		case 14:
			s.Step(sim.ActionSoftDrop)
		case 20:
			s.Step(sim.ActionSoftDropRelease)
		case 27:
			s.Step(sim.ActionHardDrop)
		case 28:
			s.Step(sim.ActionHardDropRelease)
		default:
			s.Tick()
		}
	}
	return s
}

func snapshot(t *testing.T, w *sim.World) string {
	t.Helper()
	data, err := w.MarshalSnapshot()
	require.NoError(t, err)
	return string(data)
}

func TestRecorderFrames(t *testing.T) {
	var r Recorder
	r.Observe(nil)
	r.Observe(nil)
	r.Observe([]sim.Action{sim.ActionLeft})
	r.Observe([]sim.Action{sim.ActionHold, sim.ActionRotateCW})
	r.Observe(nil)
	r.Observe(nil)

	want := []Frame{
		{Gap: 3, Actions: []sim.Action{sim.ActionLeft}},
		{Gap: 1, Actions: []sim.Action{sim.ActionHold, sim.ActionRotateCW}},
		{Gap: 2},
	}
	assert.Equal(t, want, r.Frames())
	assert.Equal(t, want, r.Frames(), "Frames must not consume the trailing gap")

	r.Reset()
	assert.Empty(t, r.Frames())
}

func TestReplayDelivery(t *testing.T) {
	r := New([]Frame{
		{Gap: 2, Actions: []sim.Action{sim.ActionLeft}},
		{Gap: 1, Actions: []sim.Action{sim.ActionRight}},
		{Gap: 3},
	})

	var got [][]sim.Action
	for !r.Done() {
		got = append(got, r.Next())
	}
	assert.Equal(t, [][]sim.Action{
		nil,
		{sim.ActionLeft},
		{sim.ActionRight},
		nil,
		nil,
		nil,
	}, got)
	assert.Nil(t, r.Next(), "an exhausted replay stays quiet")
	assert.True(t, New(nil).Done())
}

func TestSessionReplaysExactly(t *testing.T) {
	for _, mode := range []sim.GravityMode{sim.GravityNormal, sim.GravityCascade, sim.GravitySticky} {
		t.Run(string(mode), func(t *testing.T) {
			opts := sim.DefaultOptions()
			opts.Seed = 99
			opts.GravityMode = mode
			s := play(t, opts, 900)

			rec := s.Recording()
			assert.Equal(t, 900, rec.Ticks())

			w, err := Run(rec)
			require.NoError(t, err)
			assert.Equal(t, snapshot(t, s.World()), snapshot(t, w))
		})
	}
}

func TestRecordingFileRoundTrip(t *testing.T) {
	opts := sim.DefaultOptions()
	opts.Seed = 1234
	opts.GravityMode = sim.GravityCascade
	opts.Mode = sim.GameMode{Type: sim.ModeB, StartLevel: 2, GarbageHeight: 3, LinesGoal: 10}
	s := play(t, opts, 400)

	live := snapshot(t, s.World())
	grid, err := GridRows(s.World().Board())
	require.NoError(t, err)

	rec := s.Recording()
	rec.ExpectedGrid = grid
	dir := t.TempDir()

	for _, name := range []string{"game.yaml", "game.json"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, "nested", name)
			require.NoError(t, Save(path, rec))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, loaded.ID)
			assert.Equal(t, rec.Frames, loaded.Frames)
			assert.Equal(t, rec.Options(), loaded.Options())

			w, err := Verify(loaded)
			require.NoError(t, err)
			assert.Equal(t, live, snapshot(t, w))
		})
	}
}

func TestYAMLFramesAreFlowSequences(t *testing.T) {
	rec := &Recording{Seed: 5, Frames: []Frame{
		{Gap: 4, Actions: []sim.Action{sim.ActionHardDrop}},
		{Gap: 1, Actions: []sim.Action{sim.ActionHardDropRelease}},
	}}
	data, err := Encode(rec, false)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- [4, harddrop]")
	assert.Contains(t, string(data), "- [1, harddrop_release]")

	data, err = Encode(rec, true)
	require.NoError(t, err)
	assert.Contains(t, string(data), `4,`)
	assert.Contains(t, string(data), `"harddrop"`)
}

func TestDecodeLegacyJSON(t *testing.T) {
	data := []byte(`{
		"seed": 42,
		"boardHeight": 20,
		"cascadeGravity": true,
		"gameMode": {"type": "a", "startLevel": 1},
		"frames": [[3, "left"], [1, "harddrop"], [1, "harddrop_release"], [10]]
	}`)
	rec, err := Decode(data, true)
	require.NoError(t, err)
	assert.Equal(t, sim.GravityCascade, rec.Options().GravityMode)
	assert.Equal(t, 15, rec.Ticks())

	w, err := Run(rec)
	require.NoError(t, err)
	assert.Equal(t, 40, w.Score().Score, "one hard drop from the spawn row")
	assert.Equal(t, 4, w.Board().Occupied())
}

func TestVerifyMismatch(t *testing.T) {
	rec := &Recording{
		Seed:         3,
		Mode:         sim.GameMode{Type: sim.ModeA, StartLevel: 1},
		Frames:       []Frame{{Gap: 1, Actions: []sim.Action{sim.ActionHardDrop}}, {Gap: 1, Actions: []sim.Action{sim.ActionHardDropRelease}}},
		ExpectedGrid: []string{"          "},
	}
	_, err := Verify(rec)
	assert.ErrorIs(t, err, ErrGridMismatch)
}

func TestMalformedRecordings(t *testing.T) {
	tests := []struct {
		name string
		data string
		json bool
	}{
		{"not yaml", "seed: [1", false},
		{"frame is a scalar", "seed: 1\nframes:\n  - 3\n", false},
		{"empty frame", "seed: 1\nframes:\n  - []\n", false},
		{"zero gap", "seed: 1\nframes:\n  - [0, left]\n", false},
		{"unknown action", "seed: 1\nframes:\n  - [1, jump]\n", false},
		{"bad gravity", "seed: 1\ngravity_mode: sideways\nframes: []\n", false},
		{"bad mode", "seed: 1\ngame_mode: {type: c}\nframes: []\n", false},
		{"json gap is a string", `{"seed": 1, "frames": [["1", "left"]]}`, true},
		{"json action is a number", `{"seed": 1, "frames": [[1, 2]]}`, true},
		{"json empty frame", `{"seed": 1, "frames": [[]]}`, true},
		{"json unknown action", `{"seed": 1, "frames": [[1, "jump"]]}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), tt.json)
			assert.ErrorIs(t, err, ErrMalformedRecording)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUnknownActionRejectedWhileDecoding(t *testing.T) {
	_, err := Decode([]byte("seed: 1\nframes:\n  - [1, left]\n  - [2, jump]\n"), false)
	require.ErrorIs(t, err, ErrMalformedRecording)
	assert.Contains(t, err.Error(), "line 4")
	assert.Contains(t, err.Error(), `unknown action "jump"`)

	_, err = Decode([]byte(`{"seed": 1, "frames": [[1, "harddrop", "fly"]]}`), true)
	require.ErrorIs(t, err, ErrMalformedRecording)
	assert.Contains(t, err.Error(), `unknown action "fly"`)
}

func TestSessionRestartStartsNewRecording(t *testing.T) {
	s := play(t, sim.DefaultOptions(), 50)
	s.Restart(77)
	s.Step(sim.ActionLeft)

	rec := s.Recording()
	assert.Equal(t, int64(77), rec.Seed)
	assert.Equal(t, []Frame{{Gap: 1, Actions: []sim.Action{sim.ActionLeft}}}, rec.Frames)
}
