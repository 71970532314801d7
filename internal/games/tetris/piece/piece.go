// Package piece holds tetromino shapes and their rotations.
package piece

import "fmt"

// Kind is a piece type. The zero value is not a piece.
type Kind uint8

const (
	None Kind = iota
	I
	O
	T
	S
	Z
	J
	L
	Garbage // filler blocks placed by game mode B
)

// Kinds lists the seven playable tetrominoes in bag order.
var Kinds = [7]Kind{I, O, T, S, Z, J, L}

var letters = [...]string{None: "", I: "I", O: "O", T: "T", S: "S", Z: "Z", J: "J", L: "L", Garbage: "G"}

// String returns the one-letter name of the kind.
func (k Kind) String() string {
	if int(k) < len(letters) && k != None {
		return letters[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind (playable or garbage).
func (k Kind) Valid() bool {
	return k >= I && k <= Garbage
}

// Playable reports whether k is one of the seven tetrominoes.
func (k Kind) Playable() bool {
	return k >= I && k <= L
}

// ParseKind converts a one-letter name back into a Kind.
func ParseKind(s string) (Kind, error) {
	for k := I; k <= Garbage; k++ {
		if letters[k] == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("piece: unknown kind %q", s)
}

// MarshalText encodes the kind as its letter; None encodes as "".
func (k Kind) MarshalText() ([]byte, error) {
	if k == None {
		return []byte{}, nil
	}
	if !k.Valid() {
		return nil, fmt.Errorf("piece: invalid kind %d", uint8(k))
	}
	return []byte(letters[k]), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*k = None
		return nil
	}
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Cell is an offset inside a piece's bounding box.
type Cell struct {
	X, Y int
}

// shapes are the rotation-0 masks, row-major.
var shapes = map[Kind][][]uint8{
	I: {
		{0, 0, 0, 0},
		{1, 1, 1, 1},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	},
	O: {
		{1, 1},
		{1, 1},
	},
	T: {
		{0, 1, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
	S: {
		{0, 1, 1},
		{1, 1, 0},
		{0, 0, 0},
	},
	Z: {
		{1, 1, 0},
		{0, 1, 1},
		{0, 0, 0},
	},
	J: {
		{1, 0, 0},
		{1, 1, 1},
		{0, 0, 0},
	},
	L: {
		{0, 0, 1},
		{1, 1, 1},
		{0, 0, 0},
	},
}

// blockCache[kind][rotation] is filled once at init; shapes never change.
var blockCache [Garbage][4][]Cell

func init() {
	for _, k := range Kinds {
		m := shapes[k]
		for rot := range 4 {
			blockCache[k][rot] = cellsOf(m)
			m = rotateCW(m)
		}
	}
}

// rotateCW turns a square mask a quarter turn clockwise.
func rotateCW(m [][]uint8) [][]uint8 {
	n := len(m)
	out := make([][]uint8, n)
	for i := range out {
		out[i] = make([]uint8, n)
	}
	for y := range n {
		for x := range n {
			out[x][n-1-y] = m[y][x]
		}
	}
	return out
}

func cellsOf(m [][]uint8) []Cell {
	var cells []Cell
	for y, row := range m {
		for x, v := range row {
			if v != 0 {
				cells = append(cells, Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// NormalizeRotation maps any integer rotation into 0..3.
func NormalizeRotation(rot int) int {
	return ((rot % 4) + 4) % 4
}

// Blocks returns the occupied cells of kind k at the given rotation.
// The returned slice is shared and must not be modified.
func Blocks(k Kind, rot int) []Cell {
	if !k.Playable() {
		return nil
	}
	return blockCache[k][NormalizeRotation(rot)]
}

// Width is the side of the kind's bounding box.
func Width(k Kind) int {
	return len(shapes[k])
}
