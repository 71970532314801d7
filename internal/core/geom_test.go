package core

import "testing"

func TestRectContains(t *testing.T) {
	r := NewRect(2, 3, 4, 2)

	tests := []struct {
		name     string
		x, y     int
		expected bool
	}{
		{"top-left corner", 2, 3, true},
		{"bottom-right cell", 5, 4, true},
		{"right edge is exclusive", 6, 3, false},
		{"bottom edge is exclusive", 2, 5, false},
		{"left of rect", 1, 3, false},
		{"above rect", 2, 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Contains(tt.x, tt.y); got != tt.expected {
				t.Errorf("Contains(%d, %d) = %v, expected %v", tt.x, tt.y, got, tt.expected)
			}
		})
	}
}

func TestRectInset(t *testing.T) {
	tests := []struct {
		name     string
		r        Rect
		n        int
		expected Rect
	}{
		{"box interior", NewRect(0, 0, 22, 22), 1, NewRect(1, 1, 20, 20)},
		{"zero inset", NewRect(4, 4, 3, 3), 0, NewRect(4, 4, 3, 3)},
		{"collapses to empty", NewRect(0, 0, 3, 5), 2, NewRect(2, 2, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.r.Inset(tt.n); got != tt.expected {
				t.Errorf("Inset(%d) = %+v, expected %+v", tt.n, got, tt.expected)
			}
		})
	}

	if !NewRect(0, 0, 2, 2).Inset(1).Empty() {
		t.Error("a 2x2 rect inset by 1 should be empty")
	}
}

func TestRectCentered(t *testing.T) {
	outer := NewRect(10, 0, 22, 24)

	got := outer.Centered(12, 5)
	if got != NewRect(15, 9, 12, 5) {
		t.Errorf("Centered(12, 5) = %+v", got)
	}

	// Odd leftovers go right and down
	got = NewRect(0, 0, 5, 5).Centered(2, 2)
	if got.X != 1 || got.Y != 1 {
		t.Errorf("Centered(2, 2) = %+v, expected origin (1, 1)", got)
	}

	// Larger boxes overhang evenly
	got = NewRect(0, 0, 4, 4).Centered(8, 4)
	if got.X != -2 || got.Right() != 6 {
		t.Errorf("Centered(8, 4) = %+v, expected x range [-2, 6)", got)
	}
}
