package sim

import (
	"encoding/hex"
	"fmt"
	"math/rand/v2"

	"github.com/vovakirdan/blockfall/internal/games/tetris/piece"
)

// pcgStream is mixed into the seed to derive the PCG increment.
const pcgStream = 0x9e3779b97f4a7c15

// RNG is the seeded generator owned by the next-piece queue.
// Its complete state is the PCG source, which can be exported and restored.
type RNG struct {
	src  *rand.PCG
	rand *rand.Rand
}

// NewRNG creates a generator for seed.
func NewRNG(seed int64) *RNG {
	src := rand.NewPCG(uint64(seed), uint64(seed)^pcgStream)
	return &RNG{src: src, rand: rand.New(src)}
}

// RestoreRNG rebuilds a generator from a State string.
func RestoreRNG(state string) (*RNG, error) {
	raw, err := hex.DecodeString(state)
	if err != nil {
		return nil, fmt.Errorf("rng state: %w", err)
	}
	src := &rand.PCG{}
	if err := src.UnmarshalBinary(raw); err != nil {
		return nil, fmt.Errorf("rng state: %w", err)
	}
	return &RNG{src: src, rand: rand.New(src)}, nil
}

// State exports the generator as a hex string.
func (r *RNG) State() (string, error) {
	raw, err := r.src.MarshalBinary()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// IntN returns a uniform int in [0, n).
func (r *RNG) IntN(n int) int {
	return r.rand.IntN(n)
}

// Bag returns a fresh permutation of the seven kinds (Fisher-Yates).
func (r *RNG) Bag() []piece.Kind {
	bag := piece.Kinds
	for i := len(bag) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		bag[i], bag[j] = bag[j], bag[i]
	}
	return bag[:]
}
