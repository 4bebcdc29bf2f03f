// Package random draws the pokemon identifiers used by the game engine.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math"
	"math/rand/v2"
	"sync"
)

var ErrInvalidRange = errors.New("rango inválido: inicio es mayor que fin")

// Source draws a uniformly distributed integer in [low, high].
type Source interface {
	NextInRange(low, high int) (int, error)
}

// Rand is a Source backed by math/rand/v2. It is safe for concurrent use.
type Rand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Rand seeded from crypto/rand.
func New() *Rand {
	var b [16]byte
	if _, err := crand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return NewSeeded(binary.LittleEndian.Uint64(b[:8]), binary.LittleEndian.Uint64(b[8:]))
}

// NewSeeded returns a Rand that yields the same draws for the same seeds.
func NewSeeded(seed1, seed2 uint64) *Rand {
	return &Rand{rng: rand.New(rand.NewPCG(seed1, seed2))}
}

func (r *Rand) NextInRange(low, high int) (int, error) {
	if low > high {
		return 0, ErrInvalidRange
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// unsigned so that spans wider than MaxInt do not overflow
	span := uint64(high) - uint64(low)
	if span == math.MaxUint64 {
		return int(r.rng.Uint64()), nil
	}
	return low + int(r.rng.Uint64N(span+1)), nil
}

var defaultSource = New()

// Draw uses the process-wide default source.
func Draw(low, high int) (int, error) {
	return defaultSource.NextInRange(low, high)
}
