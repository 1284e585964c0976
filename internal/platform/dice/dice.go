package dice

import (
	"math/rand/v2"
	"sync"
)

const (
	D20Sides = 20
	// NaturalMax is a critical success on the raw die; NaturalMin a
	// critical failure.
	NaturalMax = 20
	NaturalMin = 1
)

// Roller produces die rolls and uniform draws. The engine takes a Roller so
// tests can rig outcomes deterministically.
type Roller interface {
	// Roll returns a uniform integer in [1, sides].
	Roll(sides int) int
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

type randRoller struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Roller backed by the shared math/rand/v2 source.
func New() Roller {
	return sourceRoller{}
}

// NewSeeded returns a deterministic Roller for tests and replayable sims.
func NewSeeded(seed uint64) Roller {
	return &randRoller{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

type sourceRoller struct{}

func (sourceRoller) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	return rand.IntN(sides) + 1
}

func (sourceRoller) IntN(n int) int {
	if n < 1 {
		return 0
	}
	return rand.IntN(n)
}

func (sourceRoller) Float64() float64 { return rand.Float64() }

func (r *randRoller) Roll(sides int) int {
	if sides < 1 {
		return 1
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(sides) + 1
}

func (r *randRoller) IntN(n int) int {
	if n < 1 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.IntN(n)
}

func (r *randRoller) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// Between returns a uniform integer in [lo, hi] inclusive.
func Between(r Roller, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.IntN(hi-lo+1)
}

// FloatBetween returns a uniform float in [lo, hi).
func FloatBetween(r Roller, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + r.Float64()*(hi-lo)
}
