package random

import (
	"math/rand"
	"time"
)

// Source wraps a dedicated math/rand generator. Each worker goroutine owns its
// own Source; generators are never shared across goroutines.
type Source struct {
	rng *rand.Rand
}

// New builds a Source from the given seed. A zero seed derives one from the
// clock, which keeps production runs varied while tests stay reproducible.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Fork derives an independent Source seeded from this one. The master hands a
// fork to every worker so parallel draws neither serialize nor collide.
func (s *Source) Fork() *Source {
	return &Source{rng: rand.New(rand.NewSource(s.rng.Int63()))}
}

// IntBetween returns a uniform integer in [lo, hi], both bounds inclusive.
func (s *Source) IntBetween(lo, hi int) int {
	if hi < lo {
		lo, hi = hi, lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Intn returns a uniform integer in [0, n).
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// Int63 returns a non-negative uniform 63-bit integer.
func (s *Source) Int63() int64 {
	return s.rng.Int63()
}

// Float64 returns a uniform float in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Shuffle permutes items in place using the Fisher-Yates algorithm.
func Shuffle[T any](s *Source, items []T) {
	s.rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}

// Shuffled returns a shuffled copy, leaving the input untouched.
func Shuffled[T any](s *Source, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	Shuffle(s, out)
	return out
}
