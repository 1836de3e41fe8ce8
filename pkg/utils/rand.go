package utils

import (
	"golang.org/x/exp/rand"
)

// RandStream is a seeded pseudo-random stream owned by a single scenario.
// It is not safe for concurrent use; every unit of work creates its own.
type RandStream struct {
	rng *rand.Rand
}

// NewRandStream creates a stream fully determined by seed. The seed is passed through
// a splitmix64 finalizer first so numerically adjacent seeds start far apart in the
// PCG state space.
func NewRandStream(seed int64) *RandStream {
	return &RandStream{
		rng: rand.New(rand.NewSource(MixSeed(seed))),
	}
}

// MixSeed is the splitmix64 finalizer applied to a scenario seed.
func MixSeed(seed int64) uint64 {
	z := uint64(seed) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// StdNormal returns a standard normal variate
func (r *RandStream) StdNormal() float64 {
	return r.rng.NormFloat64()
}
