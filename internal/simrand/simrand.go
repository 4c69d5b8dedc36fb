// Package simrand provides the single seeded PRNG each scene draws from.
//
// Every randomized decision in the simulator (place sampling, walk direction
// coin flips, guild write-probability sampling) must come from one source per
// scene so that two runs with the same seed produce byte-identical output.
package simrand

import "math/rand/v2"

// Source is a seeded, reproducible PRNG. It wraps rand.Rand instead of the
// package-level math/rand/v2 functions, because the simulator cannot share state with any other subsystem's draws.
type Source struct {
	r *rand.Rand
}

// New returns a Source seeded deterministically from seed. The same seed
// always produces the same sequence of draws, regardless of process or
// platform, since rand.NewPCG's output does not depend on time or OS entropy.
func New(seed int64) *Source {
	return &Source{r: rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))}
}

// Float64 draws a uniform value in [0, 1), used for the place-sampling
// branch probabilities in the path planner.
func (s *Source) Float64() float64 {
	return s.r.Float64()
}

// IntN draws a uniform integer in [0, n). Used for "pick a uniformly random
// capital/major/minor/instance" and for uniform sampling inside a footprint.
func (s *Source) IntN(n int) int {
	return s.r.IntN(n)
}

// Int32N draws a uniform int32 in [0, n).
func (s *Source) Int32N(n int32) int32 {
	return s.r.Int32N(n)
}

// Bool draws a fair coin flip, used to choose between the vertical and
// horizontal step queue during a Manhattan walk.
func (s *Source) Bool() bool {
	return s.r.Float64() < 0.5
}
