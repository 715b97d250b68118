package placecraft

import (
	"math/rand"
	"time"
)

// newRNG returns a deterministic *rand.Rand for the given seed.
// Policy: seed == -1 samples the system clock; any other value is used
// verbatim so a fixed seed reproduces the full run.
//
// math/rand.Rand is not goroutine-safe. Each solver instance owns its own
// stream and never shares it.
func newRNG(seed int64) *rand.Rand {
	if seed == -1 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// randInt returns a uniform integer in [l, r], inclusive on both ends.
func randInt(rng *rand.Rand, l, r int) int {
	return l + rng.Intn(r-l+1)
}

// randPerm returns a uniformly shuffled permutation of {0,...,n-1}.
func randPerm(rng *rand.Rand, n int) []int {
	return rng.Perm(n)
}

// identityPerm returns the permutation mapping every index to itself.
func identityPerm(n int) []int {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	return p
}
