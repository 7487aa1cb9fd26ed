package puzzle

import (
	"hash/fnv"
	"math/rand"
)

// newRand returns the PRNG owned by a puzzle. The same seed always yields
// the same sequence, so shapes and scatter are reproducible from the id.
func newRand(seed string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}
