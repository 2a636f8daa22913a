package harmonize

import (
	"fmt"
	"math/rand"
)

// AnonGenerator synthesizes anonymized customer identifiers of the form
// "Anon" plus seven digits for buyers whose platform discloses no reusable
// handle. Seven random digits are not cryptographically unique, so an in-run
// collision set guards against clashes with real handles and with earlier
// synthesized identifiers; a collision just re-rolls.
//
// Generation must happen single-threaded before any parallel resolution
// starts: the taken-set is the only shared mutable state in the pipeline and
// keeping it out of the parallel stage removes the need for locking.
type AnonGenerator struct {
	rng   *rand.Rand
	taken map[string]struct{}
}

// NewAnonGenerator creates a generator. A fixed seed makes synthesis
// deterministic, which the rebuild-idempotence guarantee relies on.
func NewAnonGenerator(seed int64) *AnonGenerator {
	return &AnonGenerator{
		rng:   rand.New(rand.NewSource(seed)),
		taken: make(map[string]struct{}),
	}
}

// Reserve marks a real buyer handle so no synthesized identifier can
// collide with it.
func (g *AnonGenerator) Reserve(handle string) {
	if handle != "" {
		g.taken[handle] = struct{}{}
	}
}

// Next returns a fresh anonymized identifier, re-rolling on collision
func (g *AnonGenerator) Next() string {
	for {
		id := fmt.Sprintf("Anon%07d", g.rng.Intn(10000000))
		if _, exists := g.taken[id]; exists {
			continue
		}
		g.taken[id] = struct{}{}
		return id
	}
}
