package ports

import (
	"math/rand"
)

// RNGPort provides named random number streams. Each stability iteration
// draws from its own independent stream; when a base seed is configured the
// streams are deterministic per (run, stage, iteration) so a run can be
// replayed exactly.
type RNGPort interface {
	// SeededStream creates a random number generator for a named operation
	SeededStream(name string) *rand.Rand

	// IterationStream creates an independent RNG for one stability
	// iteration. Successive iterations never share a stream.
	IterationStream(runID string, stage string, iteration int) *rand.Rand
}
