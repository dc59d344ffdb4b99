// Package rng implements the RNGPort with hashed, named streams. With a
// configured base seed every stream is reproducible per
// (run, stage, iteration); with seed zero the factory picks fresh entropy
// at construction so successive runs differ while iterations within a run
// still get independent streams.
package rng

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"math/rand"
	"time"
)

// Factory creates deterministic or entropy-backed random streams
type Factory struct {
	baseSeed int64
}

// NewFactory creates a stream factory. A zero seed selects time-based
// entropy; any other value makes all streams replayable.
func NewFactory(baseSeed int64) *Factory {
	if baseSeed == 0 {
		baseSeed = time.Now().UnixNano()
	}
	return &Factory{baseSeed: baseSeed}
}

// BaseSeed returns the effective base seed, for the run manifest
func (f *Factory) BaseSeed() int64 {
	return f.baseSeed
}

// SeededStream creates a random number generator for a named operation
func (f *Factory) SeededStream(name string) *rand.Rand {
	return rand.New(rand.NewSource(f.deriveSeed(name)))
}

// IterationStream creates an independent RNG for one stability iteration.
// The stream key includes run, stage, and iteration number, so no two
// iterations ever share a draw sequence.
func (f *Factory) IterationStream(runID string, stage string, iteration int) *rand.Rand {
	key := fmt.Sprintf("%s|%s|%d", runID, stage, iteration)
	return rand.New(rand.NewSource(f.deriveSeed(key)))
}

func (f *Factory) deriveSeed(key string) int64 {
	h := sha256.New()
	var seedBytes [8]byte
	binary.BigEndian.PutUint64(seedBytes[:], uint64(f.baseSeed))
	h.Write(seedBytes[:])
	h.Write([]byte(key))
	sum := h.Sum(nil)
	return int64(binary.BigEndian.Uint64(sum[:8]))
}
