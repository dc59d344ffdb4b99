package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// Domain-specific hash types
type (
	RegistryHash Hash
	RunHash      Hash
)

func NewRegistryHash(data []byte) RegistryHash { return RegistryHash(NewHash(data)) }
func NewRunHash(data []byte) RunHash           { return RunHash(NewHash(data)) }

func (h RegistryHash) String() string { return Hash(h).String() }
func (h RunHash) String() string      { return Hash(h).String() }

// ComputeRegistryHash fingerprints an ordered feature list.
// Order matters: two registries with the same names in different order are
// different registries (rank tie-breaking depends on order).
func ComputeRegistryHash(features []string) RegistryHash {
	var data strings.Builder
	for _, f := range features {
		data.WriteString(f)
		data.WriteString("\x00")
	}
	return NewRegistryHash([]byte(data.String()))
}

// ComputeRunHash fingerprints a run's inputs for replayability
func ComputeRunHash(registryHash RegistryHash, models []string, iterations int, fraction float64, seed int64) RunHash {
	var data strings.Builder
	data.WriteString(registryHash.String())
	for _, m := range models {
		data.WriteString(m)
		data.WriteString("\x00")
	}
	data.WriteString(fmt.Sprintf("n=%d|f=%.6f|s=%d", iterations, fraction, seed))
	return NewRunHash([]byte(data.String()))
}
