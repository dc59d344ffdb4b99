package importance

import (
	"featrank/domain/registry"
)

// Normalize rescales a raw importance vector onto [0,1] so the scores of
// different model families become comparable: every score is divided by the
// vector's maximum, and registry features absent from the vector are filled
// with zero. An all-zero vector stays all-zero rather than dividing; this
// keeps NaN out of everything downstream.
//
// A vector naming a feature outside the registry aborts with a schema
// mismatch: that indicates broken inputs, not a degenerate model.
func Normalize(reg *registry.Registry, raw Vector) (Vector, error) {
	if err := reg.Validate(raw); err != nil {
		return nil, err
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}

	max := 0.0
	for _, score := range raw {
		if score > max {
			max = score
		}
	}

	normalized := make(Vector, reg.Len())
	for _, name := range reg.Names() {
		score := raw[name] // zero-fill for absent features
		if max > 0 {
			normalized[name] = score / max
		} else {
			normalized[name] = 0
		}
	}
	return normalized, nil
}
