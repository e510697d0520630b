// Package growth holds the growth-rate formula core shared by the clamp
// applied at analysis time and the user-driven override, plus the policy
// for negative forecast values.
package growth

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Percent computes the growth percentage of total over ref. The second
// return is false when ref is zero, in which case the growth is undefined
// and rendered as "N/A" rather than treated as an error.
func Percent(ref, total float64) (float64, bool) {
	if ref == 0 {
		return 0, false
	}
	return (total - ref) / ref * 100, true
}

// ClampFloor enforces the downside growth floor: if total implies a growth
// below floor percent, it is raised to ref*(1+floor/100). There is no
// upside ceiling. Returns the possibly adjusted total.
func ClampFloor(ref, total, floor float64) float64 {
	pct, defined := Percent(ref, total)
	if !defined || pct >= floor {
		return total
	}
	return ref * (1 + floor/100)
}

// Override rescales an immutable baseline total by a user-supplied growth
// percentage. Repeated calls with the same input yield the same result
// because the baseline is never replaced by an override's output.
func Override(baseline, input float64) float64 {
	return baseline * (1 + input/100)
}

// NegativePolicy names the treatment of negative forecast values. The
// original system silently substituted a random integer; that stays the
// default but is now an explicit, configurable choice.
type NegativePolicy string

const (
	// PolicyRandom replaces a negative value with a random integer in
	// [RandomFloorMin, RandomFloorMax].
	PolicyRandom NegativePolicy = "random"
	// PolicyZero clamps negative values to zero.
	PolicyZero NegativePolicy = "zero"
	// PolicyKeep leaves negative values untouched.
	PolicyKeep NegativePolicy = "keep"
)

const (
	RandomFloorMin = 5
	RandomFloorMax = 32
)

var ErrUnknownPolicy = errors.New("unknown negative value policy")

func ParsePolicy(s string) (NegativePolicy, error) {
	switch NegativePolicy(s) {
	case PolicyRandom, PolicyZero, PolicyKeep:
		return NegativePolicy(s), nil
	case "":
		return PolicyRandom, nil
	}
	return "", fmt.Errorf("%q, %w", s, ErrUnknownPolicy)
}

// Sanitizer applies a NegativePolicy to forecast values. The random source
// is injectable so tests stay deterministic.
type Sanitizer struct {
	policy NegativePolicy
	rnd    *rand.Rand
}

// NewSanitizer builds a sanitizer for the policy. A nil src uses the
// global generator.
func NewSanitizer(policy NegativePolicy, src rand.Source) *Sanitizer {
	s := &Sanitizer{policy: policy}
	if src != nil {
		s.rnd = rand.New(src)
	}
	return s
}

// Value returns the policy's replacement for v, or v itself when it is not
// negative.
func (s *Sanitizer) Value(v float64) float64 {
	if v >= 0 {
		return v
	}
	switch s.policy {
	case PolicyZero:
		return 0
	case PolicyKeep:
		return v
	default:
		return float64(RandomFloorMin + s.intN(RandomFloorMax-RandomFloorMin+1))
	}
}

// Apply sanitizes a value slice in place.
func (s *Sanitizer) Apply(values []float64) {
	for i, v := range values {
		values[i] = s.Value(v)
	}
}

func (s *Sanitizer) intN(n int) int {
	if s.rnd != nil {
		return s.rnd.IntN(n)
	}
	return rand.IntN(n)
}
