package descriptor

import "math"

// Distance computes the Euclidean (L2) distance between two descriptors.
// Returns +Inf for invalid input (mismatched or empty vectors); callers are
// expected to validate lengths first.
func Distance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Matcher applies a fixed acceptance threshold to descriptor distances.
// The threshold is an empirical operating point balancing false accepts
// against false rejects for a specific extractor model, so it is injected
// configuration rather than a package constant.
type Matcher struct {
	Threshold float64
}

// NewMatcher creates a matcher with the given distance threshold.
func NewMatcher(threshold float64) *Matcher {
	return &Matcher{Threshold: threshold}
}

// IsMatch reports whether two descriptors belong to the same person.
func (m *Matcher) IsMatch(a, b []float32) bool {
	return Distance(a, b) <= m.Threshold
}
