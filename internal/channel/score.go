// File path: internal/channel/score.go
package channel

import "math"

// scoreWeights: fact coverage dominates structural conformance.
const (
	coverageWeight   = 0.6
	structuralWeight = 0.4
)

// score combines fact coverage with structural conformance. A perfect 1.0
// requires full coverage and full conformance; any missing mandatory fact
// caps the score just below the pass threshold so the gate always sees it.
func score(coverage, structural float64, missing int, passThreshold float64) float64 {
	s := coverageWeight*coverage + structuralWeight*structural
	if missing > 0 {
		limit := passThreshold - 0.01
		if limit < 0 {
			limit = 0
		}
		s = math.Min(s, limit)
	}
	if s < 0 {
		return 0
	}
	if s > 1 {
		return 1
	}
	return s
}
