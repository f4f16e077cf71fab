package orientation

import "math"

// significantThreshold is the minimum per-axis change, in degrees, worth
// reporting. It suppresses event floods from sensor noise while remaining
// responsive to real motion. The boundary is inclusive.
const significantThreshold = 0.1

func angleDiffersSignificantly(a, b *float64) bool {
	if (a == nil) != (b == nil) {
		return true
	}
	return a != nil && math.Abs(*a-*b) >= significantThreshold
}

func significantlyDifferent(last, cur Sample) bool {
	return angleDiffersSignificantly(last.Alpha, cur.Alpha) ||
		angleDiffersSignificantly(last.Beta, cur.Beta) ||
		angleDiffersSignificantly(last.Gamma, cur.Gamma)
}

// shouldFireEvent decides whether candidate is worth delivering, given the
// last delivered sample. Transient sensor gaps never fire; an all-absent
// candidate always fires (losing every axis is itself a reportable
// transition); otherwise at least one axis must differ significantly.
func shouldFireEvent(last, candidate Sample) bool {
	if !candidate.AllSensorsActive {
		return false
	}
	if candidate.Alpha == nil && candidate.Beta == nil && candidate.Gamma == nil {
		return true
	}
	return significantlyDifferent(last, candidate)
}
