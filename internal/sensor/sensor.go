// Package sensor models subscriptions to platform orientation sensors.
//
// The package never touches hardware itself: a Provider hands out
// Subscriptions against some transport (shared-memory buffers, a
// simulator), and a Channel tracks the lifecycle of at most one
// subscription at a time. Concrete providers live in internal/shm and
// internal/sim.
package sensor

import "math"

// Kind identifies one orientation source.
type Kind int

const (
	RelativeOrientation Kind = iota
	AbsoluteOrientation
)

func (k Kind) String() string {
	switch k {
	case RelativeOrientation:
		return "relative-orientation"
	case AbsoluteOrientation:
		return "absolute-orientation"
	default:
		return "unknown"
	}
}

// Reading is one snapshot pulled from a source's reading buffer.
//
// Angles are degrees; NaN marks an axis the source cannot provide.
// Timestamp is seconds since an epoch chosen by the source; zero means the
// source has not produced a first reading yet.
type Reading struct {
	Alpha     float64
	Beta      float64
	Gamma     float64
	Timestamp float64
}

func (r Reading) HasAlpha() bool { return !math.IsNaN(r.Alpha) }
func (r Reading) HasBeta() bool  { return !math.IsNaN(r.Beta) }
func (r Reading) HasGamma() bool { return !math.IsNaN(r.Gamma) }

// NoReading returns a Reading with all angles absent and a zero timestamp.
func NoReading() Reading {
	nan := math.NaN()
	return Reading{Alpha: nan, Beta: nan, Gamma: nan}
}

// Subscription is a live grant to read one sensor source.
type Subscription interface {
	// Read returns the latest snapshot. ok is false when the underlying
	// buffer cannot currently be read (torn write, unmapped region,
	// suspended subscription). Timestamp interpretation is the caller's
	// job.
	Read() (r Reading, ok bool)

	// Suspend releases read access while keeping the grant allocated for a
	// cheap restart. Resume undoes it. Both are fire-and-forget; outcomes
	// surface on later reads.
	Suspend()
	Resume()
}

// Provider grants subscriptions for a sensor kind.
//
// Subscribe must invoke resolve exactly once, possibly synchronously, and
// always on the goroutine that called Subscribe. A rejected request
// resolves with a nil Subscription and a non-nil error.
type Provider interface {
	Subscribe(kind Kind, resolve func(Subscription, error))
}
