// Package orientation implements the device-orientation event pump: it
// polls one of two competing sensor sources, filters out insignificant
// changes, and delivers at most one coalesced sample per tick to a
// listener.
package orientation

import "orientd/internal/sensor"

// Sample is one coalesced device-orientation reading.
//
// Angles are degrees and may be omitted (nil) when the source cannot
// provide an axis. The zero value has all angles absent, is not absolute,
// and is not active.
type Sample struct {
	Alpha *float64 `json:"alpha,omitempty"`
	Beta  *float64 `json:"beta,omitempty"`
	Gamma *float64 `json:"gamma,omitempty"`

	// Absolute marks samples sourced from the absolute-orientation sensor.
	Absolute bool `json:"absolute"`

	// AllSensorsActive is false while any contributing sensor has not yet
	// produced a valid reading this tick. The angle fields are meaningless
	// when it is false.
	AllSensorsActive bool `json:"all_sensors_active"`
}

// sampleFromReading maps a coherent, non-stale reading into a Sample.
func sampleFromReading(r sensor.Reading, absolute bool) Sample {
	s := Sample{Absolute: absolute, AllSensorsActive: true}
	if r.HasAlpha() {
		v := r.Alpha
		s.Alpha = &v
	}
	if r.HasBeta() {
		v := r.Beta
		s.Beta = &v
	}
	if r.HasGamma() {
		v := r.Gamma
		s.Gamma = &v
	}
	return s
}

// Listener receives delivered samples.
type Listener interface {
	OrientationChanged(Sample)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(Sample)

func (f ListenerFunc) OrientationChanged(s Sample) { f(s) }

// Listeners fans a delivered sample out to each member in order. Members
// must not block; delivery happens on the pump goroutine.
type Listeners []Listener

func (ls Listeners) OrientationChanged(s Sample) {
	for _, l := range ls {
		l.OrientationChanged(s)
	}
}
