// Package sim provides a deterministic simulated orientation source for
// development and tests.
package sim

import (
	"fmt"
	"math"
	"time"

	"orientd/internal/sensor"
)

type Config struct {
	// RelativeAvailable and AbsoluteAvailable control which kinds resolve;
	// disabling the relative kind exercises the pump's fallback path.
	RelativeAvailable bool
	AbsoluteAvailable bool

	// Frozen sources report a zero timestamp forever (a sensor that never
	// produces its first reading).
	Frozen bool
}

// Provider is a sensor.Provider producing smooth deterministic angles.
type Provider struct {
	cfg   Config
	start time.Time
}

// NewProvider builds a simulated provider with both kinds available unless
// cfg says otherwise.
func NewProvider(cfg Config) *Provider {
	return &Provider{cfg: cfg, start: time.Now()}
}

func (p *Provider) Subscribe(kind sensor.Kind, resolve func(sensor.Subscription, error)) {
	available := p.cfg.AbsoluteAvailable
	if kind == sensor.RelativeOrientation {
		available = p.cfg.RelativeAvailable
	}
	if !available {
		resolve(nil, fmt.Errorf("sim: %s not available", kind))
		return
	}
	resolve(&source{start: p.start, frozen: p.cfg.Frozen}, nil)
}

// ReadingAt returns the deterministic reading for a given elapsed time.
// Distinct per-axis periods keep the motion from looking repetitive.
func ReadingAt(elapsed time.Duration) sensor.Reading {
	t := elapsed.Seconds()
	return sensor.Reading{
		Alpha:     math.Mod(30*t, 360),
		Beta:      20 * math.Sin(t),
		Gamma:     15 * math.Cos(0.7*t),
		Timestamp: t,
	}
}

type source struct {
	start     time.Time
	frozen    bool
	suspended bool
}

func (s *source) Read() (sensor.Reading, bool) {
	if s.suspended {
		return sensor.Reading{}, false
	}
	if s.frozen {
		return sensor.NoReading(), true
	}
	elapsed := time.Since(s.start)
	if elapsed <= 0 {
		elapsed = time.Nanosecond
	}
	return ReadingAt(elapsed), true
}

func (s *source) Suspend() { s.suspended = true }
func (s *source) Resume()  { s.suspended = false }
