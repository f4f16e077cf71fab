package orientation

import (
	log "github.com/sirupsen/logrus"

	"orientd/internal/sensor"
)

// fallbackState tracks the one-shot relative-to-absolute fallback. Making
// the progression an explicit tagged state (rather than a bool flipped in
// place) keeps a second relative failure from ever re-triggering the
// fallback: only preferRelative can fire it.
type fallbackState int

const (
	// preferRelative: the relative source is preferred and one fallback to
	// the absolute source is still available this start cycle.
	preferRelative fallbackState = iota
	// fallingBackToAbsolute: the fallback is in flight; the absolute
	// channel is being started on behalf of a failed relative channel.
	fallingBackToAbsolute
	// fallbackExhausted: no fallback remains (absolute-only mode, or the
	// fallback has already been consumed).
	fallbackExhausted
)

func (f fallbackState) String() string {
	switch f {
	case preferRelative:
		return "prefer-relative"
	case fallingBackToAbsolute:
		return "falling-back-to-absolute"
	case fallbackExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Pump orchestrates the two orientation channels: it prefers the relative
// source, falls back to the absolute source exactly once per start cycle,
// and on every tick delivers at most one significantly-changed sample to
// its listener.
//
// Not safe for concurrent use. The owning Service serializes all calls on
// one goroutine; no internal locking exists by design of the concurrency
// model (tick, start and stop all arrive on the same thread).
type Pump struct {
	absoluteMode bool

	relative *sensor.Channel
	absolute *sensor.Channel

	provider sensor.Provider

	fb                     fallbackState
	suspendFallbackOnStart bool

	// last is the most recently delivered sample, reset on Stop so a
	// restart never suppresses the first event against pre-stop data.
	last Sample

	listener Listener

	// onReady is the default became-ready notification path, invoked once
	// both channels have resolved and no fallback work remains.
	onReady func()

	logicErrors uint64

	log *log.Entry
}

// NewPump builds a pump. absoluteMode restricts it to the
// absolute-orientation source; otherwise the relative source is preferred
// with a one-shot absolute fallback. listener and onReady may be nil.
func NewPump(absoluteMode bool, provider sensor.Provider, listener Listener, onReady func()) *Pump {
	p := &Pump{
		absoluteMode: absoluteMode,
		provider:     provider,
		fb:           fallbackExhausted,
		listener:     listener,
		onReady:      onReady,
		log:          log.WithField("component", "orientation-pump"),
	}
	p.relative = sensor.NewChannel(sensor.RelativeOrientation, p.didStartIfPossible)
	p.absolute = sensor.NewChannel(sensor.AbsoluteOrientation, p.didStartIfPossible)
	return p
}

// Start begins a start cycle. Absolute-only mode starts just the absolute
// channel. Otherwise only the relative channel starts; the absolute channel
// is started lazily on fallback, so a single pump never holds two live
// subscriptions when one suffices.
func (p *Pump) Start() {
	if p.absoluteMode {
		p.fb = fallbackExhausted
		p.absolute.Start(p.provider)
		return
	}
	p.fb = preferRelative
	p.suspendFallbackOnStart = false
	p.relative.Start(p.provider)
}

// Stop halts both channels (idempotent) and clears delivery state so a
// later Start begins from a clean slate.
func (p *Pump) Stop() {
	p.relative.Stop()

	// A stop that lands while the relative channel is still initializing
	// leaves it in ShouldSuspend. If the fallback later starts the absolute
	// channel in didStartIfPossible, that channel must come up suspended
	// rather than live.
	if p.relative.State() == sensor.ShouldSuspend && p.fb == preferRelative {
		p.suspendFallbackOnStart = true
	}

	p.absolute.Stop()

	p.last = Sample{}
}

// didStartIfPossible runs every time a channel resolves. Once both channels
// have known readiness it either performs the one-shot fallback or takes
// the default became-ready path.
func (p *Pump) didStartIfPossible() {
	if !p.SensorsReadyOrErrored() {
		return
	}

	if !p.absoluteMode && !p.relative.Live() && p.fb == preferRelative && p.provider != nil {
		// The relative source produced no live subscription: fall back to
		// the absolute source, once per start cycle.
		p.fb = fallingBackToAbsolute
		p.absolute.Start(p.provider)
		if p.suspendFallbackOnStart {
			p.absolute.Stop()
			p.suspendFallbackOnStart = false
		}
		p.fb = fallbackExhausted
		return
	}

	if p.onReady != nil {
		p.onReady()
	}
}

// SensorsReadyOrErrored reports whether both channels have known readiness.
// At most one channel may hold a live subscription; both Active at once is
// a logic error, counted and logged rather than crashing the daemon.
func (p *Pump) SensorsReadyOrErrored() bool {
	if !p.relative.ReadyOrErrored() || !p.absolute.ReadyOrErrored() {
		return false
	}
	if p.relative.State() == sensor.Active && p.absolute.State() == sensor.Active {
		p.logicErrors++
		p.log.WithFields(log.Fields{
			"relative": p.relative.State().String(),
			"absolute": p.absolute.State().String(),
		}).Error("both orientation channels active")
	}
	return true
}

// Tick computes the current sample and delivers it when the filter deems
// it a significant change over the last delivered one.
func (p *Pump) Tick() {
	s := p.currentSample()
	if !shouldFireEvent(p.last, s) {
		return
	}
	p.last = s
	if p.listener != nil {
		p.listener.OrientationChanged(s)
	}
}

// currentSample pulls from the preferred readable source. With no readable
// source, AllSensorsActive mirrors the absolute-mode flag: an absolute-only
// pump whose sensor is gone reports the all-absent state, while an auto
// pump stays silent through the gap.
func (p *Pump) currentSample() Sample {
	if !p.absoluteMode && p.relative.ReadingCouldBeRead() {
		return p.sampleFromChannel(p.relative, false)
	}
	if p.absolute.ReadingCouldBeRead() {
		return p.sampleFromChannel(p.absolute, true)
	}
	return Sample{Absolute: p.absoluteMode, AllSensorsActive: p.absoluteMode}
}

func (p *Pump) sampleFromChannel(c *sensor.Channel, absolute bool) Sample {
	r, ok := c.Read()
	if !ok || r.Timestamp == 0 {
		// A zero timestamp means the source has not produced a first
		// reading yet; report a transient gap, never absent angles.
		return Sample{}
	}
	return sampleFromReading(r, absolute)
}

// Last returns the most recently delivered sample.
func (p *Pump) Last() Sample { return p.last }

// RelativeState and AbsoluteState expose channel states for snapshots.
func (p *Pump) RelativeState() sensor.State { return p.relative.State() }
func (p *Pump) AbsoluteState() sensor.State { return p.absolute.State() }

// Fallback returns the current fallback progression, for snapshots.
func (p *Pump) Fallback() string { return p.fb.String() }

// LogicErrors returns how many times the mutual-exclusion invariant was
// observed violated.
func (p *Pump) LogicErrors() uint64 { return p.logicErrors }
