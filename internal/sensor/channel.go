package sensor

import "errors"

// State is the lifecycle state of a Channel's current subscription attempt.
type State int

const (
	// Idle: never started (or explicitly reset).
	Idle State = iota
	// Initializing: start requested, grant not yet resolved.
	Initializing
	// Active: subscription granted, readings may be pulled.
	Active
	// ShouldSuspend: logically stopped while still initializing; the
	// channel suspends for real once the grant resolves.
	ShouldSuspend
	// Suspended: confirmed stopped, grant retained for cheap restart.
	Suspended
	// Errored: the subscription request failed for this session. Stable
	// until the next Start.
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case Active:
		return "active"
	case ShouldSuspend:
		return "should-suspend"
	case Suspended:
		return "suspended"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

var errNoProvider = errors.New("sensor: no provider")

// Channel owns the lifecycle of a single sensor subscription.
//
// All methods must be called from one goroutine (the pump loop). Start and
// Stop never block and never return errors; failures are representable
// states observed through ReadyOrErrored and State.
type Channel struct {
	kind  Kind
	state State
	sub   Subscription

	// onResolved fires after every subscription resolution so the owner
	// can re-evaluate readiness.
	onResolved func()
}

// NewChannel returns an Idle channel for kind. onResolved may be nil.
func NewChannel(kind Kind, onResolved func()) *Channel {
	return &Channel{kind: kind, onResolved: onResolved}
}

func (c *Channel) Kind() Kind   { return c.kind }
func (c *Channel) State() State { return c.state }

// Live reports whether the channel holds a granted subscription.
func (c *Channel) Live() bool { return c.sub != nil }

// Start requests a subscription from p. No-op when already Initializing or
// Active. A suspended channel that still holds its grant resumes in place
// instead of re-subscribing.
func (c *Channel) Start(p Provider) {
	switch c.state {
	case Initializing, Active:
		return
	case ShouldSuspend:
		// Start, Stop, Start in sequence: the original request is still in
		// flight, so just let it complete live.
		c.state = Initializing
		return
	case Suspended:
		if c.sub != nil {
			c.sub.Resume()
			c.state = Active
			c.notifyResolved()
			return
		}
	}

	c.state = Initializing
	c.sub = nil
	if p == nil {
		c.resolve(nil, errNoProvider)
		return
	}
	p.Subscribe(c.kind, c.resolve)
}

// Stop suspends the channel. A stop against a still-initializing channel is
// deferred (ShouldSuspend) so a half-constructed subscription is never torn
// down; every other non-running state is a no-op.
func (c *Channel) Stop() {
	switch c.state {
	case Initializing:
		c.state = ShouldSuspend
	case Active:
		if c.sub != nil {
			c.sub.Suspend()
		}
		c.state = Suspended
	}
}

// ReadyOrErrored reports whether this attempt has reached a state where
// readiness is known. Only Initializing and ShouldSuspend are still
// pending; in particular an Idle channel is trivially ready, since nothing
// was requested of it.
func (c *Channel) ReadyOrErrored() bool {
	return c.state != Initializing && c.state != ShouldSuspend
}

// ReadingCouldBeRead reports whether the channel is Active and its buffer
// currently yields a coherent snapshot.
func (c *Channel) ReadingCouldBeRead() bool {
	_, ok := c.Read()
	return ok
}

// Read pulls the latest snapshot from the subscription. ok is false unless
// the channel is Active and the buffer read is coherent.
func (c *Channel) Read() (Reading, bool) {
	if c.state != Active || c.sub == nil {
		return Reading{}, false
	}
	return c.sub.Read()
}

// resolve is the Subscribe callback. Failure lands in Errored with the
// grant dropped; success lands in Active, or directly in Suspended when a
// stop arrived while the request was in flight.
func (c *Channel) resolve(sub Subscription, err error) {
	if err != nil || sub == nil {
		c.sub = nil
		c.state = Errored
		c.notifyResolved()
		return
	}
	c.sub = sub
	if c.state == ShouldSuspend {
		sub.Suspend()
		c.state = Suspended
	} else {
		c.state = Active
	}
	c.notifyResolved()
}

func (c *Channel) notifyResolved() {
	if c.onResolved != nil {
		c.onResolved()
	}
}
