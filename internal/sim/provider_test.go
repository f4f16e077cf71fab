package sim

import (
	"testing"
	"time"

	"orientd/internal/sensor"
)

func subscribe(t *testing.T, p *Provider, kind sensor.Kind) (sensor.Subscription, error) {
	t.Helper()
	var sub sensor.Subscription
	var err error
	resolved := false
	p.Subscribe(kind, func(s sensor.Subscription, e error) {
		sub, err = s, e
		resolved = true
	})
	if !resolved {
		t.Fatalf("Subscribe did not resolve synchronously")
	}
	return sub, err
}

func TestReadingAtIsDeterministic(t *testing.T) {
	a := ReadingAt(3 * time.Second)
	b := ReadingAt(3 * time.Second)
	if a != b {
		t.Fatalf("same elapsed produced %+v and %+v", a, b)
	}
	if a.Timestamp != 3 {
		t.Fatalf("timestamp=%v want 3", a.Timestamp)
	}
	if a.Alpha < 0 || a.Alpha >= 360 {
		t.Fatalf("alpha=%v out of [0,360)", a.Alpha)
	}
	if !a.HasAlpha() || !a.HasBeta() || !a.HasGamma() {
		t.Fatalf("simulated reading has absent angles: %+v", a)
	}
}

func TestSubscribeUnavailableKind(t *testing.T) {
	p := NewProvider(Config{AbsoluteAvailable: true})
	if _, err := subscribe(t, p, sensor.RelativeOrientation); err == nil {
		t.Fatalf("expected error for unavailable relative kind")
	}
	sub, err := subscribe(t, p, sensor.AbsoluteOrientation)
	if err != nil || sub == nil {
		t.Fatalf("absolute subscription failed: %v", err)
	}
}

func TestFrozenSourceNeverPopulates(t *testing.T) {
	p := NewProvider(Config{RelativeAvailable: true, Frozen: true})
	sub, err := subscribe(t, p, sensor.RelativeOrientation)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	r, ok := sub.Read()
	if !ok {
		t.Fatalf("frozen source refused the read")
	}
	if r.Timestamp != 0 {
		t.Fatalf("frozen source populated a timestamp: %v", r.Timestamp)
	}
	if r.HasAlpha() || r.HasBeta() || r.HasGamma() {
		t.Fatalf("frozen source reported angles: %+v", r)
	}
}

func TestSuspendBlocksReads(t *testing.T) {
	p := NewProvider(Config{RelativeAvailable: true})
	sub, err := subscribe(t, p, sensor.RelativeOrientation)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sub.Suspend()
	if _, ok := sub.Read(); ok {
		t.Fatalf("read succeeded while suspended")
	}

	sub.Resume()
	r, ok := sub.Read()
	if !ok || r.Timestamp <= 0 {
		t.Fatalf("resume did not restore reads: ok=%v r=%+v", ok, r)
	}
}
