package shm

import (
	"testing"

	"orientd/internal/sensor"
)

func resolveOne(t *testing.T, p *Provider, kind sensor.Kind) (sensor.Subscription, error) {
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

func TestSubscribeUnconfiguredKind(t *testing.T) {
	p := NewProvider("", "/run/orientd/absolute")
	if _, err := resolveOne(t, p, sensor.RelativeOrientation); err == nil {
		t.Fatalf("expected error for kind with no configured buffer")
	}
}

func TestSubscribeMissingFile(t *testing.T) {
	p := NewProvider(t.TempDir()+"/does-not-exist", "")
	if _, err := resolveOne(t, p, sensor.RelativeOrientation); err == nil {
		t.Fatalf("expected error for missing buffer file")
	}
}

func TestSubscriptionSuspendGatesReads(t *testing.T) {
	sub := &subscription{data: make([]byte, BufferSize)}
	WriteSnapshot(sub.data, sensor.Reading{Alpha: 1, Timestamp: 2})

	if r, ok := sub.Read(); !ok || r.Timestamp != 2 {
		t.Fatalf("read before suspend: ok=%v r=%+v", ok, r)
	}

	sub.Suspend()
	if _, ok := sub.Read(); ok {
		t.Fatalf("read succeeded while suspended")
	}

	sub.Resume()
	if r, ok := sub.Read(); !ok || r.Alpha != 1 {
		t.Fatalf("read after resume: ok=%v r=%+v", ok, r)
	}
}
