package shm

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"orientd/internal/sensor"
)

// Provider grants subscriptions backed by mmap'd reading regions. A kind
// with no configured path resolves as unavailable, which is what drives the
// pump's fallback on hardware that has no relative-orientation source.
type Provider struct {
	paths map[sensor.Kind]string
	log   *log.Entry
}

// NewProvider builds a provider from per-kind buffer paths. Empty paths
// mark the kind unavailable.
func NewProvider(relativePath, absolutePath string) *Provider {
	return &Provider{
		paths: map[sensor.Kind]string{
			sensor.RelativeOrientation: relativePath,
			sensor.AbsoluteOrientation: absolutePath,
		},
		log: log.WithField("component", "shm-provider"),
	}
}

func (p *Provider) Subscribe(kind sensor.Kind, resolve func(sensor.Subscription, error)) {
	path := p.paths[kind]
	if path == "" {
		resolve(nil, fmt.Errorf("shm: no %s buffer configured", kind))
		return
	}
	data, closeFn, err := mapFile(path)
	if err != nil {
		p.log.WithFields(log.Fields{"kind": kind.String(), "path": path}).
			WithError(err).Warn("sensor buffer unavailable")
		resolve(nil, err)
		return
	}
	p.log.WithFields(log.Fields{"kind": kind.String(), "path": path}).
		Info("sensor buffer mapped")
	resolve(&subscription{data: data, close: closeFn}, nil)
}

// subscription is a read view over one mapped region. Suspend keeps the
// mapping (the resource) and only gates reads, so a restart is cheap.
type subscription struct {
	data      []byte
	close     func() error
	suspended bool
}

func (s *subscription) Read() (sensor.Reading, bool) {
	if s.suspended || s.data == nil {
		return sensor.Reading{}, false
	}
	return ReadSnapshot(s.data)
}

func (s *subscription) Suspend() { s.suspended = true }
func (s *subscription) Resume()  { s.suspended = false }
