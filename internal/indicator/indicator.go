// Package indicator pulses a GPIO activity LED whenever an orientation
// event is delivered, for headless bring-up on embedded boards.
package indicator

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"orientd/internal/orientation"
)

type gpioDriver interface {
	SetValue(v int) error
	Close() error
}

type Config struct {
	Enable bool
	// GPIOPin is BCM GPIO numbering.
	GPIOPin int
	// Pulse is how long the line stays high per event.
	Pulse time.Duration
}

// Indicator drives the LED from its own goroutine so event delivery never
// blocks on the pulse duration. A disabled indicator is a safe no-op.
type Indicator struct {
	cfg Config
	drv gpioDriver

	pulseCh chan struct{}

	stopOnce sync.Once
	stopCh   chan struct{}

	log *log.Entry
}

// New opens the GPIO line when enabled. An error opening the line is
// returned; a disabled config returns a no-op indicator and no error.
func New(cfg Config) (*Indicator, error) {
	ind := &Indicator{
		cfg:     cfg,
		pulseCh: make(chan struct{}, 1),
		stopCh:  make(chan struct{}),
		log:     log.WithField("component", "indicator"),
	}
	if !cfg.Enable {
		return ind, nil
	}
	if cfg.Pulse <= 0 {
		ind.cfg.Pulse = 50 * time.Millisecond
	}
	drv, err := openGPIOFn(cfg.GPIOPin)
	if err != nil {
		return nil, fmt.Errorf("indicator: %w", err)
	}
	ind.drv = drv
	return ind, nil
}

// OrientationChanged implements orientation.Listener. Non-blocking; pulses
// already in flight absorb further events.
func (i *Indicator) OrientationChanged(orientation.Sample) {
	if i == nil || i.drv == nil {
		return
	}
	select {
	case i.pulseCh <- struct{}{}:
	default:
	}
}

// Run drives the LED until ctx is done or Close is called.
func (i *Indicator) Run(ctx context.Context) {
	if i == nil || i.drv == nil {
		return
	}
	defer func() {
		_ = i.drv.SetValue(0)
		_ = i.drv.Close()
	}()

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	lit := false

	for {
		select {
		case <-ctx.Done():
			return
		case <-i.stopCh:
			return
		case <-i.pulseCh:
			if !lit {
				if err := i.drv.SetValue(1); err != nil {
					i.log.WithError(err).Warn("gpio set failed")
					continue
				}
				lit = true
				timer.Reset(i.cfg.Pulse)
			}
		case <-timer.C:
			lit = false
			if err := i.drv.SetValue(0); err != nil {
				i.log.WithError(err).Warn("gpio clear failed")
			}
		}
	}
}

func (i *Indicator) Close() {
	if i == nil {
		return
	}
	i.stopOnce.Do(func() { close(i.stopCh) })
}
