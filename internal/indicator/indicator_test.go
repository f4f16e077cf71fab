package indicator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"orientd/internal/orientation"
)

type fakeDriver struct {
	mu     sync.Mutex
	values []int
	closed bool
}

func (d *fakeDriver) SetValue(v int) error {
	d.mu.Lock()
	d.values = append(d.values, v)
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) snapshot() ([]int, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]int(nil), d.values...), d.closed
}

func swapOpenGPIO(t *testing.T, fn func(pin int) (gpioDriver, error)) {
	t.Helper()
	prev := openGPIOFn
	openGPIOFn = fn
	t.Cleanup(func() { openGPIOFn = prev })
}

func TestDisabledIndicatorIsNoOp(t *testing.T) {
	swapOpenGPIO(t, func(pin int) (gpioDriver, error) {
		t.Fatalf("gpio opened for a disabled indicator")
		return nil, nil
	})

	ind, err := New(Config{Enable: false, GPIOPin: 18})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ind.OrientationChanged(orientation.Sample{})
	ind.Run(context.Background()) // returns immediately without a driver
	ind.Close()
}

func TestNewPropagatesOpenError(t *testing.T) {
	openErr := errors.New("no such chip")
	swapOpenGPIO(t, func(pin int) (gpioDriver, error) { return nil, openErr })

	if _, err := New(Config{Enable: true, GPIOPin: 18}); !errors.Is(err, openErr) {
		t.Fatalf("err=%v want %v", err, openErr)
	}
}

func TestEventPulsesLine(t *testing.T) {
	drv := &fakeDriver{}
	swapOpenGPIO(t, func(pin int) (gpioDriver, error) {
		if pin != 18 {
			t.Fatalf("pin=%d want 18", pin)
		}
		return drv, nil
	})

	ind, err := New(Config{Enable: true, GPIOPin: 18, Pulse: 5 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	done := make(chan struct{})
	go func() {
		ind.Run(context.Background())
		close(done)
	}()

	ind.OrientationChanged(orientation.Sample{})

	// Expect high then, after the pulse duration, low again.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		values, _ := drv.snapshot()
		if len(values) >= 2 && values[0] == 1 && values[1] == 0 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	values, _ := drv.snapshot()
	if len(values) < 2 || values[0] != 1 || values[1] != 0 {
		t.Fatalf("pulse sequence=%v want [1 0 ...]", values)
	}

	ind.Close()
	<-done

	values, closed := drv.snapshot()
	if !closed {
		t.Fatalf("driver not closed on shutdown")
	}
	if values[len(values)-1] != 0 {
		t.Fatalf("line left high on shutdown: %v", values)
	}
}

func TestEventsDuringPulseAreAbsorbed(t *testing.T) {
	drv := &fakeDriver{}
	swapOpenGPIO(t, func(pin int) (gpioDriver, error) { return drv, nil })

	ind, err := New(Config{Enable: true, GPIOPin: 18, Pulse: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer ind.Close()

	done := make(chan struct{})
	go func() {
		ind.Run(context.Background())
		close(done)
	}()

	for i := 0; i < 10; i++ {
		ind.OrientationChanged(orientation.Sample{})
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if values, _ := drv.snapshot(); len(values) >= 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}

	ind.Close()
	<-done

	values, _ := drv.snapshot()
	highs := 0
	for _, v := range values {
		if v == 1 {
			highs++
		}
	}
	if highs == 0 || highs > 3 {
		t.Fatalf("highs=%d for a burst of 10 events; values=%v", highs, values)
	}
}
