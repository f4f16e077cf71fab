//go:build linux && (arm || arm64)

package indicator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/warthog618/go-gpiocdev"
)

// openGPIO drives the given BCM GPIO as a digital output using the Linux
// GPIO character device (libgpiod).
func openGPIO(pin int) (gpioDriver, error) {
	if pin <= 0 {
		return nil, fmt.Errorf("invalid gpio pin %d", pin)
	}

	// On Pi, line names are commonly "GPIO18", etc.
	lineName := fmt.Sprintf("GPIO%d", pin)

	chipCandidates := []string{"/dev/gpiochip0"}
	entries, _ := os.ReadDir("/dev")
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, "gpiochip") {
			chipCandidates = append(chipCandidates, filepath.Join("/dev", name))
		}
	}

	for _, chipPath := range chipCandidates {
		chip, err := gpiocdev.NewChip(chipPath)
		if err != nil {
			continue
		}
		offset, err := chip.FindLine(lineName)
		if err != nil {
			_ = chip.Close()
			continue
		}
		line, err := chip.RequestLine(offset, gpiocdev.AsOutput(0), gpiocdev.WithConsumer("orientd-indicator"))
		if err != nil {
			_ = chip.Close()
			continue
		}
		return &gpiodDriver{chip: chip, line: line}, nil
	}

	return nil, fmt.Errorf("gpio line %q not found (or busy)", lineName)
}

var openGPIOFn = openGPIO

type gpiodDriver struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

func (g *gpiodDriver) SetValue(v int) error {
	if g == nil || g.line == nil {
		return fmt.Errorf("gpio driver not initialized")
	}
	return g.line.SetValue(v)
}

func (g *gpiodDriver) Close() error {
	if g == nil || g.line == nil {
		return nil
	}
	_ = g.line.SetValue(0)
	err := g.line.Close()
	g.line = nil
	if g.chip != nil {
		_ = g.chip.Close()
		g.chip = nil
	}
	return err
}
