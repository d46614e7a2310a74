//go:build linux

package sensor

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// DefaultTouchPin is the GPIO line (BCM numbering) for the touch-style probe.
const DefaultTouchPin = 9

// touchSamples is how many charge cycles are averaged per Read.
const touchSamples = 10

// touchMaxIterations bounds a single charge measurement so a floating or
// shorted line cannot stall the sampling loop.
const touchMaxIterations = 8192

// TouchReader measures soil moisture with a bare wire on a GPIO line by
// timing the line's RC charge: the line is driven low to discharge, released
// to input, and polled until it reads high. Wetter soil means more
// capacitance and a larger count.
type TouchReader struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewTouchReader requests the given GPIO line for charge-time sampling.
func NewTouchReader(pin int) (*TouchReader, error) {
	chip, err := gpiocdev.NewChip("gpiochip0")
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsOutput(0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request touch pin %d: %w", pin, err)
	}

	return &TouchReader{chip: chip, line: line}, nil
}

// Read returns the averaged charge count over touchSamples cycles.
func (r *TouchReader) Read() (int, error) {
	var sum int
	for i := 0; i < touchSamples; i++ {
		n, err := r.charge()
		if err != nil {
			return 0, err
		}
		sum += n
	}
	return sum / touchSamples, nil
}

// charge runs one discharge/charge cycle and returns the poll count.
func (r *TouchReader) charge() (int, error) {
	// Drive low to discharge the probe.
	if err := r.line.Reconfigure(gpiocdev.AsOutput(0)); err != nil {
		return 0, fmt.Errorf("discharge touch pin: %w", err)
	}
	time.Sleep(time.Millisecond)

	// Release to input and count polls until the line charges high.
	if err := r.line.Reconfigure(gpiocdev.AsInput); err != nil {
		return 0, fmt.Errorf("release touch pin: %w", err)
	}
	for n := 0; n < touchMaxIterations; n++ {
		v, err := r.line.Value()
		if err != nil {
			return 0, fmt.Errorf("read touch pin: %w", err)
		}
		if v != 0 {
			return n, nil
		}
	}
	return touchMaxIterations, nil
}

// Close reconfigures the line to input before closing, leaving the pin in
// its boot default state.
func (r *TouchReader) Close() error {
	var errs []error
	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure touch pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close touch pin: %w", err))
		}
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
