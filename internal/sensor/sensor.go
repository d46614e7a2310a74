// Package sensor provides moisture and climate sensing with hardware
// abstraction. Real implementations use the periph.io I²C ADC and the Linux
// GPIO character device; fakes allow testing without hardware.
package sensor

import "time"

// Reader reads the raw soil-moisture value.
type Reader interface {
	// Read returns the raw sensor value, averaged over several samples.
	Read() (int, error)

	// Close releases sensor resources.
	Close() error
}

// Climate reads ambient temperature and relative humidity.
type Climate interface {
	// Sense returns temperature in °C and relative humidity in %.
	Sense() (tempC, humidity float64, err error)

	// Close releases sensor resources.
	Close() error
}

// Reading is one sampling cycle's result. It is immutable after creation and
// discarded after the cycle; no history is retained.
type Reading struct {
	Raw         int
	MoisturePct int
	// Temperature (°C) and Humidity (%RH) are nil when the climate sensor
	// is disabled or failed this cycle.
	Temperature *float64
	Humidity    *float64
	// Cycle is a monotonic per-boot counter; Time is wall-clock for display.
	Cycle uint64
	Time  time.Time
}
