//go:build !linux

package sensor

import "errors"

var errUnsupported = errors.New("sensor: not supported on this platform (requires Linux)")

// ADCReader is not available on non-Linux platforms.
type ADCReader struct{}

// NewADCReader returns an error on non-Linux platforms.
func NewADCReader() (*ADCReader, error) { return nil, errUnsupported }

func (r *ADCReader) Read() (int, error) { return 0, errUnsupported }
func (r *ADCReader) Close() error       { return nil }

// TouchReader is not available on non-Linux platforms.
type TouchReader struct{}

// DefaultTouchPin matches the linux build for flag defaults.
const DefaultTouchPin = 9

// NewTouchReader returns an error on non-Linux platforms.
func NewTouchReader(pin int) (*TouchReader, error) { return nil, errUnsupported }

func (r *TouchReader) Read() (int, error) { return 0, errUnsupported }
func (r *TouchReader) Close() error       { return nil }

// BME280 is not available on non-Linux platforms.
type BME280 struct{}

// NewBME280 returns an error on non-Linux platforms.
func NewBME280() (*BME280, error) { return nil, errUnsupported }

func (b *BME280) Sense() (float64, float64, error) { return 0, 0, errUnsupported }
func (b *BME280) Close() error                     { return nil }
