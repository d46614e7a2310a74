//go:build !linux

package led

import "errors"

// NeoPixel is not available on non-Linux platforms.
type NeoPixel struct{}

// NewNeoPixel returns an error on non-Linux platforms.
func NewNeoPixel() (*NeoPixel, error) {
	return nil, errors.New("led: not supported on this platform (requires Linux)")
}

func (n *NeoPixel) Write(c Color) error { return errors.New("led: not supported") }
func (n *NeoPixel) Close() error        { return nil }
