//go:build linux

package led

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// NeoPixel drives a single WS2812B pixel over the SPI MOSI line, which gives
// hardware-timed NRZ pulses without bit-banging.
type NeoPixel struct {
	port spi.PortCloser
	dev  *nrzled.Dev
}

// NewNeoPixel opens the first available SPI port and configures it for one
// RGB pixel.
func NewNeoPixel() (*NeoPixel, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	port, err := spireg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open spi port: %w", err)
	}

	dev, err := nrzled.NewSPI(port, &nrzled.Opts{
		NumPixels: 1,
		Channels:  3,
		Freq:      800 * physic.KiloHertz,
	})
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("init ws2812b: %w", err)
	}

	return &NeoPixel{port: port, dev: dev}, nil
}

// Write shows the color. A single 3-byte frame at 800kHz is bounded well
// under a millisecond.
func (n *NeoPixel) Write(c Color) error {
	if _, err := n.dev.Write([]byte{c.R, c.G, c.B}); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close blanks the pixel and releases the SPI port.
func (n *NeoPixel) Close() error {
	if _, err := n.dev.Write([]byte{0, 0, 0}); err != nil {
		n.port.Close()
		return fmt.Errorf("blank frame: %w", err)
	}
	return n.port.Close()
}
