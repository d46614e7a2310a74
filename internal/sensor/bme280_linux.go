//go:build linux

package sensor

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// BME280 reads temperature and humidity over I²C. It stands in for the
// optional DHT-class climate sensor enabled by the dht_enabled setting.
type BME280 struct {
	bus i2c.BusCloser
	dev *bmxx80.Dev
}

// NewBME280 opens the first available I²C bus and probes the sensor at the
// usual 0x76 address.
func NewBME280() (*BME280, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	dev, err := bmxx80.NewI2C(bus, 0x76, &bmxx80.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init bme280: %w", err)
	}

	return &BME280{bus: bus, dev: dev}, nil
}

// Sense returns temperature in °C and relative humidity in %.
func (b *BME280) Sense() (float64, float64, error) {
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return 0, 0, fmt.Errorf("sense: %w", err)
	}
	return env.Temperature.Celsius(), float64(env.Humidity) / float64(physic.PercentRH), nil
}

// Close halts the sensor and releases the bus.
func (b *BME280) Close() error {
	if err := b.dev.Halt(); err != nil {
		b.bus.Close()
		return fmt.Errorf("halt bme280: %w", err)
	}
	return b.bus.Close()
}
