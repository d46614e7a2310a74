//go:build linux

package sensor

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// adcSamples is how many conversions are averaged per Read. Capacitive
// probes are noisy; averaging matches the probe vendor's guidance.
const adcSamples = 10

// ADCReader reads a capacitive soil probe through an ADS1115 on the I²C bus.
type ADCReader struct {
	bus i2c.BusCloser
	pin ads1x15.PinADC
}

// NewADCReader opens the first available I²C bus and configures channel 0 of
// the ADS1115 for single-ended reads up to 3.3V.
func NewADCReader() (*ADCReader, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	bus, err := i2creg.Open("")
	if err != nil {
		return nil, fmt.Errorf("open i2c bus: %w", err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("init ads1115: %w", err)
	}

	pin, err := adc.PinForChannel(ads1x15.Channel0, 3300*physic.MilliVolt, 1*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("configure channel 0: %w", err)
	}

	return &ADCReader{bus: bus, pin: pin}, nil
}

// Read returns the raw conversion value averaged over adcSamples reads.
func (r *ADCReader) Read() (int, error) {
	var sum int64
	for i := 0; i < adcSamples; i++ {
		sample, err := r.pin.Read()
		if err != nil {
			return 0, fmt.Errorf("read adc: %w", err)
		}
		sum += int64(sample.Raw)
		time.Sleep(5 * time.Millisecond)
	}
	return int(sum / adcSamples), nil
}

// Close halts the ADC channel and releases the bus.
func (r *ADCReader) Close() error {
	if err := r.pin.Halt(); err != nil {
		r.bus.Close()
		return fmt.Errorf("halt adc pin: %w", err)
	}
	return r.bus.Close()
}
