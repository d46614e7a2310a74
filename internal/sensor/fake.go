package sensor

import "errors"

// FakeReader is a test double that returns scripted raw values.
type FakeReader struct {
	// Samples contains scripted raw values. Each call to Read() consumes
	// the next sample; the last sample repeats once exhausted.
	Samples []int

	// index tracks current position in Samples
	index int

	// Closed tracks if Close was called
	Closed bool

	// ReadError, if set, will be returned by Read()
	ReadError error
}

// NewFakeReader creates a FakeReader with the given samples.
func NewFakeReader(samples ...int) *FakeReader {
	return &FakeReader{Samples: samples}
}

// Read returns the next scripted sample.
func (f *FakeReader) Read() (int, error) {
	if f.ReadError != nil {
		return 0, f.ReadError
	}
	if len(f.Samples) == 0 {
		return 0, errors.New("no samples configured")
	}

	sample := f.Samples[f.index]
	if f.index < len(f.Samples)-1 {
		f.index++
	}
	return sample, nil
}

// Close marks the reader as closed.
func (f *FakeReader) Close() error {
	f.Closed = true
	return nil
}

// FakeClimate is a test double for the climate sensor.
type FakeClimate struct {
	TempC    float64
	Humidity float64

	// SenseError, if set, will be returned by Sense()
	SenseError error

	Closed bool
}

// Sense returns the configured values.
func (f *FakeClimate) Sense() (float64, float64, error) {
	if f.SenseError != nil {
		return 0, 0, f.SenseError
	}
	return f.TempC, f.Humidity, nil
}

// Close marks the sensor as closed.
func (f *FakeClimate) Close() error {
	f.Closed = true
	return nil
}
