package mqtt

import (
	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/sensor"
)

// FakeClient records published readings for test assertions.
type FakeClient struct {
	// DeviceID namespaces the formatted payloads.
	DeviceID string

	// Readings contains all readings that were published.
	Readings []sensor.Reading

	// Payloads contains the JSON payloads that were published.
	Payloads [][]byte

	// PublishError, if set, will be returned by Publish.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// commands feeds scripted commands to the loop.
	commands chan string
}

// NewFakeClient creates a FakeClient for testing.
func NewFakeClient(deviceID string) *FakeClient {
	return &FakeClient{
		DeviceID: deviceID,
		commands: make(chan string, commandQueueCapacity),
	}
}

// Publish records the reading.
func (f *FakeClient) Publish(reading sensor.Reading, unit config.TempUnit) error {
	if f.PublishError != nil {
		return f.PublishError
	}

	f.Readings = append(f.Readings, reading)

	payload, err := FormatPayload(reading, f.DeviceID, unit)
	if err != nil {
		return err
	}
	f.Payloads = append(f.Payloads, payload)

	return nil
}

// Commands returns the scripted command channel.
func (f *FakeClient) Commands() <-chan string {
	return f.commands
}

// SendCommand queues a command as if it arrived on the command topic.
func (f *FakeClient) SendCommand(cmd string) {
	f.commands <- cmd
}

// IsConnected reports whether the fake client is "connected".
func (f *FakeClient) IsConnected() bool {
	return f.Connected
}

// Close marks the client as closed.
func (f *FakeClient) Close() error {
	f.Closed = true
	return nil
}
