// Package mqtt publishes telemetry and receives device commands, with
// abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/sensor"
)

// DataTopic returns the telemetry topic for a device.
func DataTopic(deviceID string) string {
	return "sensors/moisture/esp32-" + deviceID + "/data"
}

// CmdTopic returns the command topic for a device. Payloads are plain
// command strings.
func CmdTopic(deviceID string) string {
	return "sensors/moisture/esp32-" + deviceID + "/cmd"
}

// CommandReboot is the only recognized command payload. Anything else on the
// command topic is ignored.
const CommandReboot = "reboot"

// Publisher publishes sensor readings.
type Publisher interface {
	// Publish sends a reading to the broker. Returns error if publishing
	// fails (must not crash the process; the caller retries next cycle).
	Publish(reading sensor.Reading, unit config.TempUnit) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Payload is the telemetry message body.
type Payload struct {
	Moisture  int      `json:"moisture"`
	Raw       int      `json:"raw"`
	Temp      *float64 `json:"temp"`
	Humidity  *float64 `json:"humidity"`
	DeviceID  string   `json:"device_id"`
	Timestamp string   `json:"timestamp"`
}

// FormatPayload creates the JSON payload for a reading. Temperature is
// converted to the configured unit; temp and humidity are null when the
// climate sensor is disabled.
func FormatPayload(reading sensor.Reading, deviceID string, unit config.TempUnit) ([]byte, error) {
	p := Payload{
		Moisture:  reading.MoisturePct,
		Raw:       reading.Raw,
		Humidity:  reading.Humidity,
		DeviceID:  deviceID,
		Timestamp: reading.Time.UTC().Format(time.RFC3339),
	}
	if reading.Temperature != nil {
		t := *reading.Temperature
		if unit == config.UnitFahrenheit {
			t = t*9/5 + 32
		}
		p.Temp = &t
	}
	return json.Marshal(p)
}
