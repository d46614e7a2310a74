package mqtt

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/sensor"
)

func TestTopics(t *testing.T) {
	if got := DataTopic("042"); got != "sensors/moisture/esp32-042/data" {
		t.Errorf("DataTopic: got %q", got)
	}
	if got := CmdTopic("042"); got != "sensors/moisture/esp32-042/cmd" {
		t.Errorf("CmdTopic: got %q", got)
	}
}

func TestFormatPayloadNullClimate(t *testing.T) {
	r := sensor.Reading{
		Raw:         6245,
		MoisturePct: 50,
		Time:        time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
	}

	data, err := FormatPayload(r, "042", config.UnitCelsius)
	if err != nil {
		t.Fatalf("format: %v", err)
	}

	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if m["moisture"] != float64(50) {
		t.Errorf("moisture: got %v", m["moisture"])
	}
	if m["raw"] != float64(6245) {
		t.Errorf("raw: got %v", m["raw"])
	}
	// Disabled climate sensor serializes as null, not absent.
	if v, ok := m["temp"]; !ok || v != nil {
		t.Errorf("temp: got %v (present=%v), want null", v, ok)
	}
	if v, ok := m["humidity"]; !ok || v != nil {
		t.Errorf("humidity: got %v (present=%v), want null", v, ok)
	}
	if m["device_id"] != "042" {
		t.Errorf("device_id: got %v", m["device_id"])
	}
	if m["timestamp"] != "2026-03-01T12:30:00Z" {
		t.Errorf("timestamp: got %v", m["timestamp"])
	}
}

func TestFormatPayloadTempUnit(t *testing.T) {
	temp, hum := 20.0, 55.0
	r := sensor.Reading{
		Raw:         5200,
		MoisturePct: 77,
		Temperature: &temp,
		Humidity:    &hum,
		Time:        time.Now(),
	}

	var p Payload
	data, err := FormatPayload(r, "007", config.UnitCelsius)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Temp == nil || *p.Temp != 20 {
		t.Errorf("celsius temp: got %v", p.Temp)
	}

	data, err = FormatPayload(r, "007", config.UnitFahrenheit)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.Temp == nil || *p.Temp != 68 {
		t.Errorf("fahrenheit temp: got %v, want 68", p.Temp)
	}
	if p.Humidity == nil || *p.Humidity != 55 {
		t.Errorf("humidity: got %v", p.Humidity)
	}

	// The source reading must not be mutated by the conversion.
	if temp != 20.0 {
		t.Errorf("source temperature mutated: %v", temp)
	}
}

func TestFakeClientRecords(t *testing.T) {
	f := NewFakeClient("042")

	r := sensor.Reading{Raw: 6245, MoisturePct: 50, Time: time.Now()}
	if err := f.Publish(r, config.UnitCelsius); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(f.Readings) != 1 || f.Readings[0].Raw != 6245 {
		t.Errorf("readings: got %+v", f.Readings)
	}
	if len(f.Payloads) != 1 {
		t.Errorf("payloads: got %d", len(f.Payloads))
	}
}

func TestFakeClientCommands(t *testing.T) {
	f := NewFakeClient("042")
	f.SendCommand(CommandReboot)

	select {
	case cmd := <-f.Commands():
		if cmd != CommandReboot {
			t.Errorf("got %q, want %q", cmd, CommandReboot)
		}
	default:
		t.Fatal("command not queued")
	}
}
