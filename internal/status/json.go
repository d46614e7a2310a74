package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Moisture      *int       `json:"moisture"`
	Raw           *int       `json:"raw"`
	Temp          *float64   `json:"temp"`
	Humidity      *float64   `json:"humidity"`
	Stale         bool       `json:"stale"`
	Connectivity  string     `json:"connectivity"`
	DeviceID      string     `json:"device_id"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Counts        CountsJSON `json:"cycle_counts"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of cycle counters.
type CountsJSON struct {
	Samples         int `json:"samples"`
	SampleFailures  int `json:"sample_failures"`
	Publishes       int `json:"publishes"`
	PublishFailures int `json:"publish_failures"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	PollMs     int64  `json:"poll_ms"`
	Broker     string `json:"broker"`
	HTTPAddr   string `json:"http_addr"`
	DryReading int    `json:"dry_reading"`
	WetReading int    `json:"wet_reading"`
	SensorType string `json:"sensor_type"`
	TempUnit   string `json:"temp_unit"`
	Brightness int    `json:"brightness"`
}

// FormatJSON returns the JSON status for the web endpoint. The moisture and
// raw fields are null before the first successful sample.
func FormatJSON(snap Snapshot) []byte {
	inner := StatusInner{
		Stale:         snap.Stale,
		Connectivity:  string(snap.Connectivity),
		DeviceID:      snap.DeviceID,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Samples:         snap.Counts.Samples,
			SampleFailures:  snap.Counts.SampleFailures,
			Publishes:       snap.Counts.Publishes,
			PublishFailures: snap.Counts.PublishFailures,
		},
		Config: ConfigJSON{
			PollMs:     snap.Config.PollMs,
			Broker:     snap.Config.Broker,
			HTTPAddr:   snap.Config.HTTPAddr,
			DryReading: snap.Config.DryReading,
			WetReading: snap.Config.WetReading,
			SensorType: snap.Config.SensorType,
			TempUnit:   snap.Config.TempUnit,
			Brightness: snap.Config.Brightness,
		},
	}

	if snap.HaveReading {
		pct := snap.Reading.MoisturePct
		raw := snap.Reading.Raw
		inner.Moisture = &pct
		inner.Raw = &raw
		inner.Temp = snap.Reading.Temperature
		inner.Humidity = snap.Reading.Humidity
	}

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}
