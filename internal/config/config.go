// Package config holds the device configuration: Wi-Fi credentials,
// calibration points, MQTT broker details, and display settings. The Store
// owns the single mutable copy, validates updates, and persists to a JSON
// file. Everything else reads point-in-time copies.
package config

import (
	"errors"
	"fmt"
)

// SensorType selects the moisture probe wiring.
type SensorType string

const (
	SensorExternalADC   SensorType = "external_adc"
	SensorInternalTouch SensorType = "internal_touch"
)

// TempUnit selects the unit used on the status page and in telemetry.
type TempUnit string

const (
	UnitCelsius    TempUnit = "C"
	UnitFahrenheit TempUnit = "F"
)

// Configuration is the persisted device configuration record.
type Configuration struct {
	WifiSSID     string     `json:"wifi_ssid"`
	WifiPassword string     `json:"wifi_password"`
	SensorType   SensorType `json:"sensor_type"`
	DryReading   int        `json:"dry_reading"`
	WetReading   int        `json:"wet_reading"`
	DHTEnabled   bool       `json:"dht_enabled"`
	TempUnit     TempUnit   `json:"temp_unit"`
	Brightness   int        `json:"brightness"`
	MQTTHost     string     `json:"mqtt_broker_host"`
	MQTTPort     int        `json:"mqtt_broker_port"`
	MQTTUsername string     `json:"mqtt_username,omitempty"`
	MQTTPassword string     `json:"mqtt_password,omitempty"`
	DeviceID     string     `json:"device_id"`
}

// Default returns the factory configuration. Calibration points match the
// stock capacitive probe (raw value falls as moisture rises).
func Default() Configuration {
	return Configuration{
		SensorType: SensorExternalADC,
		DryReading: 8191,
		WetReading: 4300,
		TempUnit:   UnitCelsius,
		Brightness: 128,
		MQTTPort:   1883,
	}
}

// Update is a partial configuration submitted by the portal. Nil fields are
// left unchanged; blank strings for credentials are likewise left unchanged
// so a form submit never wipes a stored secret.
type Update struct {
	WifiSSID     *string
	WifiPassword *string
	SensorType   *SensorType
	DryReading   *int
	WetReading   *int
	DHTEnabled   *bool
	TempUnit     *TempUnit
	Brightness   *int
	MQTTHost     *string
	MQTTPort     *int
	MQTTUsername *string
	MQTTPassword *string
}

// ValidationError reports a rejected field in a portal submission.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Msg)
}

// merge applies u on top of cur and returns the result. Brightness is
// clamped rather than rejected; everything else that fails validation
// returns a *ValidationError and the original configuration.
func merge(cur Configuration, u Update) (Configuration, error) {
	next := cur

	if u.WifiSSID != nil && *u.WifiSSID != "" {
		next.WifiSSID = *u.WifiSSID
	}
	if u.WifiPassword != nil && *u.WifiPassword != "" {
		next.WifiPassword = *u.WifiPassword
	}
	if u.SensorType != nil {
		switch *u.SensorType {
		case SensorExternalADC, SensorInternalTouch:
			next.SensorType = *u.SensorType
		default:
			return cur, &ValidationError{Field: "sensor_type", Msg: fmt.Sprintf("unknown type %q", *u.SensorType)}
		}
	}
	if u.DryReading != nil {
		next.DryReading = *u.DryReading
	}
	if u.WetReading != nil {
		next.WetReading = *u.WetReading
	}
	if next.DryReading == next.WetReading {
		return cur, &ValidationError{Field: "dry/wet", Msg: "dry and wet readings must differ"}
	}
	if u.DHTEnabled != nil {
		next.DHTEnabled = *u.DHTEnabled
	}
	if u.TempUnit != nil {
		switch *u.TempUnit {
		case UnitCelsius, UnitFahrenheit:
			next.TempUnit = *u.TempUnit
		default:
			return cur, &ValidationError{Field: "temp_unit", Msg: fmt.Sprintf("unknown unit %q", *u.TempUnit)}
		}
	}
	if u.Brightness != nil {
		next.Brightness = clampBrightness(*u.Brightness)
	}
	if u.MQTTHost != nil && *u.MQTTHost != "" {
		next.MQTTHost = *u.MQTTHost
	}
	if u.MQTTPort != nil {
		if *u.MQTTPort < 1 || *u.MQTTPort > 65535 {
			return cur, &ValidationError{Field: "mqtt_port", Msg: "port must be in 1..65535"}
		}
		next.MQTTPort = *u.MQTTPort
	}
	if u.MQTTUsername != nil && *u.MQTTUsername != "" {
		next.MQTTUsername = *u.MQTTUsername
	}
	if u.MQTTPassword != nil && *u.MQTTPassword != "" {
		next.MQTTPassword = *u.MQTTPassword
	}

	return next, nil
}

func clampBrightness(b int) int {
	if b < 0 {
		return 0
	}
	if b > 255 {
		return 255
	}
	return b
}

// validate checks a full configuration as loaded from disk.
func validate(c Configuration) error {
	if c.DryReading == c.WetReading {
		return errors.New("dry and wet readings are equal")
	}
	if c.SensorType != SensorExternalADC && c.SensorType != SensorInternalTouch {
		return fmt.Errorf("unknown sensor type %q", c.SensorType)
	}
	if c.TempUnit != UnitCelsius && c.TempUnit != UnitFahrenheit {
		return fmt.Errorf("unknown temp unit %q", c.TempUnit)
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		return fmt.Errorf("brightness %d outside 0..255", c.Brightness)
	}
	if c.MQTTPort < 1 || c.MQTTPort > 65535 {
		return fmt.Errorf("mqtt port %d outside 1..65535", c.MQTTPort)
	}
	return nil
}

// DisplayTemp converts a temperature captured in °C into the configured unit.
func (c Configuration) DisplayTemp(tempC float64) float64 {
	if c.TempUnit == UnitFahrenheit {
		return tempC*9/5 + 32
	}
	return tempC
}
