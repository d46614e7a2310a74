package portal

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/soil-sensor/internal/config"
	"github.com/sweeney/soil-sensor/internal/status"
)

const baseCSS = `
body { font-family: Arial, sans-serif; text-align: center; margin: 20px; background-color: #f4f4f4; }
.container { background-color: #fff; padding: 30px; border-radius: 8px; box-shadow: 0 4px 8px rgba(0,0,0,0.1); max-width: 420px; margin: 0 auto; }
label { display: block; text-align: left; margin-top: 10px; }
input[type=text], input[type=password], input[type=number], select { width: 100%; padding: 10px; margin: 6px 0; border: 1px solid #ccc; border-radius: 4px; box-sizing: border-box; }
input[type=submit] { width: 100%; background-color: #4CAF50; color: white; padding: 14px; margin-top: 14px; border: none; border-radius: 4px; cursor: pointer; }
.message { color: #c0392b; font-weight: bold; }
.moisture-bar { height: 30px; line-height: 30px; color: white; border-radius: 4px; }
.stale { color: #f39c12; font-weight: bold; }
.data { margin: 12px 0; padding: 8px; border: 1px solid #ddd; border-radius: 4px; }
`

var formTmpl = template.Must(template.New("form").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Soil Sensor Setup</title>
<style>` + baseCSS + `</style>
</head>
<body>
<div class="container">
<h1>Soil Sensor {{.DeviceID}} Setup</h1>
{{if .Message}}<p class="message">{{.Message}}</p>{{end}}
<form action="/save" method="post">
<label for="ssid">WiFi SSID</label>
<input type="text" id="ssid" name="ssid" value="{{.Config.WifiSSID}}">
<label for="password">WiFi Password (blank keeps current)</label>
<input type="password" id="password" name="password">
<label for="sensor_type">Sensor</label>
<select id="sensor_type" name="sensor_type">
<option value="external_adc" {{if eq .Config.SensorType "external_adc"}}selected{{end}}>External ADC probe</option>
<option value="internal_touch" {{if eq .Config.SensorType "internal_touch"}}selected{{end}}>Touch pin probe</option>
</select>
<label for="dry">Dry reading (sensor in air)</label>
<input type="number" id="dry" name="dry" value="{{.Config.DryReading}}">
<label for="wet">Wet reading (sensor submerged)</label>
<input type="number" id="wet" name="wet" value="{{.Config.WetReading}}">
<label><input type="checkbox" name="dht_enabled" value="1" {{if .Config.DHTEnabled}}checked{{end}}> Temperature/humidity sensor attached</label>
<label for="temp_unit">Temperature unit</label>
<select id="temp_unit" name="temp_unit">
<option value="C" {{if eq .Config.TempUnit "C"}}selected{{end}}>Celsius</option>
<option value="F" {{if eq .Config.TempUnit "F"}}selected{{end}}>Fahrenheit</option>
</select>
<label for="brightness">LED brightness (0-255)</label>
<input type="number" id="brightness" name="brightness" value="{{.Config.Brightness}}">
<label for="mqtt_host">MQTT broker host</label>
<input type="text" id="mqtt_host" name="mqtt_host" value="{{.Config.MQTTHost}}">
<label for="mqtt_port">MQTT broker port</label>
<input type="number" id="mqtt_port" name="mqtt_port" value="{{.Config.MQTTPort}}">
<label for="mqtt_user">MQTT username (blank keeps current)</label>
<input type="text" id="mqtt_user" name="mqtt_user">
<label for="mqtt_pass">MQTT password (blank keeps current)</label>
<input type="password" id="mqtt_pass" name="mqtt_pass">
<input type="submit" value="Save and Reboot">
</form>
</div>
</body>
</html>
`))

var confirmTmpl = template.Must(template.New("confirm").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Saved</title>
<style>` + baseCSS + `</style>
</head>
<body>
<div class="container">
<h1>Configuration Saved</h1>
<p>The device is rebooting with the new settings. If station connection
succeeds, this access point will disappear.</p>
</div>
</body>
</html>
`))

var dataTmpl = template.Must(template.New("data").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		h := int(d.Hours())
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"fmt1": func(f float64) string { return fmt.Sprintf("%.1f", f) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="15">
<title>Soil Moisture Monitor</title>
<style>` + baseCSS + `</style>
</head>
<body>
<div class="container">
<h1>Soil Sensor {{.DeviceID}}</h1>
{{if .HaveReading}}
<h2>Moisture Level</h2>
<div style="background-color:#eee; border-radius:4px;">
<div class="moisture-bar" style="width: {{.Moisture}}%; min-width: 15%; background-color: {{.BarColor}};">{{.Moisture}}%</div>
</div>
<div class="data" style="color: {{.BarColor}};"><strong>{{.StatusText}}</strong></div>
{{if .Stale}}<p class="stale">Last reading failed — showing previous value.</p>{{end}}
<div class="data">Raw reading: <strong>{{.Raw}}</strong></div>
{{if .Temp}}<div class="data">Temperature: <strong>{{fmt1 .TempValue}}&deg;{{.TempUnit}}</strong></div>{{end}}
{{if .Humidity}}<div class="data">Humidity: <strong>{{fmt1 .HumidityValue}}%</strong></div>{{end}}
<div class="data">Calibration: dry {{.Dry}}, wet {{.Wet}}</div>
{{else}}
<p>No reading yet.</p>
{{end}}
<p>Uptime: {{uptime .Uptime}} | <a href="/config">Settings</a> | <a href="/index.json">JSON</a></p>
<p style="font-size: small; color: #777;">Page refreshes every 15s.</p>
</div>
</body>
</html>
`))

type formData struct {
	Config   config.Configuration
	DeviceID string
	Message  string
}

type dataData struct {
	DeviceID      string
	HaveReading   bool
	Stale         bool
	Moisture      int
	Raw           int
	BarColor      string
	StatusText    string
	Temp          bool
	TempValue     float64
	TempUnit      string
	Humidity      bool
	HumidityValue float64
	Dry, Wet      int
	Uptime        time.Duration
}

func renderFormHTML(w io.Writer, cfg config.Configuration, deviceID, msg string) {
	formTmpl.Execute(w, formData{Config: cfg, DeviceID: deviceID, Message: msg})
}

func renderConfirm(w io.Writer) {
	confirmTmpl.Execute(w, nil)
}

func renderData(w io.Writer, snap status.Snapshot, cfg config.Configuration) {
	d := dataData{
		DeviceID:    snap.DeviceID,
		HaveReading: snap.HaveReading,
		Stale:       snap.Stale,
		Dry:         cfg.DryReading,
		Wet:         cfg.WetReading,
		Uptime:      snap.Uptime(),
		TempUnit:    string(cfg.TempUnit),
	}

	if snap.HaveReading {
		d.Moisture = snap.Reading.MoisturePct
		d.Raw = snap.Reading.Raw
		switch {
		case d.Moisture >= 50:
			d.BarColor, d.StatusText = "#2ecc71", "MOIST - No need to water."
		case d.Moisture >= 20:
			d.BarColor, d.StatusText = "#f39c12", "IDEAL - Check again soon."
		default:
			d.BarColor, d.StatusText = "#e74c3c", "VERY DRY - NEEDS WATER!"
		}
		if snap.Reading.Temperature != nil {
			d.Temp = true
			d.TempValue = cfg.DisplayTemp(*snap.Reading.Temperature)
		}
		if snap.Reading.Humidity != nil {
			d.Humidity = true
			d.HumidityValue = *snap.Reading.Humidity
		}
	}

	dataTmpl.Execute(w, d)
}
