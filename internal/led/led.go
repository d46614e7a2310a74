// Package led maps moisture and connectivity onto the addressable status
// LED. The mapping is pure; the Strip interface isolates the WS2812B driver.
package led

import "github.com/sweeney/soil-sensor/internal/wifi"

// Color is an RGB frame for one pixel, already brightness-scaled.
type Color struct {
	R, G, B uint8
}

// Off is the all-zero frame.
var Off = Color{}

// Base colors before brightness scaling. Thresholds and colors match the
// status page: green is moist, orange needs checking, red needs water. Blue
// marks configuration mode.
var (
	green  = Color{0, 255, 0}
	orange = Color{255, 96, 0}
	red    = Color{255, 0, 0}
	blue   = Color{0, 0, 255}
)

// Strip writes one frame to the status LED.
type Strip interface {
	// Write shows the color. Must not block beyond a single frame write.
	Write(c Color) error

	// Close blanks the LED and releases the driver.
	Close() error
}

// Indicate returns the frame for the current cycle.
//
// In AP_CONFIG_MODE there is no meaningful reading, so the moisture color is
// overridden by blue blinking on alternate cycles (blinkPhase toggles per
// tick). Otherwise the fixed thresholds apply: pct >= 50 green, 20..49
// orange, below 20 red — boundary values belong to the higher band.
// Brightness 0 turns the LED off entirely.
func Indicate(pct int, state wifi.State, brightness int, blinkPhase bool) Color {
	if state == wifi.StateAPConfig {
		if !blinkPhase {
			return Off
		}
		return scale(blue, brightness)
	}

	switch {
	case pct >= 50:
		return scale(green, brightness)
	case pct >= 20:
		return scale(orange, brightness)
	default:
		return scale(red, brightness)
	}
}

// scale applies linear brightness to each channel. brightness is 0..255.
func scale(c Color, brightness int) Color {
	if brightness <= 0 {
		return Off
	}
	if brightness > 255 {
		brightness = 255
	}
	return Color{
		R: uint8(int(c.R) * brightness / 255),
		G: uint8(int(c.G) * brightness / 255),
		B: uint8(int(c.B) * brightness / 255),
	}
}
