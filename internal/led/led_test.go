package led

import (
	"testing"

	"github.com/sweeney/soil-sensor/internal/wifi"
)

func TestIndicateBands(t *testing.T) {
	cases := []struct {
		pct  int
		want Color
	}{
		{100, green},
		{50, green}, // boundary belongs to the higher band
		{49, orange},
		{20, orange}, // boundary belongs to the higher band
		{19, red},
		{0, red},
	}

	for _, tc := range cases {
		got := Indicate(tc.pct, wifi.StateStation, 255, false)
		if got != tc.want {
			t.Errorf("Indicate(%d): got %+v, want %+v", tc.pct, got, tc.want)
		}
	}
}

func TestIndicateConfigModeOverride(t *testing.T) {
	// In AP mode the moisture value is meaningless and must not leak
	// through; the LED blinks blue instead.
	on := Indicate(100, wifi.StateAPConfig, 255, true)
	if on != blue {
		t.Errorf("blink on: got %+v, want %+v", on, blue)
	}
	off := Indicate(100, wifi.StateAPConfig, 255, false)
	if off != Off {
		t.Errorf("blink off: got %+v, want Off", off)
	}
}

func TestIndicateBrightnessScaling(t *testing.T) {
	full := Indicate(80, wifi.StateStation, 255, false)
	if full != green {
		t.Fatalf("full brightness: got %+v", full)
	}

	half := Indicate(80, wifi.StateStation, 128, false)
	if half.G != uint8(int(green.G)*128/255) {
		t.Errorf("half brightness G: got %d", half.G)
	}
	if half.R != 0 || half.B != 0 {
		t.Errorf("half brightness should keep zero channels zero: %+v", half)
	}

	if got := Indicate(80, wifi.StateStation, 0, false); got != Off {
		t.Errorf("brightness 0: got %+v, want Off", got)
	}
}

func TestFakeStripRecords(t *testing.T) {
	f := &FakeStrip{}

	if f.Last() != Off {
		t.Error("empty strip should report Off")
	}

	if err := f.Write(Color{R: 10}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Write(Color{G: 20}); err != nil {
		t.Fatalf("write: %v", err)
	}

	if len(f.Frames) != 2 {
		t.Fatalf("frames: got %d, want 2", len(f.Frames))
	}
	if f.Last() != (Color{G: 20}) {
		t.Errorf("last: got %+v", f.Last())
	}
}
