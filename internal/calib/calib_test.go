package calib

import "testing"

func TestPercentEndpoints(t *testing.T) {
	cases := []struct {
		name     string
		dry, wet int
	}{
		{"normal polarity", 1200, 3000},
		{"inverted polarity", 8191, 4300},
		{"negative span", -50, 50},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pct, err := Percent(tc.dry, tc.dry, tc.wet)
			if err != nil {
				t.Fatalf("Percent(dry): unexpected error: %v", err)
			}
			if pct != 0 {
				t.Errorf("Percent(dry, dry, wet): got %d, want 0", pct)
			}

			pct, err = Percent(tc.wet, tc.dry, tc.wet)
			if err != nil {
				t.Fatalf("Percent(wet): unexpected error: %v", err)
			}
			if pct != 100 {
				t.Errorf("Percent(wet, dry, wet): got %d, want 100", pct)
			}
		})
	}
}

func TestPercentMonotonicNormal(t *testing.T) {
	dry, wet := 1000, 3000

	prev := -1
	for raw := dry; raw <= wet; raw += 50 {
		pct, err := Percent(raw, dry, wet)
		if err != nil {
			t.Fatalf("Percent(%d): unexpected error: %v", raw, err)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("Percent(%d): %d outside [0,100]", raw, pct)
		}
		if pct < prev {
			t.Fatalf("Percent(%d): %d < previous %d, not non-decreasing", raw, pct, prev)
		}
		prev = pct
	}
}

func TestPercentMonotonicInverted(t *testing.T) {
	dry, wet := 8191, 4300

	prev := 101
	for raw := wet; raw <= dry; raw += 97 {
		pct, err := Percent(raw, dry, wet)
		if err != nil {
			t.Fatalf("Percent(%d): unexpected error: %v", raw, err)
		}
		if pct < 0 || pct > 100 {
			t.Fatalf("Percent(%d): %d outside [0,100]", raw, pct)
		}
		if pct > prev {
			t.Fatalf("Percent(%d): %d > previous %d, not non-increasing", raw, pct, prev)
		}
		prev = pct
	}
}

func TestPercentClampsOutOfRange(t *testing.T) {
	// Inverted scale: raw above dry is drier than air, below wet is wetter
	// than submerged. Both must saturate.
	if pct, _ := Percent(8500, 8191, 4300); pct != 0 {
		t.Errorf("raw above dry: got %d, want 0", pct)
	}
	if pct, _ := Percent(4000, 8191, 4300); pct != 100 {
		t.Errorf("raw below wet: got %d, want 100", pct)
	}
}

func TestPercentMidpointInverted(t *testing.T) {
	// Reference scenario: capacitive probe with the stock calibration.
	pct, err := Percent(6245, 8191, 4300)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pct != 50 {
		t.Errorf("Percent(6245, 8191, 4300): got %d, want 50", pct)
	}
}

func TestPercentUndefined(t *testing.T) {
	_, err := Percent(1234, 5000, 5000)
	if err != ErrUndefined {
		t.Fatalf("equal reference points: got err=%v, want ErrUndefined", err)
	}
}
