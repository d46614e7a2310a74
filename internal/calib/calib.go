// Package calib converts raw soil-moisture readings into a calibrated
// percentage. This package has NO external dependencies (no hardware, OS, or
// time) — it is pure arithmetic on the reading and the two stored reference
// points.
package calib

import "errors"

// ErrUndefined is returned when the dry and wet reference points are equal,
// which leaves the scale undefined. Validation rejects such a pair before it
// can be persisted, so seeing this at runtime means the stored configuration
// is unusable and the device must be reconfigured.
var ErrUndefined = errors.New("calib: dry and wet reference points are equal")

// Percent maps raw onto a 0–100 moisture scale using the dry (0%) and wet
// (100%) reference points.
//
// Polarity is automatic: with a capacitive probe the raw value falls as
// moisture rises (dry > wet), with a resistive probe it climbs (dry < wet).
// The same formula covers both because the denominator carries the sign.
// The result is clamped, so raw values outside [dry, wet] saturate at the
// nearer endpoint.
func Percent(raw, dry, wet int) (int, error) {
	if dry == wet {
		return 0, ErrUndefined
	}

	pct := float64(raw-dry) / float64(wet-dry) * 100

	if pct < 0 {
		pct = 0
	} else if pct > 100 {
		pct = 100
	}

	// Round half away from zero; pct is non-negative here.
	return int(pct + 0.5), nil
}
