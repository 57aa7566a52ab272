package diffdrive

import "math"

// jitterThreshold is the measured-twist magnitude above which a zero command
// is still written, correcting drift while suppressing redundant zero-writes.
// It is a fixed constant and intentionally not the configurable
// MovingThreshold; the two have never been unified upstream.
const jitterThreshold = 0.05

// wheelMapper converts a base velocity into per-wheel commands via
// track-width kinematics.
type wheelMapper struct {
	trackWidth      float64
	radiansPerMeter float64
}

// speeds returns the left and right wheel speeds in linear units (m/s) for
// the given base velocity.
func (m wheelMapper) speeds(v Velocity) (left, right float64) {
	offset := v.Angular / 2.0 * m.trackWidth
	return v.Linear - offset, v.Linear + offset
}

// toAngular converts a linear wheel speed to the angular command written to
// the hardware.
func (m wheelMapper) toAngular(metersPerSec float64) float64 {
	return metersPerSec * m.radiansPerMeter
}

// shouldWrite reports whether a hardware command should be issued this tick.
// Non-zero ramped velocity always writes; an all-zero command is written only
// while the measured twist still exceeds the jitter threshold.
func (m wheelMapper) shouldWrite(ramped, measured Velocity) bool {
	if !ramped.IsZero() {
		return true
	}
	return math.Abs(measured.Linear) > jitterThreshold || math.Abs(measured.Angular) > jitterThreshold
}
