package diffdrive

// Velocity is a planar velocity pair: linear along the base's forward axis in
// m/s, angular about its vertical axis in rad/s.
type Velocity struct {
	Linear  float64
	Angular float64
}

// IsZero reports whether both axes are exactly zero.
func (v Velocity) IsZero() bool {
	return v.Linear == 0 && v.Angular == 0
}

// velocityLimiter ramps the last sent velocity toward the desired velocity
// under per-axis acceleration bounds. It owns the ramped pair; update mutates
// it once per tick.
type velocityLimiter struct {
	maxAccelX float64
	maxAccelR float64
	ramped    Velocity
}

// update moves the ramped velocity toward desired and returns the new value.
func (l *velocityLimiter) update(desired Velocity, dt float64) Velocity {
	l.ramped.Linear = ramp(desired.Linear, l.ramped.Linear, dt, l.maxAccelX)
	l.ramped.Angular = ramp(desired.Angular, l.ramped.Angular, dt, l.maxAccelR)
	return l.ramped
}

// ramp moves prev toward desired by at most maxAccel*dt, clamping exactly
// onto desired when the step would cross it. A non-positive dt returns prev
// unchanged.
func ramp(desired, prev, dt, maxAccel float64) float64 {
	if dt <= 0 {
		return prev
	}
	step := maxAccel * dt
	if desired > prev {
		next := prev + step
		if next > desired {
			next = desired
		}
		return next
	}
	next := prev - step
	if next < desired {
		next = desired
	}
	return next
}
