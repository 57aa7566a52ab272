package diffdrive

import "math"

// Pose is a dead-reckoned planar pose. Theta accumulates without wrapping;
// consumers wrap only when encoding a Rotation.
type Pose struct {
	X     float64 // meters
	Y     float64 // meters
	Theta float64 // radians, unbounded
}

// Rotation is the half-angle encoding of a planar heading, a unit rotation
// restricted to the horizontal plane.
type Rotation struct {
	Sin float64 // sin(theta/2)
	Cos float64 // cos(theta/2)
}

// NewRotation encodes a heading angle.
func NewRotation(theta float64) Rotation {
	return Rotation{Sin: math.Sin(theta / 2.0), Cos: math.Cos(theta / 2.0)}
}

// Heading decodes the encoded angle, in (-pi, pi].
func (r Rotation) Heading() float64 {
	return 2.0 * math.Atan2(r.Sin, r.Cos)
}

// wheelSample is one wheel's feedback snapshot, in wheel-angle units.
type wheelSample struct {
	position float64 // radians
	velocity float64 // radians/s
}

// odometryEstimator integrates wheel feedback into a pose and computes the
// instantaneous twist. It owns the pose; the pose resets only with a new
// estimator.
type odometryEstimator struct {
	trackWidth      float64
	radiansPerMeter float64

	lastLeft  float64 // radians
	lastRight float64 // radians
	pose      Pose
}

// newOdometryEstimator seeds the estimator with the wheels' current
// positions so that the first update sees zero displacement.
func newOdometryEstimator(trackWidth, radiansPerMeter, leftPos, rightPos float64) *odometryEstimator {
	return &odometryEstimator{
		trackWidth:      trackWidth,
		radiansPerMeter: radiansPerMeter,
		lastLeft:        leftPos,
		lastRight:       rightPos,
	}
}

// update advances the pose by the wheel displacement since the previous
// sample and returns the twist computed from the instantaneous wheel
// velocities. The pose update is first order, applying the whole
// displacement at the heading held at the start of the interval; it is valid
// only for small per-tick heading changes.
func (e *odometryEstimator) update(left, right wheelSample) Velocity {
	leftDelta := (left.position - e.lastLeft) / e.radiansPerMeter
	rightDelta := (right.position - e.lastRight) / e.radiansPerMeter
	e.lastLeft = left.position
	e.lastRight = right.position

	d := (leftDelta + rightDelta) / 2.0
	dTheta := (rightDelta - leftDelta) / e.trackWidth

	e.pose.X += d * math.Cos(e.pose.Theta)
	e.pose.Y += d * math.Sin(e.pose.Theta)
	e.pose.Theta += dTheta

	leftVel := left.velocity / e.radiansPerMeter
	rightVel := right.velocity / e.radiansPerMeter
	return Velocity{
		Linear:  (leftVel + rightVel) / 2.0,
		Angular: (rightVel - leftVel) / e.trackWidth,
	}
}
