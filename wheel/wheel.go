// Package wheel defines the capability interface for a single drive wheel.
package wheel

import "context"

// Wheel exposes feedback and a velocity command sink for one drive wheel.
// Implementations wrap whatever the host supplies, typically a motor driver
// with an encoder behind it.
type Wheel interface {
	// Position returns the accumulated wheel angle in radians.
	Position(ctx context.Context) (float64, error)

	// Velocity returns the instantaneous wheel speed in radians per second.
	Velocity(ctx context.Context) (float64, error)

	// SetVelocity commands the wheel to spin at radPerSec. An effortLimit of
	// zero leaves the limit to the driver.
	SetVelocity(ctx context.Context, radPerSec, effortLimit float64) error
}
