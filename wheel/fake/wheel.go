// Package fake implements a fake wheel.
package fake

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
)

// Wheel is a fake wheel that tracks its commanded velocity instantly and
// integrates position when stepped. It is safe for concurrent use.
type Wheel struct {
	Name   string
	Logger golog.Logger

	// ReadErr and WriteErr, when set, are returned by the feedback getters
	// and SetVelocity respectively.
	ReadErr  error
	WriteErr error

	mu        sync.Mutex
	position  float64 // radians
	velocity  float64 // radians/s
	commanded float64 // radians/s
	writes    int
}

// Position returns the accumulated wheel angle in radians.
func (w *Wheel) Position(ctx context.Context) (float64, error) {
	if w.ReadErr != nil {
		return 0, w.ReadErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.position, nil
}

// Velocity returns the instantaneous wheel speed in radians per second.
func (w *Wheel) Velocity(ctx context.Context) (float64, error) {
	if w.ReadErr != nil {
		return 0, w.ReadErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.velocity, nil
}

// SetVelocity records the commanded wheel speed. The reported feedback
// changes on the next Step.
func (w *Wheel) SetVelocity(ctx context.Context, radPerSec, effortLimit float64) error {
	if w.WriteErr != nil {
		return w.WriteErr
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.commanded = radPerSec
	w.writes++
	return nil
}

// Commanded returns the last velocity command received, in radians per second.
func (w *Wheel) Commanded() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.commanded
}

// Writes returns how many velocity commands the wheel has received.
func (w *Wheel) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

// Step advances the simulation by dt: the wheel snaps to its commanded
// velocity and accumulates position.
func (w *Wheel) Step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.velocity = w.commanded
	w.position += w.velocity * dt.Seconds()
}

// SetFeedback overrides the reported position and velocity directly,
// bypassing the commanded-velocity model.
func (w *Wheel) SetFeedback(position, velocity float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.position = position
	w.velocity = velocity
}
