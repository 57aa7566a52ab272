package diffdrive

import (
	"context"
	"time"

	"github.com/golang/geo/r3"
)

// Odometry is the per-tick pose and twist estimate handed to the publisher.
type Odometry struct {
	Timestamp    time.Time
	FrameID      string
	ChildFrameID string

	PositionX   float64 // meters
	PositionY   float64 // meters
	Orientation Rotation

	LinearVelocity  float64 // m/s
	AngularVelocity float64 // rad/s
}

// Transform is the odometry-frame to base-frame transform, published when
// Config.PublishTransform is set.
type Transform struct {
	Timestamp time.Time
	Parent    string
	Child     string

	Translation r3.Vector
	Rotation    Rotation
}

// Publisher receives the controller's output each successful tick. How
// messages leave the process is the host's concern. Implementations are
// called from the tick and must not call back into the Controller.
type Publisher interface {
	PublishOdometry(ctx context.Context, odom Odometry) error
	PublishTransform(ctx context.Context, tf Transform) error
}
