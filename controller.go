// Package diffdrive implements an acceleration-limited differential-drive
// base controller with a command-staleness watchdog and wheel odometry.
package diffdrive

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/driftless/diffdrive/wheel"
)

// ErrNotInitialized is returned by every operation on a controller whose
// initialization failed.
var ErrNotInitialized = errors.New("controller not initialized")

// State is the controller lifecycle state.
type State int

// Lifecycle states. An Idle controller failed initialization and stays Idle;
// Running is entered only through a successful start.
const (
	StateIdle State = iota
	StateReady
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	}
	return "unknown"
}

// Controller converts commanded planar velocities into per-wheel commands
// under acceleration limits, stops the base when commands go stale, and
// dead-reckons a pose from wheel feedback. Tick is driven by a single
// external timer; Command may be called concurrently from the delivery path.
type Controller struct {
	cfg    Config
	logger golog.Logger
	clk    clock.Clock

	left   wheel.Wheel
	right  wheel.Wheel
	mapper wheelMapper
	pub    Publisher

	mu      sync.Mutex
	state   State
	desired Velocity
	wd      watchdog
	limiter velocityLimiter
	odom    *odometryEstimator
	twist   Velocity
}

// New builds a controller for the given wheel pair. On any initialization
// failure (invalid config, missing wheel handles, unreadable feedback) the
// returned controller is permanently idle: every operation on it fails with
// ErrNotInitialized rather than crashing.
func New(
	ctx context.Context,
	cfg Config,
	left, right wheel.Wheel,
	pub Publisher,
	logger golog.Logger,
) (*Controller, error) {
	c := &Controller{
		cfg:    cfg,
		logger: logger,
		clk:    clock.New(),
		left:   left,
		right:  right,
		pub:    pub,
		state:  StateIdle,
	}

	c.cfg.ensureDefaults()
	if err := c.cfg.Validate("diffdrive"); err != nil {
		logger.Errorw("invalid config", "error", err)
		return c, err
	}
	if left == nil || right == nil {
		err := errors.New("both wheel handles are required")
		logger.Errorw("cannot initialize", "error", err)
		return c, err
	}

	leftPos, err := left.Position(ctx)
	if err != nil {
		return c, errors.Wrap(err, "cannot read left wheel position")
	}
	rightPos, err := right.Position(ctx)
	if err != nil {
		return c, errors.Wrap(err, "cannot read right wheel position")
	}

	c.mapper = wheelMapper{trackWidth: c.cfg.TrackWidth, radiansPerMeter: c.cfg.RadiansPerMeter}
	c.wd = watchdog{timeout: c.cfg.timeout()}
	c.limiter = velocityLimiter{maxAccelX: c.cfg.MaxAccelerationX, maxAccelR: c.cfg.MaxAccelerationR}
	c.odom = newOdometryEstimator(c.cfg.TrackWidth, c.cfg.RadiansPerMeter, leftPos, rightPos)
	c.state = StateReady
	return c, nil
}

// Command applies a new desired velocity. Only linear.X (m/s) and angular.Z
// (rad/s) apply to a planar base; other components are ignored with a
// warning. A fresh command also requests a (re)start of the control session;
// a refused start is logged and the command still recorded.
func (c *Controller) Command(ctx context.Context, linear, angular r3.Vector) error {
	if linear.Y != 0 || linear.Z != 0 {
		c.logger.Warnw("only linear X applies to a differential base", "y", linear.Y, "z", linear.Z)
	}
	if angular.X != 0 || angular.Y != 0 {
		c.logger.Warnw("only angular Z applies to a differential base", "x", angular.X, "y", angular.Y)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.logger.Errorw("unable to accept command, not initialized")
		return ErrNotInitialized
	}

	now := c.clk.Now()
	c.wd.refresh(now)
	c.desired = Velocity{Linear: linear.X, Angular: angular.Z}
	if c.state != StateRunning {
		// fire and forget; a timed-out start leaves the controller settled
		c.startLocked(now)
	}
	return nil
}

// Start begins a control session. It reports false, without changing state,
// when the controller is uninitialized or the newest command is already
// stale at the moment of the request.
func (c *Controller) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.logger.Errorw("unable to start, not initialized")
		return false
	}
	return c.startLocked(c.clk.Now())
}

func (c *Controller) startLocked(now time.Time) bool {
	if !c.wd.canStart(now) {
		c.logger.Errorw("unable to start, command has timed out")
		return false
	}
	c.state = StateRunning
	return true
}

// ShouldPreempt reports whether the control session ought to yield: the
// watchdog expired, the base is already at rest, or force is set. A forced
// preempt still decelerates under the acceleration limit; there is no
// limiter bypass.
func (c *Controller) ShouldPreempt(now time.Time, force bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wd.shouldPreempt(now, c.limiter.ramped, force)
}

// Tick runs one control cycle at time now, dt after the previous cycle:
// staleness check, feedback sampling, velocity ramping, odometry
// integration, the (possibly suppressed) wheel write, and publishing. A
// hardware read or write error fails the tick and skips that cycle's
// publish; nothing is retried until the next scheduled tick. Feedback is
// sampled before the limiter commits its step, so a run of failed reads
// never advances the ramped velocity past what was actually written.
func (c *Controller) Tick(ctx context.Context, now time.Time, dt time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateIdle {
		return ErrNotInitialized
	}

	left, err := c.sample(ctx, c.left)
	if err != nil {
		return errors.Wrap(err, "left wheel")
	}
	right, err := c.sample(ctx, c.right)
	if err != nil {
		return errors.Wrap(err, "right wheel")
	}

	// only a started session acts on the desired velocity
	desired := c.desired
	if c.state != StateRunning {
		desired = Velocity{}
	}
	if c.wd.expired(now) {
		desired = Velocity{}
		if c.state == StateRunning {
			c.logger.Debugw("command timed out, ramping to a stop")
			c.state = StateStopping
		}
	}

	ramped := c.limiter.update(desired, dt.Seconds())

	c.twist = c.odom.update(left, right)

	if c.mapper.shouldWrite(ramped, c.twist) {
		leftSpeed, rightSpeed := c.mapper.speeds(ramped)
		err := multierr.Combine(
			c.left.SetVelocity(ctx, c.mapper.toAngular(leftSpeed), 0),
			c.right.SetVelocity(ctx, c.mapper.toAngular(rightSpeed), 0),
		)
		if err != nil {
			return errors.Wrap(err, "wheel command write")
		}
	}

	if c.state == StateStopping && ramped.IsZero() {
		c.state = StateReady
	}

	return c.publish(ctx, now)
}

func (c *Controller) sample(ctx context.Context, w wheel.Wheel) (wheelSample, error) {
	pos, err := w.Position(ctx)
	if err != nil {
		return wheelSample{}, errors.Wrap(err, "position")
	}
	vel, err := w.Velocity(ctx)
	if err != nil {
		return wheelSample{}, errors.Wrap(err, "velocity")
	}
	return wheelSample{position: pos, velocity: vel}, nil
}

func (c *Controller) publish(ctx context.Context, now time.Time) error {
	if c.pub == nil {
		return nil
	}

	rot := NewRotation(c.odom.pose.Theta)
	odom := Odometry{
		Timestamp:       now,
		FrameID:         c.cfg.OdometryFrame,
		ChildFrameID:    c.cfg.BaseFrame,
		PositionX:       c.odom.pose.X,
		PositionY:       c.odom.pose.Y,
		Orientation:     rot,
		LinearVelocity:  c.twist.Linear,
		AngularVelocity: c.twist.Angular,
	}
	if err := c.pub.PublishOdometry(ctx, odom); err != nil {
		return errors.Wrap(err, "publish odometry")
	}

	if !c.cfg.PublishTransform {
		return nil
	}
	tf := Transform{
		Timestamp:   now,
		Parent:      c.cfg.OdometryFrame,
		Child:       c.cfg.BaseFrame,
		Translation: r3.Vector{X: c.odom.pose.X, Y: c.odom.pose.Y, Z: 0},
		Rotation:    rot,
	}
	return errors.Wrap(c.pub.PublishTransform(ctx, tf), "publish transform")
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Pose returns the dead-reckoned pose. Theta is unbounded.
func (c *Controller) Pose() Pose {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.odom == nil {
		return Pose{}
	}
	return c.odom.pose
}

// Twist returns the twist computed from the most recent wheel feedback.
func (c *Controller) Twist() Velocity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.twist
}

// RampedVelocity returns the velocity most recently sent toward the wheels.
func (c *Controller) RampedVelocity() Velocity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.limiter.ramped
}
