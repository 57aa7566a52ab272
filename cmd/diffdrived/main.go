// Package main runs the differential-drive controller against fake wheels,
// logging the odometry it would publish.
package main

import (
	"context"
	"time"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	goutils "go.viam.com/utils"

	"github.com/driftless/diffdrive"
	"github.com/driftless/diffdrive/wheel/fake"
)

const (
	loopFrequencyHz = 50.0
	commandPeriod   = 100 * time.Millisecond
	commandFor      = 2 * time.Second
)

func main() {
	goutils.ContextualMain(mainWithArgs, golog.NewDevelopmentLogger("diffdrived"))
}

type logPublisher struct {
	logger golog.Logger
}

func (p *logPublisher) PublishOdometry(ctx context.Context, odom diffdrive.Odometry) error {
	p.logger.Debugw("odometry",
		"x", odom.PositionX, "y", odom.PositionY, "heading", odom.Orientation.Heading(),
		"linear", odom.LinearVelocity, "angular", odom.AngularVelocity)
	return nil
}

func (p *logPublisher) PublishTransform(ctx context.Context, tf diffdrive.Transform) error {
	p.logger.Debugw("transform", "parent", tf.Parent, "child", tf.Child, "translation", tf.Translation)
	return nil
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	left := &fake.Wheel{Name: "left", Logger: logger}
	right := &fake.Wheel{Name: "right", Logger: logger}

	controller, err := diffdrive.New(ctx, diffdrive.DefaultConfig(), left, right, &logPublisher{logger}, logger)
	if err != nil {
		return err
	}

	loop, err := diffdrive.StartLoop(controller, loopFrequencyHz, logger)
	if err != nil {
		return err
	}
	defer loop.Stop()

	// step the fakes so the controller sees motion feedback
	simCtx, simDone := context.WithCancel(ctx)
	defer simDone()
	go func() {
		stepPeriod := 10 * time.Millisecond
		for goutils.SelectContextOrWait(simCtx, stepPeriod) {
			left.Step(stepPeriod)
			right.Step(stepPeriod)
		}
	}()

	// drive forward while turning gently, then let the watchdog stop the
	// base; the first command starts the control session on its own
	deadline := time.Now().Add(commandFor)
	for time.Now().Before(deadline) {
		if err := controller.Command(ctx, r3.Vector{X: 0.5}, r3.Vector{Z: 0.2}); err != nil {
			return err
		}
		if !goutils.SelectContextOrWait(ctx, commandPeriod) {
			return ctx.Err()
		}
	}

	logger.Infow("command stream ended, waiting for the watchdog to stop the base")
	for controller.State() != diffdrive.StateReady {
		if !goutils.SelectContextOrWait(ctx, 50*time.Millisecond) {
			return ctx.Err()
		}
	}

	pose := controller.Pose()
	logger.Infow("base at rest", "x", pose.X, "y", pose.Y, "theta", pose.Theta)
	return nil
}
