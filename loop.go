package diffdrive

import (
	"context"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/utils"
)

// Loop drives a controller at a fixed rate. It owns the single tick
// execution context; the controller never spawns workers of its own.
type Loop struct {
	controller *Controller
	dt         time.Duration
	logger     golog.Logger

	cancelCtx               context.Context
	cancel                  context.CancelFunc
	activeBackgroundWorkers sync.WaitGroup
}

// StartLoop runs the controller at the given frequency until Stop is called.
func StartLoop(controller *Controller, freqHz float64, logger golog.Logger) (*Loop, error) {
	if freqHz <= 0 || freqHz > 200 {
		return nil, errors.New("loop frequency shouldn't be 0 or above 200Hz")
	}

	cancelCtx, cancel := context.WithCancel(context.Background())
	l := &Loop{
		controller: controller,
		dt:         time.Duration(float64(time.Second) / freqHz),
		logger:     logger,
		cancelCtx:  cancelCtx,
		cancel:     cancel,
	}

	l.activeBackgroundWorkers.Add(1)
	utils.ManagedGo(l.run, l.activeBackgroundWorkers.Done)
	return l, nil
}

func (l *Loop) run() {
	clk := l.controller.clk
	ticker := clk.Ticker(l.dt)
	defer ticker.Stop()

	last := clk.Now()
	for {
		select {
		case <-l.cancelCtx.Done():
			return
		case <-ticker.C:
		}

		now := clk.Now()
		if err := l.controller.Tick(l.cancelCtx, now, now.Sub(last)); err != nil {
			if errors.Is(err, ErrNotInitialized) {
				l.logger.Errorw("controller cannot run, stopping loop", "error", err)
				return
			}
			// a failed tick publishes nothing; the next tick is the retry
			l.logger.Errorw("tick failed", "error", err)
		}
		last = now
	}
}

// Stop halts the loop and waits for the tick worker to exit.
func (l *Loop) Stop() {
	l.cancel()
	l.activeBackgroundWorkers.Wait()
}
