package diffdrive

import "time"

// watchdog tracks command freshness. It is not internally synchronized; the
// controller accesses it under its own lock.
type watchdog struct {
	timeout     time.Duration
	lastCommand time.Time
}

// refresh records the arrival of a fresh command.
func (w *watchdog) refresh(t time.Time) {
	w.lastCommand = t
}

// expired reports whether the newest command has gone stale. A zero
// lastCommand is stale by construction, so a controller that has never been
// commanded cannot start.
func (w *watchdog) expired(now time.Time) bool {
	return now.Sub(w.lastCommand) >= w.timeout
}

// canStart reports whether a control session may begin: the newest command
// must still be fresh at the moment of the start request.
func (w *watchdog) canStart(now time.Time) bool {
	return !w.expired(now)
}

// shouldPreempt reports whether the active control session ought to yield:
// the watchdog has expired, the ramped velocity is already at rest on both
// axes, or the caller forces it.
func (w *watchdog) shouldPreempt(now time.Time, ramped Velocity, forced bool) bool {
	if w.expired(now) {
		return true
	}
	if ramped.IsZero() {
		return true
	}
	return forced
}
