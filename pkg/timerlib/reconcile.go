package timerlib

// Reconcile derives the true state of t at nowMs.
//
// Non-running timers are returned unchanged. A running timer gets its
// RemainingMs recomputed from the absolute deadline; once the deadline is
// reached it is promoted to Done and completed is true. The result depends
// only on the arguments, so calling it again on the output is a no-op.
//
// RemainingMs equals EndAtEpochMs - nowMs except when the clock has stepped
// back before the timer's start: it is then capped at DurationMs so that
// 0 <= RemainingMs <= DurationMs holds. The deadline itself is never moved,
// so the exact value returns once the clock catches up.
func Reconcile(t Timer, nowMs int64) (updated Timer, completed bool) {
	if t.State != StateRunning {
		return t, false
	}
	// A running record without a deadline cannot be resumed; finish it.
	if t.EndAtEpochMs == nil {
		return done(t), true
	}
	remaining := *t.EndAtEpochMs - nowMs
	if remaining <= 0 {
		return done(t), true
	}
	if remaining > t.DurationMs {
		// the clock moved back past the start; never report more than the full length
		remaining = t.DurationMs
	}
	t.RemainingMs = remaining
	return t, false
}

func done(t Timer) Timer {
	t.State = StateDone
	t.RemainingMs = 0
	t.EndAtEpochMs = nil
	return t
}

// RemainingAt returns the display value of t's remaining time at nowMs
// without changing t.
func RemainingAt(t Timer, nowMs int64) int64 {
	r, _ := Reconcile(t, nowMs)
	return r.RemainingMs
}

// ReconcileResult is the outcome of reconciling a batch of timers.
type ReconcileResult struct {
	// Timers holds every timer in input order, reconciled.
	Timers []Timer
	// Completed holds the pre-reconcile copies of timers that reached their
	// deadline in this pass.
	Completed []Timer
	// Changed reports whether any timer differs from its input.
	Changed bool
}

// ReconcileAll runs Reconcile over timers.
func ReconcileAll(timers []Timer, nowMs int64) ReconcileResult {
	res := ReconcileResult{Timers: make([]Timer, len(timers))}
	for i, t := range timers {
		u, completed := Reconcile(t, nowMs)
		res.Timers[i] = u
		if completed {
			res.Completed = append(res.Completed, t)
		}
		if !u.Equal(t) {
			res.Changed = true
		}
	}
	return res
}
