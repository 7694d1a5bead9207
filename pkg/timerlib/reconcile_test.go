package timerlib

import (
	"testing"
	"time"
)

func runningTimer(durationMs, endAt int64) Timer {
	return Timer{
		ID:           "t1",
		Label:        "tea",
		DurationMs:   durationMs,
		State:        StateRunning,
		RemainingMs:  durationMs,
		EndAtEpochMs: Ms(endAt),
	}
}

func TestReconcile_NonRunningUnchanged(t *testing.T) {
	for _, st := range []State{StateIdle, StatePaused, StateDone} {
		in := Timer{ID: "x", DurationMs: 5000, State: st, RemainingMs: 1234}
		if st == StateDone {
			in.RemainingMs = 0
		}
		for _, now := range []int64{0, 1, 1 << 40, -5000} {
			out, completed := Reconcile(in, now)
			if completed {
				t.Fatalf("%s at %d: unexpected completion", st, now)
			}
			if !out.Equal(in) {
				t.Fatalf("%s at %d: timer changed: %+v", st, now, out)
			}
		}
	}
}

func TestReconcile_DeadlineCorrectness(t *testing.T) {
	tm := runningTimer(5000, 6000)
	for now := int64(1000); now < 6000; now += 250 {
		out, completed := Reconcile(tm, now)
		if completed {
			t.Fatalf("now=%d: completed before deadline", now)
		}
		if out.RemainingMs != 6000-now {
			t.Fatalf("now=%d: expected remaining %d, got %d", now, 6000-now, out.RemainingMs)
		}
		if out.State != StateRunning || out.EndAtEpochMs == nil || *out.EndAtEpochMs != 6000 {
			t.Fatalf("now=%d: running fields changed: %+v", now, out)
		}
	}
}

func TestReconcile_CompletionBoundary(t *testing.T) {
	tm := runningTimer(5000, 6000)
	for _, now := range []int64{6000, 6001, 6000 + int64(10*time.Hour/time.Millisecond)} {
		out, completed := Reconcile(tm, now)
		if !completed {
			t.Fatalf("now=%d: expected completion", now)
		}
		if out.State != StateDone || out.RemainingMs != 0 || out.EndAtEpochMs != nil {
			t.Fatalf("now=%d: bad done timer: %+v", now, out)
		}
	}
}

func TestReconcile_IdempotentOnceDone(t *testing.T) {
	out, completed := Reconcile(runningTimer(5000, 6000), 7000)
	if !completed {
		t.Fatal("expected first pass to complete")
	}
	again, completed := Reconcile(out, 7000)
	if completed {
		t.Fatal("second pass must not complete again")
	}
	if !again.Equal(out) {
		t.Fatalf("second pass changed timer: %+v", again)
	}
}

func TestReconcile_ClockJumpBackwardClampsToDuration(t *testing.T) {
	out, completed := Reconcile(runningTimer(5000, 6000), -100000)
	if completed {
		t.Fatal("unexpected completion")
	}
	if out.RemainingMs != 5000 {
		t.Fatalf("expected remaining clamped to 5000, got %d", out.RemainingMs)
	}
	if out.EndAtEpochMs == nil || *out.EndAtEpochMs != 6000 {
		t.Fatalf("clamping must keep the deadline, got %+v", out.EndAtEpochMs)
	}
	// Back inside the timer's window the value is exact again.
	out, _ = Reconcile(out, 2500)
	if out.RemainingMs != 3500 {
		t.Fatalf("expected exact remaining 3500, got %d", out.RemainingMs)
	}
}

func TestReconcile_RunningWithoutDeadlineCompletes(t *testing.T) {
	tm := Timer{ID: "bad", DurationMs: 1000, State: StateRunning, RemainingMs: 400}
	out, completed := Reconcile(tm, 10)
	if !completed || out.State != StateDone {
		t.Fatalf("expected corrupt running timer to complete, got %+v", out)
	}
}

func TestReconcileAll_TwoIdenticalDeadlines(t *testing.T) {
	a := runningTimer(5000, 6000)
	b := runningTimer(5000, 6000)
	b.ID = "t2"
	idle := Timer{ID: "t3", DurationMs: 100, State: StateIdle, RemainingMs: 100}
	res := ReconcileAll([]Timer{a, idle, b}, 6000)
	if len(res.Completed) != 2 {
		t.Fatalf("expected 2 completions, got %d", len(res.Completed))
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	if res.Timers[1].State != StateIdle {
		t.Fatalf("idle timer changed: %+v", res.Timers[1])
	}
	if res.Completed[0].EndAtEpochMs == nil {
		t.Fatal("completed copies must keep their deadline")
	}
}

func TestReconcileAll_NoChange(t *testing.T) {
	idle := Timer{ID: "t3", DurationMs: 100, State: StateIdle, RemainingMs: 100}
	res := ReconcileAll([]Timer{idle}, 50)
	if res.Changed || len(res.Completed) != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestRemainingAt(t *testing.T) {
	tm := runningTimer(5000, 6000)
	if got := RemainingAt(tm, 4000); got != 2000 {
		t.Fatalf("expected 2000, got %d", got)
	}
	if tm.RemainingMs != 5000 {
		t.Fatal("RemainingAt must not mutate its argument")
	}
}
