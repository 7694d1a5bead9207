package scheduler

import (
	"testing"
	"time"
)

func TestWakeQueueOrdering(t *testing.T) {
	q := newWakeQueue()
	base := time.Now()

	q.set(ScheduleEvent{ID: "late", FireAt: base.Add(3 * time.Hour)})
	q.set(ScheduleEvent{ID: "early", FireAt: base.Add(1 * time.Hour)})
	q.set(ScheduleEvent{ID: "middle", FireAt: base.Add(2 * time.Hour)})

	due := q.popDue(base.Add(4 * time.Hour))
	if len(due) != 3 {
		t.Fatalf("expected 3 due entries, got %d", len(due))
	}
	for i, want := range []string{"early", "middle", "late"} {
		if due[i].ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, due[i].ID)
		}
	}
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}
}

func TestWakeQueueSetReplacesSameTimer(t *testing.T) {
	q := newWakeQueue()
	base := time.Now()

	q.set(ScheduleEvent{ID: "tea", FireAt: base.Add(time.Hour)})
	q.set(ScheduleEvent{ID: "egg", FireAt: base.Add(30 * time.Minute)})
	q.set(ScheduleEvent{ID: "tea", FireAt: base.Add(time.Minute), Payload: Payload{Label: "green"}})

	if q.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", q.Len())
	}
	next, ok := q.next()
	if !ok || !next.Equal(base.Add(time.Minute)) {
		t.Fatalf("expected replaced fire time first, got %v", next)
	}
	due := q.popDue(base.Add(time.Minute))
	if len(due) != 1 || due[0].ID != "tea" || due[0].Payload.Label != "green" {
		t.Fatalf("unexpected due entries: %+v", due)
	}
}

func TestWakeQueueEqualFireTimesOrderByID(t *testing.T) {
	q := newWakeQueue()
	same := time.Now().Add(time.Hour)

	q.set(ScheduleEvent{ID: "c", FireAt: same})
	q.set(ScheduleEvent{ID: "a", FireAt: same})
	q.set(ScheduleEvent{ID: "b", FireAt: same})

	due := q.popDue(same)
	if len(due) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(due))
	}
	for i, want := range []string{"a", "b", "c"} {
		if due[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, due[i].ID)
		}
	}
}

func TestWakeQueueRemove(t *testing.T) {
	q := newWakeQueue()
	base := time.Now()
	q.set(ScheduleEvent{ID: "a", FireAt: base.Add(1 * time.Hour)})
	q.set(ScheduleEvent{ID: "b", FireAt: base.Add(2 * time.Hour)})
	q.set(ScheduleEvent{ID: "c", FireAt: base.Add(3 * time.Hour)})

	if !q.remove("b") {
		t.Fatal("expected removal to succeed")
	}
	if q.remove("missing") {
		t.Fatal("expected removal of unknown id to fail")
	}
	due := q.popDue(base.Add(4 * time.Hour))
	if len(due) != 2 || due[0].ID != "a" || due[1].ID != "c" {
		t.Fatalf("unexpected due entries: %+v", due)
	}
}

func TestWakeQueuePopDueLeavesFutureEntries(t *testing.T) {
	q := newWakeQueue()
	base := time.Now()
	q.set(ScheduleEvent{ID: "now", FireAt: base})
	q.set(ScheduleEvent{ID: "later", FireAt: base.Add(time.Second)})

	due := q.popDue(base)
	if len(due) != 1 || due[0].ID != "now" {
		t.Fatalf("unexpected due entries: %+v", due)
	}
	if _, ok := q.next(); !ok {
		t.Fatal("expected the later entry to remain")
	}
	if _, ok := newWakeQueue().next(); ok {
		t.Fatal("empty queue reported a next entry")
	}
}
