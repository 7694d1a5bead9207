package scheduler

import (
	"container/heap"
	"time"
)

// wakeQueue holds at most one entry per timer id, ordered by fire time.
// pos tracks each entry's heap index so replacing or cancelling a timer's
// wake does not scan the queue.
type wakeQueue struct {
	entries []ScheduleEvent
	pos     map[string]int
}

func newWakeQueue() *wakeQueue {
	return &wakeQueue{pos: make(map[string]int)}
}

func (q *wakeQueue) Len() int { return len(q.entries) }

// Less orders by fire time; equal times fall back to id so firing order is
// stable for timers sharing a deadline.
func (q *wakeQueue) Less(i, j int) bool {
	a, b := q.entries[i], q.entries[j]
	if a.FireAt.Equal(b.FireAt) {
		return a.ID < b.ID
	}
	return a.FireAt.Before(b.FireAt)
}

func (q *wakeQueue) Swap(i, j int) {
	q.entries[i], q.entries[j] = q.entries[j], q.entries[i]
	q.pos[q.entries[i].ID] = i
	q.pos[q.entries[j].ID] = j
}

func (q *wakeQueue) Push(x any) {
	e := x.(ScheduleEvent)
	q.pos[e.ID] = len(q.entries)
	q.entries = append(q.entries, e)
}

func (q *wakeQueue) Pop() any {
	n := len(q.entries)
	e := q.entries[n-1]
	q.entries = q.entries[:n-1]
	delete(q.pos, e.ID)
	return e
}

// set registers e, replacing the pending wake of the same timer.
func (q *wakeQueue) set(e ScheduleEvent) {
	if i, ok := q.pos[e.ID]; ok {
		q.entries[i] = e
		heap.Fix(q, i)
		return
	}
	heap.Push(q, e)
}

// remove drops the wake of id and reports whether one was pending.
func (q *wakeQueue) remove(id string) bool {
	i, ok := q.pos[id]
	if !ok {
		return false
	}
	heap.Remove(q, i)
	return true
}

// next returns the earliest fire time.
func (q *wakeQueue) next() (time.Time, bool) {
	if len(q.entries) == 0 {
		return time.Time{}, false
	}
	return q.entries[0].FireAt, true
}

// popDue removes and returns every entry due at or before now, earliest
// first.
func (q *wakeQueue) popDue(now time.Time) []ScheduleEvent {
	var due []ScheduleEvent
	for len(q.entries) > 0 && !q.entries[0].FireAt.After(now) {
		due = append(due, heap.Pop(q).(ScheduleEvent))
	}
	return due
}
