package scheduler

import "time"

// Payload is delivered back to the wake callback when an entry fires.
type Payload struct {
	Label string
}

// ScheduleEvent is one pending wake entry. At most one entry exists per ID.
type ScheduleEvent struct {
	// ID is the timer id the entry belongs to.
	ID string
	// FireAt is the wall-clock time at which the entry fires. In inexact
	// mode this is the batched time, never earlier than requested.
	FireAt  time.Time
	Payload Payload
}
