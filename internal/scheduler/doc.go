// Package scheduler implements the wake scheduler: a single-goroutine
// min-heap of wake entries keyed by timer id, sorted by fire time, with a
// max-sleep cap so NTP steps, DST transitions and host suspension are
// noticed within one cap interval.
//
// The scheduler holds no durable state. The daemon rebuilds the heap from
// persisted Running timers on start (see LoadSchedules).
package scheduler
