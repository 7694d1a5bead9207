// Package tick runs the periodic reconciliation loop of the daemon.
//
// Each cycle re-reads every timer from the repository, reconciles it against
// the wall clock and persists what changed. Completions are recorded in
// history before the Done state is written; history ids are derived from
// the completed deadline, so a retried or repeated cycle cannot record the
// same completion twice. Notifications and wake cancellation are requested
// only after the write succeeded.
package tick
