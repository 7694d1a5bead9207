// Package timerlib holds the countdown timer domain model and the pure
// reconciliation logic shared by the daemon and its clients.
//
// A Timer is authoritative in one of two ways: while Running, its true
// remaining time is derived from the absolute EndAtEpochMs deadline; in every
// other state RemainingMs is the source of truth. Reconcile is the only place
// that converts between the two, and it never reads a clock itself.
package timerlib
