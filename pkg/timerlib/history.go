package timerlib

import (
	"strconv"

	"github.com/google/uuid"
)

// historyNamespace scopes the deterministic history ids.
var historyNamespace = uuid.MustParse("6f1c0e5a-3b57-4f0b-9a3e-6a3c2d1f7b90")

// HistoryEntry records one natural completion of a timer. Entries are never
// mutated once written.
type HistoryEntry struct {
	ID                 string  `json:"id"`
	TimerID            string  `json:"timerId,omitempty"`
	TimerLabel         string  `json:"timerLabel"`
	GroupID            *string `json:"groupId,omitempty"`
	ColorIndex         int     `json:"colorIndex"`
	DurationMs         int64   `json:"durationMs"`
	CompletedAtEpochMs int64   `json:"completedAtEpochMs"`
}

// RecordID implements the store's record identity.
func (h HistoryEntry) RecordID() string { return h.ID }

// HistoryID returns the id of the history entry for the completion of the
// run of timerID that ends at endAtMs. The same run always yields the same
// id, which lets appends be idempotent across the tick loop, the wake
// callback and a crash between writing history and writing the timer.
func HistoryID(timerID string, endAtMs int64) string {
	return uuid.NewSHA1(historyNamespace, []byte(timerID+":"+strconv.FormatInt(endAtMs, 10))).String()
}

// NewHistoryEntry snapshots running timer t as completed at completedAtMs.
// t must be the pre-reconcile copy so its deadline is still available.
func NewHistoryEntry(t Timer, completedAtMs int64) HistoryEntry {
	endAt := completedAtMs
	if t.EndAtEpochMs != nil {
		endAt = *t.EndAtEpochMs
	}
	return HistoryEntry{
		ID:                 HistoryID(t.ID, endAt),
		TimerID:            t.ID,
		TimerLabel:         t.Label,
		GroupID:            NormalizeGroupID(t.GroupID),
		ColorIndex:         t.ColorIndex,
		DurationMs:         t.DurationMs,
		CompletedAtEpochMs: completedAtMs,
	}
}
