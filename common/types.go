package common

import "github.com/ptimer/ptimer/pkg/timerlib"

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// IDParams names a single timer.
type IDParams struct {
	ID string `json:"id"`
}

// ListParams filters timer.list.
type ListParams struct {
	GroupID string `json:"groupId,omitempty"`
}

// ListResult is the response for timer.list. Remaining times of running
// timers are derived at NowEpochMs and are not persisted.
type ListResult struct {
	Timers     []timerlib.Timer `json:"timers"`
	NowEpochMs int64            `json:"nowEpochMs"`
}

// CreateParams is the input for timer.create.
type CreateParams struct {
	Label      string  `json:"label"`
	ColorIndex int     `json:"colorIndex"`
	DurationMs int64   `json:"durationMs"`
	GroupID    *string `json:"groupId,omitempty"`
}

// PresetParams is the input for timer.createFromPreset. PresetID looks up a
// stored preset; otherwise DurationMs is used directly.
type PresetParams struct {
	PresetID   string  `json:"presetId,omitempty"`
	DurationMs int64   `json:"durationMs,omitempty"`
	Label      string  `json:"label,omitempty"`
	GroupID    *string `json:"groupId,omitempty"`
}

// EditParams is the input for timer.edit.
type EditParams struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	ColorIndex int     `json:"colorIndex"`
	GroupID    *string `json:"groupId,omitempty"`
}

// TimerResult is returned by commands on a single timer. Changed is false
// when the command was a no-op for the timer's current state.
type TimerResult struct {
	Timer   *timerlib.Timer `json:"timer,omitempty"`
	Changed bool            `json:"changed"`
}

// DeleteResult is the response for timer.delete.
type DeleteResult struct {
	Label string `json:"label"`
}

// HistoryResult is the response for history.list.
type HistoryResult struct {
	Entries []timerlib.HistoryEntry `json:"entries"`
}

// StatsParams is the input for history.stats.
type StatsParams struct {
	// TZ is an IANA zone name for day boundaries; empty means the daemon's zone.
	TZ string `json:"tz,omitempty"`
}

// PresetListResult is the response for preset.list.
type PresetListResult struct {
	Presets []timerlib.Preset `json:"presets"`
}

// GroupListResult is the response for group.list.
type GroupListResult struct {
	Groups []timerlib.Group `json:"groups"`
}

// CompletedNotification is pushed when a timer finishes.
type CompletedNotification struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// CancelledNotification is pushed when a shown notification should be withdrawn.
type CancelledNotification struct {
	ID string `json:"id"`
}

// TickNotification is pushed once per second with the daemon's clock.
type TickNotification struct {
	NowEpochMs int64 `json:"nowEpochMs"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}
