package timerlib

import "time"

// Preset is a reusable label and duration pair.
type Preset struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	DurationMs int64  `json:"durationMs"`
}

// RecordID implements the store's record identity.
func (p Preset) RecordID() string { return p.ID }

// GroupIcon selects the icon shown for a Group.
type GroupIcon string

const (
	IconDefault  GroupIcon = "DEFAULT"
	IconCooking  GroupIcon = "COOKING"
	IconExercise GroupIcon = "EXERCISE"
	IconStudy    GroupIcon = "STUDY"
	IconWork     GroupIcon = "WORK"
	IconBreak    GroupIcon = "BREAK"
	IconCustom   GroupIcon = "CUSTOM"
)

// Group is a tag timers may weakly reference by id.
type Group struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Icon             GroupIcon `json:"icon"`
	CreatedAtEpochMs int64     `json:"createdAtEpochMs"`
}

// RecordID implements the store's record identity.
func (g Group) RecordID() string { return g.ID }

// DefaultPresets are seeded into an empty preset collection.
func DefaultPresets() []Preset {
	return []Preset{
		{ID: "5min", Label: "5 min", DurationMs: (5 * time.Minute).Milliseconds()},
		{ID: "10min", Label: "10 min", DurationMs: (10 * time.Minute).Milliseconds()},
		{ID: "25min", Label: "25 min", DurationMs: (25 * time.Minute).Milliseconds()},
	}
}

// DefaultGroups are seeded into an empty group collection.
func DefaultGroups(now time.Time) []Group {
	ms := now.UnixMilli()
	return []Group{
		{ID: "cooking", Name: "cooking", Icon: IconCooking, CreatedAtEpochMs: ms},
		{ID: "exercise", Name: "exercise", Icon: IconExercise, CreatedAtEpochMs: ms},
		{ID: "study", Name: "study", Icon: IconStudy, CreatedAtEpochMs: ms},
		{ID: "work", Name: "work", Icon: IconWork, CreatedAtEpochMs: ms},
		{ID: "break", Name: "break", Icon: IconBreak, CreatedAtEpochMs: ms},
	}
}

// FirstRunTimer is created when the daemon starts with no timers at all.
func FirstRunTimer(now time.Time) Timer {
	t, _ := NewTimer("Parallel Timer", ColorBlue, (5 * time.Minute).Milliseconds(), nil, now)
	return t
}
