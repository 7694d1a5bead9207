package timerlib

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxLabelLen is the maximum number of runes kept in a timer label.
const MaxLabelLen = 20

// State is the lifecycle state of a Timer.
type State string

const (
	StateIdle    State = "Idle"
	StateRunning State = "Running"
	StatePaused  State = "Paused"
	StateDone    State = "Done"
)

// Valid reports whether s is one of the known states.
func (s State) Valid() bool {
	switch s {
	case StateIdle, StateRunning, StatePaused, StateDone:
		return true
	}
	return false
}

// Timer is a single countdown. The JSON form is the persisted record format;
// unknown fields are ignored on decode.
type Timer struct {
	ID               string  `json:"id"`
	Label            string  `json:"label"`
	ColorIndex       int     `json:"colorIndex"`
	GroupID          *string `json:"groupId,omitempty"`
	DurationMs       int64   `json:"durationMs"`
	State            State   `json:"state"`
	RemainingMs      int64   `json:"remainingMs"`
	EndAtEpochMs     *int64  `json:"endAtEpochMs,omitempty"`
	CreatedAtEpochMs int64   `json:"createdAtEpochMs"`
}

// NewTimer builds an Idle timer with a fresh id. The label is truncated and
// the color clamped; durationMs must be positive.
func NewTimer(label string, colorIndex int, durationMs int64, groupID *string, now time.Time) (Timer, error) {
	if durationMs <= 0 {
		return Timer{}, ErrInvalidDuration
	}
	return Timer{
		ID:               uuid.NewString(),
		Label:            TruncateLabel(label),
		ColorIndex:       ClampColor(colorIndex),
		GroupID:          NormalizeGroupID(groupID),
		DurationMs:       durationMs,
		State:            StateIdle,
		RemainingMs:      durationMs,
		CreatedAtEpochMs: now.UnixMilli(),
	}, nil
}

// RecordID implements the store's record identity.
func (t Timer) RecordID() string { return t.ID }

// IsRunning reports whether the timer is counting down.
func (t Timer) IsRunning() bool { return t.State == StateRunning }

// Group returns the group id or "" when the timer is ungrouped.
func (t Timer) Group() string {
	if t.GroupID == nil {
		return ""
	}
	return *t.GroupID
}

// Equal reports whether a and b hold identical field values.
func (t Timer) Equal(o Timer) bool {
	return t.ID == o.ID &&
		t.Label == o.Label &&
		t.ColorIndex == o.ColorIndex &&
		t.Group() == o.Group() &&
		(t.GroupID == nil) == (o.GroupID == nil) &&
		t.DurationMs == o.DurationMs &&
		t.State == o.State &&
		t.RemainingMs == o.RemainingMs &&
		equalMs(t.EndAtEpochMs, o.EndAtEpochMs) &&
		t.CreatedAtEpochMs == o.CreatedAtEpochMs
}

func equalMs(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Validate checks the invariants of a persisted timer.
func Validate(t Timer) error {
	if t.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidState)
	}
	if !t.State.Valid() {
		return fmt.Errorf("%w: unknown state %q", ErrInvalidState, t.State)
	}
	if t.DurationMs <= 0 {
		return fmt.Errorf("%w: duration %d", ErrInvalidState, t.DurationMs)
	}
	if t.RemainingMs < 0 || t.RemainingMs > t.DurationMs {
		return fmt.Errorf("%w: remaining %d outside [0, %d]", ErrInvalidState, t.RemainingMs, t.DurationMs)
	}
	if t.IsRunning() != (t.EndAtEpochMs != nil) {
		return fmt.Errorf("%w: endAt present=%t in state %s", ErrInvalidState, t.EndAtEpochMs != nil, t.State)
	}
	return nil
}

// TruncateLabel trims surrounding whitespace and keeps at most MaxLabelLen runes.
func TruncateLabel(label string) string {
	label = strings.TrimSpace(label)
	if utf8.RuneCountInString(label) <= MaxLabelLen {
		return label
	}
	return string([]rune(label)[:MaxLabelLen])
}

// NormalizeGroupID maps an empty group id to nil.
func NormalizeGroupID(groupID *string) *string {
	if groupID == nil || *groupID == "" {
		return nil
	}
	g := *groupID
	return &g
}

// Ms returns a pointer to v, for the optional timestamp fields.
func Ms(v int64) *int64 { return &v }

// StringPtr returns a pointer to s, or nil for "".
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
