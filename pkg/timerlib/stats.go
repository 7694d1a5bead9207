package timerlib

import (
	"sort"
	"time"
)

// GroupStatistics aggregates completions for one group.
type GroupStatistics struct {
	GroupID        string `json:"groupId"`
	CompletedCount int    `json:"completedCount"`
	TotalTimeMs    int64  `json:"totalTimeMs"`
}

// Statistics is a report over the completion history.
type Statistics struct {
	TotalCompletedCount int                        `json:"totalCompletedCount"`
	TotalTimeMs         int64                      `json:"totalTimeMs"`
	TodayCompletedCount int                        `json:"todayCompletedCount"`
	TodayTimeMs         int64                      `json:"todayTimeMs"`
	WeekCompletedCount  int                        `json:"weekCompletedCount"`
	WeekTimeMs          int64                      `json:"weekTimeMs"`
	MonthCompletedCount int                        `json:"monthCompletedCount"`
	MonthTimeMs         int64                      `json:"monthTimeMs"`
	GroupStats          map[string]GroupStatistics `json:"groupStats"`
	CurrentStreak       int                        `json:"currentStreak"`
	LongestStreak       int                        `json:"longestStreak"`
}

type day struct {
	y int
	m time.Month
	d int
}

func dayOf(t time.Time) day {
	y, m, d := t.Date()
	return day{y, m, d}
}

func (d day) time(loc *time.Location) time.Time {
	return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, loc)
}

// ComputeStatistics summarizes history as seen at now in loc. The week and
// month windows are the last 7 and 30 calendar days including today.
func ComputeStatistics(history []HistoryEntry, now time.Time, loc *time.Location) Statistics {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	today := dayOf(now).time(loc)
	weekStart := today.AddDate(0, 0, -6)
	monthStart := today.AddDate(0, 0, -29)

	st := Statistics{GroupStats: make(map[string]GroupStatistics)}
	days := make(map[day]struct{})
	for _, h := range history {
		at := time.UnixMilli(h.CompletedAtEpochMs).In(loc)
		d := dayOf(at)
		days[d] = struct{}{}
		date := d.time(loc)

		st.TotalCompletedCount++
		st.TotalTimeMs += h.DurationMs
		if date.Equal(today) {
			st.TodayCompletedCount++
			st.TodayTimeMs += h.DurationMs
		}
		if !date.Before(weekStart) {
			st.WeekCompletedCount++
			st.WeekTimeMs += h.DurationMs
		}
		if !date.Before(monthStart) {
			st.MonthCompletedCount++
			st.MonthTimeMs += h.DurationMs
		}
		if h.GroupID != nil {
			g := st.GroupStats[*h.GroupID]
			g.GroupID = *h.GroupID
			g.CompletedCount++
			g.TotalTimeMs += h.DurationMs
			st.GroupStats[*h.GroupID] = g
		}
	}

	sorted := make([]time.Time, 0, len(days))
	for d := range days {
		sorted = append(sorted, d.time(loc))
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].After(sorted[j]) })

	expected := today
	for _, d := range sorted {
		if d.Equal(expected) {
			st.CurrentStreak++
			expected = expected.AddDate(0, 0, -1)
		} else if d.Before(expected) {
			break
		}
	}

	run := 0
	var prev time.Time
	for i := len(sorted) - 1; i >= 0; i-- {
		d := sorted[i]
		if run > 0 && prev.AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > st.LongestStreak {
			st.LongestStreak = run
		}
		prev = d
	}
	return st
}
