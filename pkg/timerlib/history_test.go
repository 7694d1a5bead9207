package timerlib

import "testing"

func TestHistoryID_Deterministic(t *testing.T) {
	a := HistoryID("t1", 6000)
	if a != HistoryID("t1", 6000) {
		t.Fatal("same completion must yield the same id")
	}
	if a == HistoryID("t1", 6001) {
		t.Fatal("different deadlines must yield different ids")
	}
	if a == HistoryID("t2", 6000) {
		t.Fatal("different timers must yield different ids")
	}
}

func TestNewHistoryEntry_Snapshot(t *testing.T) {
	g := "cooking"
	tm := Timer{ID: "t1", Label: "pasta", ColorIndex: 2, GroupID: &g, DurationMs: 5000,
		State: StateRunning, EndAtEpochMs: Ms(6000)}
	h := NewHistoryEntry(tm, 6100)
	if h.ID != HistoryID("t1", 6000) {
		t.Fatalf("unexpected id %s", h.ID)
	}
	if h.TimerLabel != "pasta" || h.ColorIndex != 2 || h.DurationMs != 5000 || h.CompletedAtEpochMs != 6100 {
		t.Fatalf("bad snapshot: %+v", h)
	}
	g = "changed"
	if *h.GroupID != "cooking" {
		t.Fatal("group id must be copied")
	}
}
