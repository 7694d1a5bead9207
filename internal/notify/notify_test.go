package notify

import (
	"testing"

	"github.com/ptimer/ptimer/pkg/logger"
)

func TestMultiFansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, b, Nop{}}

	m.NotifyCompleted("t1", "tea")
	m.NotifyCompleted("t1", "tea")
	m.CancelNotification("t2")

	for i, r := range []*Recorder{a, b} {
		if got := r.Completed(); len(got) != 2 || got[0] != "t1" {
			t.Fatalf("recorder %d: unexpected completed %v", i, got)
		}
		if got := r.Cancelled(); len(got) != 1 || got[0] != "t2" {
			t.Fatalf("recorder %d: unexpected cancelled %v", i, got)
		}
	}
}

func TestLogNotifier(t *testing.T) {
	ml := logger.NewMockLogger()
	n := NewLog(ml)
	n.NotifyCompleted("t1", "pasta")
	n.CancelNotification("t1")

	if !ml.HasInfo("pasta") {
		t.Fatal("expected completion to be logged")
	}
}
