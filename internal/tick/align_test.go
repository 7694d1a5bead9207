package tick

import (
	"context"
	"testing"
	"time"
)

func TestNextBoundary(t *testing.T) {
	iv := 100 * time.Millisecond
	tests := []struct {
		name   string
		nowMs  int64
		wantMs int64
	}{
		{"mid interval", 1_234, 1_300},
		{"just after boundary", 1_201, 1_300},
		{"just before boundary", 1_299, 1_300},
		{"on boundary advances", 1_300, 1_400},
		{"zero", 0, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBoundary(time.UnixMilli(tt.nowMs), iv).UnixMilli()
			if got != tt.wantMs {
				t.Fatalf("NextBoundary(%d) = %d, want %d", tt.nowMs, got, tt.wantMs)
			}
		})
	}
}

func TestNextBoundary_NoDrift(t *testing.T) {
	iv := 100 * time.Millisecond
	now := time.UnixMilli(1_000)
	for i := 0; i < 50; i++ {
		// a slow cycle that overran by 37ms still lands on the grid
		next := NextBoundary(now.Add(37*time.Millisecond), iv)
		if next.UnixMilli()%100 != 0 {
			t.Fatalf("boundary %d is off the grid", next.UnixMilli())
		}
		now = next
	}
}

func TestNextBoundary_NonPositiveInterval(t *testing.T) {
	now := time.UnixMilli(42)
	if got := NextBoundary(now, 0); !got.Equal(now) {
		t.Fatalf("expected now back, got %v", got)
	}
}

func TestTicker_Aligned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tk := NewTicker(ctx, 50*time.Millisecond)
	defer tk.Stop()

	for i := 0; i < 3; i++ {
		select {
		case now := <-tk.C:
			// wake-up latency is allowed, early delivery is not
			if off := now.UnixNano() % int64(50*time.Millisecond); off > int64(40*time.Millisecond) {
				t.Fatalf("tick %d arrived %v after its boundary", i, time.Duration(off))
			}
		case <-time.After(time.Second):
			t.Fatal("ticker did not tick")
		}
	}
}

func TestTicker_StopClosesLoop(t *testing.T) {
	tk := NewTicker(context.Background(), 10*time.Millisecond)
	tk.Stop()
	select {
	case <-tk.done:
	default:
		t.Fatal("ticker goroutine still running after Stop")
	}
}
