package timerlib

import "testing"

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{5 * 60 * 1000, "5m"},
		{5*60*1000 + 30*1000, "5m 30s"},
		{45 * 1000, "45s"},
		{3600 * 1000, "1h"},
		{3900 * 1000, "1h 5m"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00"},
		{1, "00:01"},
		{59_001, "01:00"},
		{299_000, "04:59"},
		{3_723_000, "1:02:03"},
		{-5, "00:00"},
	}
	for _, tt := range tests {
		if got := FormatRemaining(tt.ms); got != tt.want {
			t.Errorf("FormatRemaining(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}
