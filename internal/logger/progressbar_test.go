package logger

import (
	"strings"
	"testing"
)

// TestProgressBarRender verifies bar fill at various completion points.
func TestProgressBarRender(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		current int
		want    string
	}{
		{"empty", 100, 0, "[          ] 0/100 (0%)"},
		{"half", 100, 50, "[=====     ] 50/100 (50%)"},
		{"full", 100, 100, "[==========] 100/100 (100%)"},
		{"zero total", 0, 0, "[          ] 0/0 (0%)"},
		{"over total clamps", 10, 15, "[==========] 15/10 (100%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pb := NewProgressBar(tt.total, 10, false)
			pb.Update(tt.current)
			if got := pb.Render(); got != tt.want {
				t.Errorf("Render() = %q, want %q", got, tt.want)
			}
		})
	}
}

// TestProgressBarColor verifies ANSI codes appear only when enabled.
func TestProgressBarColor(t *testing.T) {
	pb := NewProgressBar(10, 10, true)
	pb.Update(5)
	if got := pb.Render(); !strings.HasPrefix(got, "\033[36m") {
		t.Errorf("expected cyan for in-progress, got %q", got)
	}

	pb.Update(10)
	if got := pb.Render(); !strings.HasPrefix(got, "\033[32m") {
		t.Errorf("expected green for complete, got %q", got)
	}

	plain := NewProgressBar(10, 10, false)
	plain.Update(5)
	if got := plain.Render(); strings.Contains(got, "\033[") {
		t.Errorf("unexpected color codes: %q", got)
	}
}

// TestProgressBarIncrement verifies Increment advances by one.
func TestProgressBarIncrement(t *testing.T) {
	pb := NewProgressBar(3, 10, false)
	pb.Increment()
	pb.Increment()
	if pb.Current() != 2 {
		t.Errorf("Current() = %d, want 2", pb.Current())
	}
	if pb.Total() != 3 {
		t.Errorf("Total() = %d, want 3", pb.Total())
	}
}

// TestProgressBarPercentage verifies percentage clamping.
func TestProgressBarPercentage(t *testing.T) {
	tests := []struct {
		total, current, want int
	}{
		{100, 0, 0},
		{100, 33, 33},
		{100, 100, 100},
		{100, 150, 100},
		{0, 5, 0},
		{3, 1, 33},
	}
	for _, tt := range tests {
		pb := NewProgressBar(tt.total, 10, false)
		pb.Update(tt.current)
		if got := pb.Percentage(); got != tt.want {
			t.Errorf("Percentage(%d/%d) = %d, want %d", tt.current, tt.total, got, tt.want)
		}
	}
}

// TestProgressBarMinimumWidth verifies the width floor.
func TestProgressBarMinimumWidth(t *testing.T) {
	pb := NewProgressBar(10, 0, false)
	if pb.width != 10 {
		t.Errorf("width = %d, want the floor of 10", pb.width)
	}
}
