package backoff

import (
	"testing"
	"time"
)

func TestExponentialGrowth(t *testing.T) {
	base := 100 * time.Millisecond
	max := 10 * time.Second

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{attempt: 0, expected: 100 * time.Millisecond},
		{attempt: 1, expected: 200 * time.Millisecond},
		{attempt: 2, expected: 400 * time.Millisecond},
		{attempt: 3, expected: 800 * time.Millisecond},
	}

	for _, tt := range tests {
		got := Exponential(tt.attempt, base, max, 2.0, 0)
		if got != tt.expected {
			t.Errorf("attempt %d: got %v, want %v", tt.attempt, got, tt.expected)
		}
	}
}

func TestExponentialCapped(t *testing.T) {
	base := 1 * time.Second
	max := 5 * time.Second

	for attempt := 3; attempt < 50; attempt++ {
		got := Exponential(attempt, base, max, 2.0, 0)
		if got != max {
			t.Errorf("attempt %d: got %v, want cap %v", attempt, got, max)
		}
	}
}

func TestExponentialNegativeAttempt(t *testing.T) {
	base := 100 * time.Millisecond
	got := Exponential(-3, base, time.Minute, 2.0, 0)
	if got != base {
		t.Errorf("negative attempt: got %v, want %v", got, base)
	}
}

func TestExponentialJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	max := 10 * time.Second
	jitter := 0.5

	for i := 0; i < 1000; i++ {
		got := Exponential(2, base, max, 2.0, jitter)
		lower := 400 * time.Millisecond
		upper := time.Duration(float64(lower) * (1 + jitter))
		if got < lower || got > upper {
			t.Fatalf("jittered delay %v outside [%v, %v]", got, lower, upper)
		}
	}
}

func TestExponentialJitterClamped(t *testing.T) {
	base := 100 * time.Millisecond
	max := 10 * time.Second

	// Jitter above 1 behaves as 1; below 0 behaves as 0.
	for i := 0; i < 100; i++ {
		got := Exponential(0, base, max, 2.0, 5.0)
		if got < base || got > 2*base {
			t.Fatalf("clamped jitter produced %v", got)
		}
	}
	if got := Exponential(0, base, max, 2.0, -1); got != base {
		t.Errorf("negative jitter: got %v, want %v", got, base)
	}
}

func TestExponentialNeverExceedsMax(t *testing.T) {
	base := 1 * time.Second
	max := 3 * time.Second

	for i := 0; i < 1000; i++ {
		if got := Exponential(10, base, max, 2.0, 1.0); got > max {
			t.Fatalf("delay %v exceeds max %v", got, max)
		}
	}
}
