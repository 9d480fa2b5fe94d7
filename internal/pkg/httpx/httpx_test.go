package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"canceled", context.Canceled, false},
		{"503", statusErr(503), true},
		{"408", statusErr(408), true},
		{"429", statusErr(429), false},
		{"401", statusErr(401), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestJitterSleepBounds(t *testing.T) {
	for i := 0; i < 50; i++ {
		d := JitterSleep(time.Second)
		if d < 800*time.Millisecond || d > 1200*time.Millisecond {
			t.Fatalf("jitter out of range: %s", d)
		}
	}
	if JitterSleep(0) != 0 {
		t.Fatalf("expected zero jitter for zero base")
	}
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	base := 100 * time.Millisecond
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 500 * time.Millisecond, 500 * time.Millisecond}
	for i, w := range want {
		if got := Backoff(i+1, base, 500*time.Millisecond); got != w {
			t.Fatalf("attempt %d: got %s want %s", i+1, got, w)
		}
	}
	if got := Backoff(4, base, 0); got != 800*time.Millisecond {
		t.Fatalf("uncapped: got %s", got)
	}
}
