package progress

import (
	"testing"
	"time"
)

func TestPercent(t *testing.T) {
	if got := Percent(1234, 0); got != 0.0 {
		t.Fatalf("zero denominator: got %v, want 0", got)
	}
	if got := Percent(50, 100); got != 50.0 {
		t.Fatalf("got %v, want 50", got)
	}
	if got := Percent(200, 100); got != 100.0 {
		t.Fatalf("overshoot should clamp to 100, got %v", got)
	}
	if got := Percent(0, 100); got != 0.0 {
		t.Fatalf("got %v, want 0", got)
	}
}

func TestETAEdgeCases(t *testing.T) {
	if _, ok := ETA(100, 0, time.Now()); ok {
		t.Fatalf("zero denominator should have no ETA")
	}
	if _, ok := ETA(0, 100, time.Now()); ok {
		t.Fatalf("zero processed should have no ETA")
	}
	d, ok := ETA(100, 100, time.Now())
	if !ok || d != 0 {
		t.Fatalf("complete scan should report zero ETA, got %v %v", d, ok)
	}
}

func TestETAFromThroughput(t *testing.T) {
	d, ok := ETAFromThroughput(500, 1000, 100)
	if !ok {
		t.Fatalf("expected estimate")
	}
	if d != 5*time.Second {
		t.Fatalf("got %v, want 5s", d)
	}
	if _, ok := ETAFromThroughput(500, 1000, 0); ok {
		t.Fatalf("zero throughput should have no ETA")
	}
}

func TestEWMA(t *testing.T) {
	if got := EWMA(nil, 100.0, 0.2); got != 100.0 {
		t.Fatalf("seed: got %v, want 100", got)
	}
	prev := 100.0
	if got := EWMA(&prev, 200.0, 0.2); got != 120.0 {
		t.Fatalf("got %v, want 120", got)
	}
	// Alpha clamped to [0, 1].
	if got := EWMA(&prev, 200.0, 5.0); got != 200.0 {
		t.Fatalf("alpha > 1 should clamp: got %v, want 200", got)
	}
	if got := EWMA(&prev, 200.0, -1.0); got != 100.0 {
		t.Fatalf("alpha < 0 should clamp: got %v, want 100", got)
	}
}

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{10 * 1024 * 1024, "10.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, tc := range cases {
		if got := FormatBytes(tc.in); got != tc.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatETA(t *testing.T) {
	if got := FormatETA(0, false); got != "--:--:--" {
		t.Fatalf("missing estimate: got %q", got)
	}
	if got := FormatETA(time.Hour+23*time.Minute+45*time.Second, true); got != "01:23:45" {
		t.Fatalf("got %q, want 01:23:45", got)
	}
	if got := FormatETA(0, true); got != "00:00:00" {
		t.Fatalf("got %q, want 00:00:00", got)
	}
}
