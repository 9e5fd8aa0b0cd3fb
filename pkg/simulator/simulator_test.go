package simulator

import (
	"testing"
	"time"

	"dcfclock/pkg/port"
)

func TestFrameTime(t *testing.T) {
	// a fixed zone carries no DST rule, so the flag is deterministic
	zone := time.FixedZone("CET", 3600)
	got := frameTime(time.Date(2026, time.August, 28, 13, 45, 0, 0, zone))

	if got.Minute != 45 || got.Hour != 13 || got.Day != 28 {
		t.Fatalf("frameTime() = %+v", got)
	}
	if got.Weekday != time.Friday || got.Month != time.August || got.Year != 2026 {
		t.Fatalf("frameTime() date = %+v", got)
	}
	if got.DST {
		t.Fatal("frameTime() DST set for fixed zone")
	}
}

func TestSecondaryEdge(t *testing.T) {
	if secondary(port.RisingEdge) != port.FallingEdge {
		t.Fatal("secondary of rising edge")
	}
	if secondary(port.FallingEdge) != port.RisingEdge {
		t.Fatal("secondary of falling edge")
	}
}

// TestUnwatchedLineSilent verifies that an unwatched line drops its edges
// instead of blocking on the event channel.
func TestUnwatchedLineSilent(t *testing.T) {
	l := New(port.FallingEdge)
	defer func() { _ = l.Close() }()

	done := make(chan struct{})
	go func() {
		l.send(port.Event{Type: port.FallingEdge})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("send blocked on unwatched line")
	}
}
