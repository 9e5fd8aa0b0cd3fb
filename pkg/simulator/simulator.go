// Package simulator emulates the DCF77 receiver pin. It derives the edge
// sequence from the system clock, which allows running the daemon on a
// machine without receiver hardware and exercises the frame encoder.
package simulator

import (
	"sync/atomic"
	"time"

	"dcfclock/pkg/dcf77"
	"dcfclock/pkg/port"
)

const (
	shortPulse = 100 * time.Millisecond
	longPulse  = 200 * time.Millisecond
)

// Line is a fake receiver line producing an ideal DCF77 signal. It
// implements the same interface as a watched gpio pin.
type Line struct {
	startEdge port.EventType
	watching  int32
	c         chan port.Event
	quit      chan struct{}
	done      chan struct{}
}

// New starts a simulated receiver line. startEdge is the transition that
// begins a second mark, matching the polarity the decoder is configured
// for.
func New(startEdge port.EventType) *Line {
	l := &Line{
		startEdge: startEdge,
		c:         make(chan port.Event),
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	go l.run()
	return l
}

// run emits the edge pair of every second mark and skips the 59th second,
// leaving the sync gap. As on air, the frame transmitted during a minute
// announces the minute that begins with its sync gap.
func (l *Line) run() {
	frame := dcf77.Encode(frameTime(time.Now().Truncate(time.Minute).Add(time.Minute)))

	for {
		next := time.Now().Truncate(time.Second).Add(time.Second)

		select {
		case <-l.quit:
			l.done <- struct{}{}
			return
		case <-time.After(time.Until(next)):
		}

		sec := next.Second()
		if sec == 0 {
			frame = dcf77.Encode(frameTime(next.Add(time.Minute)))
		}
		if sec == dcf77.FrameBits-1 {
			// sync gap, the carrier stays up
			continue
		}

		width := shortPulse
		if frame[sec] == dcf77.One {
			width = longPulse
		}

		// the scheduled instant is used as timestamp, the simulated
		// signal carries no jitter
		ts := time.Duration(next.UnixNano())
		l.send(port.Event{Type: l.startEdge, Timestamp: ts})
		time.Sleep(width)
		l.send(port.Event{Type: secondary(l.startEdge), Timestamp: ts + width})
	}
}

func (l *Line) send(evt port.Event) {
	if atomic.LoadInt32(&l.watching) == 0 {
		return
	}
	l.c <- evt
}

func secondary(e port.EventType) port.EventType {
	if e == port.RisingEdge {
		return port.FallingEdge
	}
	return port.RisingEdge
}

// frameTime converts the local wall clock to a frame time value.
func frameTime(t time.Time) dcf77.Time {
	return dcf77.Time{
		Minute:  t.Minute(),
		Hour:    t.Hour(),
		Day:     t.Day(),
		Weekday: t.Weekday(),
		Month:   t.Month(),
		Year:    t.Year(),
		DST:     t.IsDST(),
	}
}

// Events delivers the edge events of the simulated line.
func (l *Line) Events() chan port.Event {
	return l.c
}

// Watch starts edge reporting.
func (l *Line) Watch() error {
	atomic.StoreInt32(&l.watching, 1)
	return nil
}

// Unwatch pauses edge reporting.
func (l *Line) Unwatch() {
	atomic.StoreInt32(&l.watching, 0)
}

// Close stops the simulation.
func (l *Line) Close() error {
	l.Unwatch()
	l.quit <- struct{}{}
	<-l.done
	close(l.c)
	return nil
}
