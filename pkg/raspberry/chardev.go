package raspberry

import (
	"sync/atomic"
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"dcfclock/pkg/port"
)

// Chip represents a single GPIO chip accessed over the character device.
type Chip struct {
	gpiodChip *gpiod.Chip
}

// ChardevLine is a requested line on a Chip.
type ChardevLine struct {
	gpiodLine  *gpiod.Line
	lastValue  int
	debounce   time.Duration
	debouncing bool
	watching   int32
	c          chan port.Event
}

// openChip opens the GPIO character device.
func openChip() (*Chip, error) {
	c, err := gpiod.NewChip("gpiochip0")
	if err != nil {
		return nil, err
	}
	return &Chip{gpiodChip: c}, nil
}

// NewLine requests control of a single line on the chip. If granted,
// control is maintained until the Line is closed. The line is watched for
// both edges; there can only be one watcher on the pin at a time.
func (c *Chip) NewLine(gpio int, terminator string, debounce time.Duration) (Line, error) {
	var err error

	line := &ChardevLine{
		debounce: debounce,
		c:        make(chan port.Event),
	}

	switch terminator {
	case "pullup":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(line.handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullUp)
	case "pulldown":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(line.handler),
			gpiod.WithBothEdges, gpiod.AsInput, gpiod.WithPullDown)
	case "none":
		line.gpiodLine, err = c.gpiodChip.RequestLine(gpio, gpiod.WithEventHandler(line.handler),
			gpiod.WithBothEdges, gpiod.AsInput)
	default:
		return nil, ErrInvalidParam
	}

	if err != nil {
		return nil, err
	}
	return line, nil
}

// Close releases the Chip.
func (c *Chip) Close() error {
	return c.gpiodChip.Close()
}

// handler forwards edge events to the line channel. With a debounce time
// configured, the pin level is read back after the bounce timeout and the
// event is only reported if the level actually changed.
func (l *ChardevLine) handler(evt gpiod.LineEvent) {
	if atomic.LoadInt32(&l.watching) == 0 {
		return
	}

	if l.debounce == 0 {
		switch evt.Type {
		case gpiod.LineEventFallingEdge:
			l.c <- port.Event{Type: port.FallingEdge, Timestamp: evt.Timestamp}
		case gpiod.LineEventRisingEdge:
			l.c <- port.Event{Type: port.RisingEdge, Timestamp: evt.Timestamp}
		}
		return
	}

	if l.debouncing {
		debug.TraceLog.Println("bounce signal detected")
		return
	}
	l.debouncing = true

	go func(t time.Duration) {
		defer func() { l.debouncing = false }()

		time.Sleep(l.debounce)

		v, err := l.gpiodLine.Value()
		if err != nil {
			debug.ErrorLog.Println(err)
			return
		}
		if v == l.lastValue {
			debug.TraceLog.Println("no changed value after bounce delay")
			return
		}
		l.lastValue = v

		switch v {
		case 0:
			l.c <- port.Event{Type: port.FallingEdge, Timestamp: t + l.debounce}
		case 1:
			l.c <- port.Event{Type: port.RisingEdge, Timestamp: t + l.debounce}
		}
	}(evt.Timestamp)
}

// Events delivers the edge events of the line.
func (l *ChardevLine) Events() chan port.Event {
	return l.c
}

// Watch starts edge reporting.
func (l *ChardevLine) Watch() error {
	atomic.StoreInt32(&l.watching, 1)
	return nil
}

// Unwatch pauses edge reporting.
func (l *ChardevLine) Unwatch() {
	atomic.StoreInt32(&l.watching, 0)
}

// Close releases all resources held by the requested line.
//
// Note that this includes waiting for any running event handler to
// return, so Close must be called from a different goroutine than the
// handler.
func (l *ChardevLine) Close() error {
	l.Unwatch()
	if err := l.gpiodLine.Close(); err != nil {
		return err
	}
	close(l.c)
	return nil
}
