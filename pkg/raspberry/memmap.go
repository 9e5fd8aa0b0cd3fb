package raspberry

import (
	"sync/atomic"
	"time"

	"github.com/warthog618/gpio"
	"github.com/womat/debug"

	"dcfclock/pkg/port"
)

// Mem is the memory mapped gpio driver (/dev/gpiomem). It predates the
// character device interface and needs no gpiochip; the kernel provides
// no event timestamps, so they are taken in the handler.
type Mem struct{}

// MemLine is a watched pin of the memory mapped driver.
type MemLine struct {
	gpioPin    *gpio.Pin
	lastValue  bool
	debounce   time.Duration
	debouncing bool
	watching   int32
	c          chan port.Event
}

// openMem maps the GPIO memory range.
func openMem() (*Mem, error) {
	if err := gpio.Open(); err != nil {
		return nil, err
	}
	return &Mem{}, nil
}

// NewLine configures a single pin as input and watches it for both edges.
func (m *Mem) NewLine(pin int, terminator string, debounce time.Duration) (Line, error) {
	line := &MemLine{
		debounce: debounce,
		c:        make(chan port.Event),
	}

	line.gpioPin = gpio.NewPin(pin)
	line.gpioPin.Input()

	switch terminator {
	case "pullup":
		line.gpioPin.PullUp()
	case "pulldown":
		line.gpioPin.PullDown()
	case "none":
	default:
		return nil, ErrInvalidParam
	}

	if err := line.gpioPin.Watch(gpio.EdgeBoth, line.handler); err != nil {
		return nil, err
	}
	line.lastValue = bool(line.gpioPin.Read())
	return line, nil
}

// Close unmaps the GPIO memory.
func (m *Mem) Close() error {
	return gpio.Close()
}

// handler forwards pin changes to the line channel, optionally confirming
// the level after the bounce timeout first.
func (l *MemLine) handler(p *gpio.Pin) {
	if atomic.LoadInt32(&l.watching) == 0 {
		return
	}

	ts := time.Duration(time.Now().UnixNano())

	if l.debounce == 0 {
		l.send(bool(p.Read()), ts)
		return
	}

	if l.debouncing {
		debug.TraceLog.Println("bounce signal detected")
		return
	}
	l.debouncing = true

	go func() {
		defer func() { l.debouncing = false }()

		time.Sleep(l.debounce)

		v := bool(p.Read())
		if v == l.lastValue {
			debug.TraceLog.Println("no changed value after bounce delay")
			return
		}
		l.send(v, ts+l.debounce)
	}()
}

func (l *MemLine) send(level bool, ts time.Duration) {
	l.lastValue = level
	if level {
		l.c <- port.Event{Type: port.RisingEdge, Timestamp: ts}
	} else {
		l.c <- port.Event{Type: port.FallingEdge, Timestamp: ts}
	}
}

// Events delivers the edge events of the line.
func (l *MemLine) Events() chan port.Event {
	return l.c
}

// Watch starts edge reporting.
func (l *MemLine) Watch() error {
	atomic.StoreInt32(&l.watching, 1)
	return nil
}

// Unwatch pauses edge reporting.
func (l *MemLine) Unwatch() {
	atomic.StoreInt32(&l.watching, 0)
}

// Close removes the watch and releases the pin.
func (l *MemLine) Close() error {
	l.Unwatch()
	l.gpioPin.Unwatch()
	close(l.c)
	return nil
}
