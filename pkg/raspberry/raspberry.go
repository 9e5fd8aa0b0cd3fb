// Package raspberry is the watcher for the gpio pin of the DCF77 receiver
// module. It supports two drivers: the character device interface
// (/dev/gpiochip0) and the memory mapped interface (/dev/gpiomem).
package raspberry

import (
	"fmt"
	"time"

	"dcfclock/pkg/port"
)

var ErrInvalidParam = fmt.Errorf("invalid parameters")

// Line is a single watched input pin.
type Line interface {
	// Events delivers the edge events of the pin.
	Events() chan port.Event
	// Watch starts edge reporting.
	Watch() error
	// Unwatch pauses edge reporting. An edge occurring while unwatched
	// is dropped.
	Unwatch()
	// Close releases the line. It must not be called from the context
	// of the event channel consumer while events are pending.
	Close() error
}

// GPIO is the access to a gpio driver.
type GPIO interface {
	// NewLine requests control of a single input pin. The pin number is
	// the BCM gpio number, terminator is one of "pullup", "pulldown" or
	// "none". A debounce time of 0 disables debouncing.
	NewLine(gpio int, terminator string, debounce time.Duration) (Line, error)
	// Close releases the driver. Requested lines must be closed
	// independently.
	Close() error
}

// Open initializes the gpio driver selected by name, "chardev" (default)
// or "memmap".
func Open(driver string) (GPIO, error) {
	switch driver {
	case "", "chardev":
		return openChip()
	case "memmap":
		return openMem()
	}
	return nil, ErrInvalidParam
}
