// Package dcf77 is a software decoder for the DCF77 longwave time signal.
// https://en.wikipedia.org/wiki/DCF77
//
// The transmitter reduces its carrier once per second; the reduction lasts
// about 100 ms for a 0 bit and about 200 ms for a 1 bit. The 59th second
// mark of every minute is omitted, leaving a ~2 s gap that delimits the
// 60-bit frame. The edge handler classifies the receiver pin transitions
// into bit symbols and Poll assembles and verifies them into a Time.
package dcf77

import (
	"sync/atomic"
	"time"

	"dcfclock/pkg/port"
)

// Classification bands of the edge handler. The thresholds are empirical
// midpoints between the nominal 100/200 ms pulse widths and the 1/2 s
// second cadences; the margins absorb receiver jitter.
const (
	// pulseMin is the minimum width of a valid second mark.
	pulseMin = 50 * time.Millisecond
	// pulseLong separates short (0) from long (1) second marks.
	pulseLong = 175 * time.Millisecond
	// secondMin..secondMax is the accepted distance between consecutive
	// start edges within a minute.
	secondMin = 950 * time.Millisecond
	secondMax = 1050 * time.Millisecond
	// syncMin..syncMax is the start edge distance across the sync gap.
	syncMin = 1950 * time.Millisecond
	syncMax = 2050 * time.Millisecond
)

// Config holds the receiver configuration.
type Config struct {
	// StartEdge is the transition that begins a second mark. Receiver
	// modules with inverted output start a bit on the falling edge.
	StartEdge port.EventType
}

// Decoder decodes receiver pin edges into verified time values.
//
// The edge handler runs asynchronously to Poll. The only state shared
// between the two contexts is the single-slot bit channel and the
// reception flag, both accessed atomically; everything else is owned by
// exactly one side.
type Decoder struct {
	startEdge port.EventType

	// slot is the bit channel between the edge handler and Poll. It
	// holds the latest unconsumed symbol, None when empty. The producer
	// overwrites, the consumer swaps in None: last write wins, a symbol
	// not polled before the next one arrives is dropped. This keeps the
	// handler latency bounded and is intentional, not a defect.
	slot int32
	// enabled gates the edge handler while reception is paused.
	enabled int32
	// lastBit holds the most recently consumed symbol, see LastBit.
	lastBit int32

	// edge handler state
	startEdgeTs time.Duration
	rxFlag      bool

	// polling state
	idx  int
	bits Frame

	// rx is the channel delivering the line events.
	rx chan port.Event
	// quit stops the event loop, done signals that it stopped.
	quit chan struct{}
	done chan struct{}
}

// New initials a new Decoder. Reception is enabled; call Connect to
// attach the decoder to a line event channel.
func New(cfg Config) *Decoder {
	d := &Decoder{
		startEdge: cfg.StartEdge,
		enabled:   1,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	return d
}

// Connect starts consuming line events from c.
func (d *Decoder) Connect(c chan port.Event) {
	d.rx = c
	go d.run()
}

// Close stops the event loop. The line feeding the event channel must be
// closed independently.
func (d *Decoder) Close() error {
	if d.rx == nil {
		return nil
	}

	d.quit <- struct{}{}
	<-d.done
	return nil
}

// run receives line events and hands them to the edge handler.
func (d *Decoder) run() {
	for {
		select {
		case <-d.quit:
			d.done <- struct{}{}
			return
		case evt, open := <-d.rx:
			if !open {
				<-d.quit
				d.done <- struct{}{}
				return
			}
			d.handleEdge(evt)
		}
	}
}

// handleEdge classifies one pin transition. It is the hot path: bounded
// work, no allocation, no blocking.
//
// A start edge is timed against the previous start edge: ~1 s apart is the
// regular cadence, ~2 s apart is the sync gap. A secondary edge closes the
// current second mark; its distance to the start edge is the pulse width
// and yields the bit value. Anything outside the bands is dropped.
func (d *Decoder) handleEdge(evt port.Event) {
	if atomic.LoadInt32(&d.enabled) == 0 {
		return
	}

	delta := evt.Timestamp - d.startEdgeTs

	if evt.Type == d.startEdge {
		switch {
		case delta > syncMax:
			// implausible, but the timestamp is taken over anyway so
			// the next regular edge re-synchronizes instead of
			// stalling forever
		case delta > syncMin:
			// no second mark for ~2 s, the minute is over
			d.emit(Sync)
		case delta > secondMax:
			// missed edge or noise
			return
		case delta > secondMin:
			// the expected 1 s cadence, the bit value follows with
			// the secondary edge
		default:
			// spurious edge
			return
		}
		d.startEdgeTs = evt.Timestamp
		d.rxFlag = false
		return
	}

	switch {
	case d.rxFlag:
		// the second already carries a symbol, reject bounce pulses
	case delta > pulseLong:
		d.emit(One)
		d.rxFlag = true
	case delta > pulseMin:
		d.emit(Zero)
		d.rxFlag = true
	}
}

// emit places b in the bit channel, overwriting an unconsumed symbol.
func (d *Decoder) emit(b BitSymbol) {
	atomic.StoreInt32(&d.slot, int32(b))
}

// Poll drives the frame assembler and must be called in a fast loop. It
// never blocks; with no new symbol available it returns immediately with
// InProgress.
//
// There is no persistent error state: every framing or verification error
// restarts collection at slot 0, so the decoder recovers from arbitrarily
// long outages once the signal returns.
func (d *Decoder) Poll() Status {
	// a full frame without sync gap is a framing overflow; checked
	// before consuming the slot so a pending symbol survives the reset
	if d.idx >= FrameBits {
		d.idx = 0
		return Status{Kind: FrameRestart, Err: ErrTooManyBits}
	}

	switch b := BitSymbol(atomic.SwapInt32(&d.slot, int32(None))); b {
	case None:
		return Status{Kind: InProgress}

	case Sync:
		atomic.StoreInt32(&d.lastBit, int32(Sync))

		if d.idx == FrameBits-1 {
			// the sync gap carries no pulse, which reads as a zero
			// bit in slot 59
			d.bits[d.idx] = Zero
			d.idx = 0

			t, err := verify(&d.bits)
			if err != nil {
				return Status{Kind: FrameInvalid, Err: err}
			}
			return Status{Kind: TimeAvailable, Time: t}
		}

		d.idx = 0
		return Status{Kind: FrameRestart, Err: ErrTooFewBits}

	default:
		d.bits[d.idx] = b
		d.idx++
		atomic.StoreInt32(&d.lastBit, int32(b))
		return Status{Kind: BitReceived, Bit: b}
	}
}

// PauseReception disables the edge handler, e.g. while the line is
// reconfigured. An edge arriving during the pause is lost, never
// corrupted.
func (d *Decoder) PauseReception() {
	atomic.StoreInt32(&d.enabled, 0)
}

// ResumeReception re-enables the edge handler. The assembler is not
// reset; the oversized start edge delta after a pause re-synchronizes it.
func (d *Decoder) ResumeReception() {
	atomic.StoreInt32(&d.enabled, 1)
}

// LastBit returns the most recently consumed symbol. It carries no
// decoding state and may be reset from outside, e.g. to drive a blinking
// reception indicator.
func (d *Decoder) LastBit() BitSymbol {
	return BitSymbol(atomic.LoadInt32(&d.lastBit))
}

// ResetLastBit clears the last bit observable to None.
func (d *Decoder) ResetLastBit() {
	atomic.StoreInt32(&d.lastBit, int32(None))
}
