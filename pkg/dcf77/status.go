package dcf77

import (
	"errors"
	"fmt"
)

var (
	// ErrTooManyBits signals a framing overflow: 60 bits were collected
	// without a sync gap. The assembler restarts at slot 0.
	ErrTooManyBits = errors.New("too many bits before sync gap")
	// ErrTooFewBits signals a sync gap before the frame was complete.
	ErrTooFewBits = errors.New("too few bits before sync gap")
	// ErrDstFlags signals equal CEST/CET announcement bits; exactly one
	// of the two must be set in a valid frame.
	ErrDstFlags = errors.New("CEST and CET flags are equal")
)

// StatusKind is the outcome class of a single Poll call.
type StatusKind int

const (
	// InProgress indicates that no new symbol was available.
	InProgress StatusKind = iota
	// BitReceived indicates a data bit was stored; Status.Bit holds its value.
	BitReceived
	// FrameRestart indicates a framing error; the assembler restarted at
	// slot 0. Status.Err is ErrTooManyBits or ErrTooFewBits.
	FrameRestart
	// FrameInvalid indicates a complete frame failed verification.
	// Status.Err describes the first failed check.
	FrameInvalid
	// TimeAvailable indicates a frame was decoded and verified.
	// Status.Time holds the new time value.
	TimeAvailable
)

func (k StatusKind) String() string {
	switch k {
	case InProgress:
		return "in progress"
	case BitReceived:
		return "bit received"
	case FrameRestart:
		return "frame restart"
	case FrameInvalid:
		return "frame invalid"
	case TimeAvailable:
		return "time available"
	}
	return "invalid"
}

// Status is the result of one Poll call.
type Status struct {
	Kind StatusKind
	// Bit is the received data bit, valid when Kind is BitReceived.
	Bit BitSymbol
	// Time is the decoded time, valid when Kind is TimeAvailable.
	Time Time
	// Err describes the failure for FrameRestart and FrameInvalid.
	Err error
}

// Field identifies a decoded frame field.
type Field int

const (
	FieldMinute Field = iota
	FieldHour
	FieldDay
	FieldWeekday
	FieldMonth
	FieldYear
)

func (f Field) String() string {
	switch f {
	case FieldMinute:
		return "minute"
	case FieldHour:
		return "hour"
	case FieldDay:
		return "day of month"
	case FieldWeekday:
		return "day of week"
	case FieldMonth:
		return "month"
	case FieldYear:
		return "year"
	}
	return "invalid"
}

// RangeError reports a decoded field outside its valid range.
type RangeError struct {
	Field Field
	Value int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %d", e.Field, e.Value)
}

// ParityGroup identifies one of the three parity-protected bit ranges.
type ParityGroup int

const (
	// ParityMinute covers bits 21..28.
	ParityMinute ParityGroup = iota
	// ParityHour covers bits 29..35.
	ParityHour
	// ParityDate covers bits 36..58.
	ParityDate
)

func (g ParityGroup) String() string {
	switch g {
	case ParityMinute:
		return "minute"
	case ParityHour:
		return "hour"
	case ParityDate:
		return "date"
	}
	return "invalid"
}

// ParityError reports an odd bit sum over a parity group.
type ParityError struct {
	Group ParityGroup
}

func (e *ParityError) Error() string {
	return fmt.Sprintf("parity check failed for %s group", e.Group)
}

// MarkerError reports a fixed marker bit with the wrong value
// (bit 0 and bit 59 must be 0, bit 20 must be 1).
type MarkerError struct {
	Bit int
}

func (e *MarkerError) Error() string {
	return fmt.Sprintf("marker bit %d has wrong value", e.Bit)
}
