// Package port holds the definition of a physical receiver port
package port

import "time"

// EventType indicates the type of change to the line active state.
//
// Note that for active low lines a low line level results in a high active
// state.
type EventType int

const (
	_ EventType = iota
	// RisingEdge indicates an inactive to active event (low to high).
	RisingEdge
	// FallingEdge indicates an active to inactive event (high to low).
	FallingEdge
)

// Event represents a single electrical transition of the receiver pin.
type Event struct {
	// Timestamp indicates the time the event was detected.
	Timestamp time.Duration
	// The type of state change event this structure represents.
	Type EventType
}
