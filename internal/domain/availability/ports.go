package availability

import (
	"context"
	"errors"
)

var (
	// ErrOracleUnreachable marks transport-level failures talking to the oracle.
	ErrOracleUnreachable = errors.New("availability oracle unreachable")
	// ErrVenueNotFound is returned when the oracle has no slots for a venue.
	ErrVenueNotFound = errors.New("venue has no time slots")
	// ErrSlotNotFound is returned when no slot covers the requested window.
	ErrSlotNotFound = errors.New("no time slot for window")
	// ErrInsufficientCapacity is returned by Book when a slot cannot seat the party.
	ErrInsufficientCapacity = errors.New("insufficient capacity")
)

// Oracle is the system of record for venue capacity.
type Oracle interface {
	Ping(ctx context.Context) error
	// GenerateTimeSlots creates the venue's slots. Calling it again for the same venue is a no-op.
	GenerateTimeSlots(ctx context.Context, venueID string, defaultCounter int) error
	CheckOverlapping(ctx context.Context, venueID string, w Window) (Result, error)
}

// SlotStore is an oracle that also exposes its slots, used by operators and tests.
type SlotStore interface {
	Oracle
	Slots(ctx context.Context, venueID string) ([]TimeSlot, error)
	Book(ctx context.Context, venueID string, w Window, seats int) error
}

// SlotLedger remembers which venues already had their slots generated.
type SlotLedger interface {
	Generated(ctx context.Context, venueID string) (bool, error)
	MarkGenerated(ctx context.Context, venueID string) error
}
