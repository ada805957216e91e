package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/yanqian/planeet/internal/domain/availability"
)

// Oracle keeps time slots in process memory. It serves dev runs and tests.
type Oracle struct {
	mu     sync.RWMutex
	policy availability.SlotPolicy
	slots  map[string][]availability.TimeSlot
}

// NewOracle constructs an empty in-memory oracle.
func NewOracle(policy availability.SlotPolicy) *Oracle {
	return &Oracle{policy: policy, slots: make(map[string][]availability.TimeSlot)}
}

func (o *Oracle) Ping(context.Context) error { return nil }

func (o *Oracle) GenerateTimeSlots(_ context.Context, venueID string, defaultCounter int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.slots[venueID]; ok {
		return nil
	}
	o.slots[venueID] = o.policy.Slots(venueID, defaultCounter)
	return nil
}

func (o *Oracle) CheckOverlapping(_ context.Context, venueID string, w availability.Window) (availability.Result, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return availability.Evaluate(o.slots[venueID], w)
}

func (o *Oracle) Slots(_ context.Context, venueID string) ([]availability.TimeSlot, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	slots, ok := o.slots[venueID]
	if !ok {
		return nil, availability.ErrVenueNotFound
	}
	return slices.Clone(slots), nil
}

// Book takes seats from every slot overlapping w, or from none of them.
func (o *Oracle) Book(_ context.Context, venueID string, w availability.Window, seats int) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	slots, ok := o.slots[venueID]
	if !ok {
		return availability.ErrVenueNotFound
	}
	start, end := w.Minutes()
	var hit []int
	for i, s := range slots {
		if !s.Overlaps(start, end) {
			continue
		}
		if s.Counter < seats {
			return availability.ErrInsufficientCapacity
		}
		hit = append(hit, i)
	}
	if len(hit) == 0 {
		return availability.ErrSlotNotFound
	}
	for _, i := range hit {
		slots[i].Counter -= seats
	}
	return nil
}

var _ availability.SlotStore = (*Oracle)(nil)
