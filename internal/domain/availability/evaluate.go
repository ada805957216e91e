package availability

// Evaluate answers an overlap query from a venue's full slot list.
// The remaining capacity is the tightest counter among the overlapping slots.
func Evaluate(slots []TimeSlot, w Window) (Result, error) {
	if len(slots) == 0 {
		return Result{}, ErrVenueNotFound
	}
	start, end := w.Minutes()
	capacity := -1
	for _, s := range slots {
		if !s.Overlaps(start, end) {
			continue
		}
		if capacity < 0 || s.Counter < capacity {
			capacity = s.Counter
		}
	}
	if capacity < 0 {
		return Result{Checked: true}, nil
	}
	return Result{Available: capacity > 0, RemainingCapacity: capacity, Checked: true}, nil
}

// Overlapping returns the slots sharing time with w.
func Overlapping(slots []TimeSlot, w Window) []TimeSlot {
	start, end := w.Minutes()
	var out []TimeSlot
	for _, s := range slots {
		if s.Overlaps(start, end) {
			out = append(out, s)
		}
	}
	return out
}
