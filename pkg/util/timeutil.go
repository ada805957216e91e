package util

import "time"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// CeilToStep rounds t up to the next multiple of step within its own location.
// Times already on the grid are returned unchanged.
func CeilToStep(t time.Time, step time.Duration) time.Time {
	if step <= 0 {
		return t
	}
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := t.Sub(midnight)
	rem := offset % step
	if rem == 0 {
		return t
	}
	return t.Add(step - rem)
}

// MinuteOfDay returns minutes elapsed since local midnight.
func MinuteOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}
