package availability

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/planeet/internal/domain/venue"
	"github.com/yanqian/planeet/pkg/util"
)

const minutesPerDay = 24 * 60

// TimeSlot is a bookable window at one venue, expressed in minutes of day, with a seat counter.
type TimeSlot struct {
	VenueID     string `json:"venue_id"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
	Counter     int    `json:"counter"`
}

// Hours renders the slot as "HH:MM-HH:MM".
func (s TimeSlot) Hours() string {
	return formatMinute(s.StartMinute) + "-" + formatMinute(s.EndMinute)
}

// Overlaps reports whether the slot shares any minute with [start, end).
func (s TimeSlot) Overlaps(start, end int) bool {
	return s.StartMinute < end && start < s.EndMinute
}

// OpenHours is the daily opening window in minutes of day. End may be 1440 for midnight.
type OpenHours struct {
	Start int
	End   int
}

// ParseOpenHours reads "HH:MM" bounds.
func ParseOpenHours(start, end string) (OpenHours, error) {
	s, err := parseMinute(start)
	if err != nil {
		return OpenHours{}, err
	}
	e, err := parseMinute(end)
	if err != nil {
		return OpenHours{}, err
	}
	if e <= s {
		return OpenHours{}, fmt.Errorf("open hours end %s must be after start %s", end, start)
	}
	return OpenHours{Start: s, End: e}, nil
}

// GenerateDailySlots lays consecutive slots of the given length over the open hours.
// A trailing remainder shorter than length is not bookable and is skipped.
func GenerateDailySlots(venueID string, hours OpenHours, length time.Duration, counter int) []TimeSlot {
	step := int(length / time.Minute)
	if step <= 0 {
		return nil
	}
	var slots []TimeSlot
	for start := hours.Start; start+step <= hours.End; start += step {
		slots = append(slots, TimeSlot{
			VenueID:     venueID,
			StartMinute: start,
			EndMinute:   start + step,
			Counter:     counter,
		})
	}
	return slots
}

// Window is the visit interval a plan needs at a venue.
type Window struct {
	Start time.Time
	End   time.Time
}

// Minutes returns the window as minutes of the start's day. The end is capped at midnight.
func (w Window) Minutes() (int, int) {
	start := util.MinuteOfDay(w.Start)
	end := start + int(w.End.Sub(w.Start)/time.Minute)
	if end > minutesPerDay {
		end = minutesPerDay
	}
	return start, end
}

// String renders the window in the booking service's "HH:MM-HH:MM" form.
func (w Window) String() string {
	start, end := w.Minutes()
	return formatMinute(start) + "-" + formatMinute(end)
}

// ParseWindow reads "HH:MM-HH:MM" on the calendar day of day.
func ParseWindow(day time.Time, raw string) (Window, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return Window{}, fmt.Errorf("time slot %q must look like HH:MM-HH:MM", raw)
	}
	start, err := parseMinute(parts[0])
	if err != nil {
		return Window{}, err
	}
	end, err := parseMinute(parts[1])
	if err != nil {
		return Window{}, err
	}
	if end <= start {
		return Window{}, fmt.Errorf("time slot %q ends before it starts", raw)
	}
	midnight := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return Window{
		Start: midnight.Add(time.Duration(start) * time.Minute),
		End:   midnight.Add(time.Duration(end) * time.Minute),
	}, nil
}

// WindowFunc decides which window to ask the oracle about for a venue.
type WindowFunc func(v venue.Venue, requested time.Time) Window

// FixedWindow returns a WindowFunc that checks [requested, requested+length).
func FixedWindow(length time.Duration) WindowFunc {
	return func(_ venue.Venue, requested time.Time) Window {
		return Window{Start: requested, End: requested.Add(length)}
	}
}

// Result is the oracle's answer for one venue and window.
type Result struct {
	Available         bool `json:"available"`
	RemainingCapacity int  `json:"remaining_capacity"`
	// Checked is false when the venue passed through without consulting the oracle.
	Checked bool `json:"checked"`
}

// Candidate is a venue that survived filtering.
type Candidate struct {
	Venue        venue.Venue
	Availability Result
}

// Rejection reasons.
const (
	ReasonUnavailable          = "unavailable"
	ReasonInsufficientCapacity = "insufficient_capacity"
	ReasonCheckFailed          = "check_failed"
)

// Rejection records why a venue was dropped.
type Rejection struct {
	VenueID string
	Type    venue.Tag
	Reason  string
	Err     error
}

// Outcome partitions a batch into kept and rejected venues.
type Outcome struct {
	Kept     []Candidate
	Rejected []Rejection
	// Degraded is set when the oracle was unreachable and venues were passed through unchecked.
	Degraded bool
	Reason   string
	Checked  int
}

// Failures counts rejections caused by a failed check rather than by the oracle's answer.
func (o Outcome) Failures() int {
	n := 0
	for _, r := range o.Rejected {
		if r.Reason == ReasonCheckFailed {
			n++
		}
	}
	return n
}

// KeptByType groups kept candidates by venue type, preserving input order.
func (o Outcome) KeptByType() map[venue.Tag][]Candidate {
	out := make(map[venue.Tag][]Candidate)
	for _, c := range o.Kept {
		out[c.Venue.Type] = append(out[c.Venue.Type], c)
	}
	return out
}

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

func parseMinute(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	hh, mm, ok := strings.Cut(raw, ":")
	if !ok {
		return 0, fmt.Errorf("time %q must look like HH:MM", raw)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("time %q: bad hour", raw)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("time %q: bad minute", raw)
	}
	if h < 0 || m < 0 || m > 59 || h*60+m > minutesPerDay {
		return 0, fmt.Errorf("time %q out of range", raw)
	}
	return h*60 + m, nil
}

// SlotPolicy describes how an in-process oracle lays out a venue's day.
type SlotPolicy struct {
	Hours  OpenHours
	Length time.Duration
}

// DefaultSlotPolicy is the 08:00-24:00 day on a two hour grid.
func DefaultSlotPolicy() SlotPolicy {
	return SlotPolicy{Hours: OpenHours{Start: 8 * 60, End: minutesPerDay}, Length: 2 * time.Hour}
}

// Slots generates the policy's slots for one venue.
func (p SlotPolicy) Slots(venueID string, counter int) []TimeSlot {
	return GenerateDailySlots(venueID, p.Hours, p.Length, counter)
}
