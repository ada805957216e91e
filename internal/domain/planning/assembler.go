package planning

import (
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/venue"
)

// subsetDraws bounds how many random category subsets are tried before accepting a repeat.
const subsetDraws = 8

type scoredCandidate struct {
	availability.Candidate
	score float64
}

// assembler turns the available pool into sibling plans. It is not safe for concurrent use.
type assembler struct {
	plans int
	rng   *rand.Rand
	newID func() string
}

func newAssembler(plans int, seed uint64) *assembler {
	if plans <= 0 {
		plans = 3
	}
	return &assembler{
		plans: plans,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		newID: uuid.NewString,
	}
}

// assemble builds up to a.plans plans. categories lists the requested tags in request
// order; tags without candidates in pool are skipped. It returns nil when nothing is plannable.
func (a *assembler) assemble(pool map[venue.Tag][]scoredCandidate, categories []venue.Tag, req Request) []Plan {
	var available []venue.Tag
	for _, tag := range categories {
		if len(pool[tag]) > 0 {
			available = append(available, tag)
		}
	}
	if len(available) == 0 {
		return nil
	}
	k := min(req.MaxVenues, len(available))

	usedSubsets := make(map[string]struct{})
	usedVenues := make(map[string]struct{})
	plans := make([]Plan, 0, a.plans)
	for range a.plans {
		subset := a.pickCategories(available, k, usedSubsets)
		picks := make([]scoredCandidate, 0, len(subset))
		for _, tag := range subset {
			pick := a.pickVenue(pool[tag], usedVenues)
			usedVenues[pick.Venue.ID] = struct{}{}
			picks = append(picks, pick)
		}
		plans = append(plans, a.schedule(orderNearest(picks, req.Location), req))
	}
	return plans
}

// pickCategories returns k tags in request order, preferring a combination no earlier sibling used.
func (a *assembler) pickCategories(available []venue.Tag, k int, used map[string]struct{}) []venue.Tag {
	if k >= len(available) {
		return available
	}
	var subset []venue.Tag
	for range subsetDraws {
		perm := a.rng.Perm(len(available))[:k]
		slices.Sort(perm)
		subset = subset[:0]
		for _, idx := range perm {
			subset = append(subset, available[idx])
		}
		if _, seen := used[subsetKey(subset)]; !seen {
			break
		}
	}
	used[subsetKey(subset)] = struct{}{}
	return slices.Clone(subset)
}

// pickVenue draws a candidate weighted by personalization score, skipping venues already
// placed in an earlier sibling while any fresh one remains.
func (a *assembler) pickVenue(candidates []scoredCandidate, used map[string]struct{}) scoredCandidate {
	fresh := make([]scoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if _, taken := used[c.Venue.ID]; !taken {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		fresh = candidates
	}

	var total float64
	for _, c := range fresh {
		total += 0.1 + c.score
	}
	r := a.rng.Float64() * total
	for _, c := range fresh {
		r -= 0.1 + c.score
		if r < 0 {
			return c
		}
	}
	return fresh[len(fresh)-1]
}

// orderNearest sequences picks greedily: start at the venue closest to origin, then always
// hop to the closest remaining one.
func orderNearest(picks []scoredCandidate, origin venue.Location) []scoredCandidate {
	remaining := slices.Clone(picks)
	ordered := make([]scoredCandidate, 0, len(picks))
	current := origin
	for len(remaining) > 0 {
		best, bestDist := 0, math.Inf(1)
		for i, c := range remaining {
			if d := venue.DistanceKm(current, c.Venue.Location); d < bestDist {
				best, bestDist = i, d
			}
		}
		next := remaining[best]
		ordered = append(ordered, next)
		current = next.Venue.Location
		remaining = slices.Delete(remaining, best, best+1)
	}
	return ordered
}

func (a *assembler) schedule(stops []scoredCandidate, req Request) Plan {
	plan := Plan{PlanID: a.newID(), Venues: make([]CandidateVenueSlot, 0, len(stops))}

	var (
		prevEnd  time.Time
		prevLoc  venue.Location
		scoreSum float64
	)
	for i, stop := range stops {
		slot := CandidateVenueSlot{
			VenueID:              stop.Venue.ID,
			Name:                 stop.Venue.Name,
			VenueType:            stop.Venue.Type,
			Location:             stop.Venue.Location,
			Rating:               stop.Venue.Rating,
			PriceRange:           stop.Venue.PriceRange,
			Amenities:            stop.Venue.Amenities,
			Website:              stop.Venue.Website,
			RemainingCapacity:    stop.Availability.RemainingCapacity,
			AvailabilityChecked:  stop.Availability.Checked,
			PersonalizationScore: roundScore(stop.score),
		}
		if i == 0 {
			slot.StartTime = req.RequestedTime
		} else {
			distance := venue.DistanceKm(prevLoc, stop.Venue.Location)
			arrival, transit := arrivalAfter(prevEnd, distance)
			slot.TravelDistanceKm = distance
			slot.TransitMinutes = transit
			slot.TravelTimeFromPrevious = int(arrival.Sub(prevEnd) / time.Minute)
			slot.StartTime = prevEnd.Add(time.Duration(slot.TravelTimeFromPrevious) * time.Minute)
			plan.TotalDistanceKm += distance
		}
		duration := visitDuration(stop.Venue.Type, req.GroupSize, req.DurationHours)
		slot.EndTime = slot.StartTime.Add(duration)
		slot.DurationMinutes = int(duration / time.Minute)
		slot.TimeSlot = availability.Window{Start: slot.StartTime, End: slot.EndTime}.String()

		plan.Venues = append(plan.Venues, slot)
		plan.VenueTypes = append(plan.VenueTypes, stop.Venue.Type)
		scoreSum += stop.score
		prevEnd, prevLoc = slot.EndTime, stop.Venue.Location
	}

	if len(plan.Venues) > 0 {
		plan.StartTime = plan.Venues[0].StartTime
		plan.EndTime = prevEnd
		plan.EstimatedTotalDuration = int(plan.EndTime.Sub(plan.StartTime) / time.Minute)
		plan.PersonalizationScore = roundScore(scoreSum / float64(len(plan.Venues)))
	}
	plan.TotalDistanceKm = math.Round(plan.TotalDistanceKm*100) / 100
	return plan
}

func subsetKey(tags []venue.Tag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, "|")
}

func roundScore(v float64) float64 {
	return math.Round(v*1000) / 1000
}
