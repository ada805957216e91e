package planning

import (
	"math"
	"time"

	"github.com/yanqian/planeet/internal/domain/venue"
	"github.com/yanqian/planeet/pkg/util"
)

const (
	transitionBuffer = 15 * time.Minute
	walkingSpeedKmh  = 4.5
	drivingSpeedKmh  = 30.0
	walkingLimitKm   = 2.0
	minTransit       = 5
	defaultVisit     = 60
)

var visitMinutes = map[venue.Tag]int{
	venue.TagRestaurant:     90,
	venue.TagBar:            75,
	venue.TagCafe:           45,
	venue.TagMuseum:         120,
	venue.TagTheater:        180,
	venue.TagPark:           60,
	venue.TagShoppingCenter: 90,
	venue.TagSportsFacility: 120,
	venue.TagSpa:            90,
	venue.TagOther:          defaultVisit,
}

// groupFactor stretches visits for bigger parties.
func groupFactor(groupSize int) float64 {
	switch {
	case groupSize > 4:
		return 1.2
	case groupSize > 2:
		return 1.1
	default:
		return 1.0
	}
}

// visitDuration is the time spent at one venue, on the 15 minute grid and never shorter than one step.
func visitDuration(tag venue.Tag, groupSize int, durationHours *float64) time.Duration {
	var minutes float64
	if durationHours != nil {
		minutes = *durationHours * 60
	} else {
		base, ok := visitMinutes[tag]
		if !ok {
			base = defaultVisit
		}
		minutes = math.Floor(float64(base) * groupFactor(groupSize))
	}
	step := float64(startGrid / time.Minute)
	rounded := math.Round(minutes/step) * step
	if rounded < step {
		rounded = step
	}
	return time.Duration(rounded) * time.Minute
}

// transitMinutes estimates door to door travel. The first two kilometres are walked and
// anything beyond is covered at city driving speed, so the estimate never shrinks as
// distance grows.
func transitMinutes(distanceKm float64) int {
	if distanceKm <= 0 {
		return 0
	}
	walked := math.Min(distanceKm, walkingLimitKm)
	driven := math.Max(distanceKm-walkingLimitKm, 0)
	minutes := int(walked/walkingSpeedKmh*60 + driven/drivingSpeedKmh*60)
	if minutes < minTransit {
		return minTransit
	}
	return minutes
}

// arrivalAfter returns when the party can start at the next venue: transit plus the
// transition buffer, rounded up to the 15 minute grid.
func arrivalAfter(prevEnd time.Time, distanceKm float64) (time.Time, int) {
	transit := transitMinutes(distanceKm)
	raw := prevEnd.Add(time.Duration(transit)*time.Minute + transitionBuffer)
	return util.CeilToStep(raw, startGrid), transit
}
