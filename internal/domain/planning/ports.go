package planning

import (
	"context"
	"time"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/venue"
)

// VenueDiscoverer finds candidate venues per requested type.
type VenueDiscoverer interface {
	Discover(ctx context.Context, types []venue.Tag, loc venue.Location, radiusKm float64) (venue.Discovery, error)
}

// AvailabilityFilter drops venues that cannot host the group.
type AvailabilityFilter interface {
	FilterWindows(ctx context.Context, venues []venue.Venue, requested time.Time, groupSize int, windowFor availability.WindowFunc) (availability.Outcome, error)
}

// PreferenceSource loads stored user preferences. found is false when the user has none.
type PreferenceSource interface {
	Preferences(ctx context.Context, userID string) (prefs Preferences, found bool, err error)
}
