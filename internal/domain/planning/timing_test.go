package planning

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/venue"
)

func TestVisitDuration(t *testing.T) {
	require.Equal(t, 90*time.Minute, visitDuration(venue.TagRestaurant, 2, nil))
	// 90 * 1.1 = 99 rounds to 105 on the quarter hour grid.
	require.Equal(t, 105*time.Minute, visitDuration(venue.TagRestaurant, 4, nil))
	require.Equal(t, 210*time.Minute, visitDuration(venue.TagTheater, 6, nil))
	require.Equal(t, 60*time.Minute, visitDuration("bowling", 1, nil))

	hours := 1.5
	require.Equal(t, 90*time.Minute, visitDuration(venue.TagCafe, 8, &hours))
	tiny := 0.05
	require.Equal(t, 15*time.Minute, visitDuration(venue.TagCafe, 1, &tiny))
}

func TestTransitMinutesIsMonotonic(t *testing.T) {
	require.Equal(t, 0, transitMinutes(0))
	require.Equal(t, minTransit, transitMinutes(0.1))
	require.Equal(t, 26, transitMinutes(2))

	prev := 0
	for d := 0.0; d <= 30; d += 0.05 {
		got := transitMinutes(d)
		require.GreaterOrEqual(t, got, prev, "distance %.2f", d)
		prev = got
	}
}

func TestArrivalAfter(t *testing.T) {
	end := time.Date(2026, 6, 12, 19, 30, 0, 0, time.UTC)

	arrival, transit := arrivalAfter(end, 0.5)
	require.Equal(t, 6, transit)
	require.Equal(t, time.Date(2026, 6, 12, 20, 0, 0, 0, time.UTC), arrival)

	arrival, transit = arrivalAfter(end, 0)
	require.Equal(t, 0, transit)
	require.Equal(t, end.Add(15*time.Minute), arrival)
}
