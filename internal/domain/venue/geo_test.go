package venue

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	nyc := Location{Latitude: 40.7128, Longitude: -74.0060}
	require.Equal(t, 0.0, DistanceKm(nyc, nyc))

	// Times Square is roughly 5.4 km north of lower Manhattan.
	timesSquare := Location{Latitude: 40.7580, Longitude: -73.9855}
	d := DistanceKm(nyc, timesSquare)
	require.InDelta(t, 5.4, d, 0.2)
	require.Equal(t, d, DistanceKm(timesSquare, nyc))
}

func TestNormalizeTag(t *testing.T) {
	require.Equal(t, TagShoppingCenter, NormalizeTag(" Shopping Center "))
	require.Equal(t, TagSportsFacility, NormalizeTag("sports-facility"))
	require.Equal(t, Tag(""), NormalizeTag("   "))
}
