package planning

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/venue"
)

func candidate(id string, tag venue.Tag, lat, lng float64) scoredCandidate {
	return scoredCandidate{Candidate: availability.Candidate{Venue: venue.Venue{
		ID: id, Type: tag, Location: venue.Location{Latitude: lat, Longitude: lng},
	}}, score: neutralScore}
}

func TestOrderNearest(t *testing.T) {
	far := candidate("far", venue.TagBar, 40.80, -74.00)
	near := candidate("near", venue.TagCafe, 40.701, -74.00)
	mid := candidate("mid", venue.TagPark, 40.75, -74.00)

	got := orderNearest([]scoredCandidate{far, mid, near}, venue.Location{Latitude: 40.70, Longitude: -74.00})
	require.Equal(t, []string{"near", "mid", "far"}, []string{got[0].Venue.ID, got[1].Venue.ID, got[2].Venue.ID})
}

func TestAssembleSkipsEmptyCategories(t *testing.T) {
	a := newAssembler(2, 1)
	pool := map[venue.Tag][]scoredCandidate{
		venue.TagCafe: {candidate("c1", venue.TagCafe, 40.70, -74.00)},
	}
	req := baseRequest()

	plans := a.assemble(pool, []venue.Tag{venue.TagRestaurant, venue.TagCafe}, req)
	require.Len(t, plans, 2)
	for _, p := range plans {
		require.Equal(t, []venue.Tag{venue.TagCafe}, p.VenueTypes)
		require.Equal(t, p.Venues[0].DurationMinutes, p.EstimatedTotalDuration)
		require.Equal(t, "18:00-18:45", p.Venues[0].TimeSlot)
	}
	require.NotEqual(t, plans[0].PlanID, plans[1].PlanID)

	require.Nil(t, a.assemble(map[venue.Tag][]scoredCandidate{}, []venue.Tag{venue.TagCafe}, req))
}

func TestPickVenueFavorsScore(t *testing.T) {
	a := newAssembler(1, 99)
	low := candidate("low", venue.TagBar, 0, 0)
	low.score = 0
	high := candidate("high", venue.TagBar, 0, 0)
	high.score = 1

	counts := map[string]int{}
	for range 1000 {
		counts[a.pickVenue([]scoredCandidate{low, high}, map[string]struct{}{}).Venue.ID]++
	}
	require.Greater(t, counts["high"], counts["low"]*5)
}
