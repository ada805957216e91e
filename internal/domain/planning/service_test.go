package planning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/venue"
	apperrors "github.com/yanqian/planeet/pkg/errors"
)

type fakeProvider struct {
	mu     sync.Mutex
	venues map[venue.Tag][]venue.Venue
	errs   map[venue.Tag]error
	block  bool
	calls  int
}

func (p *fakeProvider) Search(ctx context.Context, q venue.Query) ([]venue.Venue, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	if p.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err := p.errs[q.Type]; err != nil {
		return nil, err
	}
	return p.venues[q.Type], nil
}

type fakeOracle struct {
	down     bool
	capacity map[string]int
}

func (o *fakeOracle) Ping(context.Context) error {
	if o.down {
		return availability.ErrOracleUnreachable
	}
	return nil
}

func (o *fakeOracle) GenerateTimeSlots(context.Context, string, int) error { return nil }

func (o *fakeOracle) CheckOverlapping(_ context.Context, venueID string, _ availability.Window) (availability.Result, error) {
	c, ok := o.capacity[venueID]
	if !ok {
		c = 100
	}
	return availability.Result{Available: c > 0, RemainingCapacity: c}, nil
}

type stubProfiles struct {
	prefs Preferences
	found bool
	err   error
}

func (s stubProfiles) Preferences(context.Context, string) (Preferences, bool, error) {
	return s.prefs, s.found, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestService(cfg Config, provider *fakeProvider, oracle *fakeOracle, profiles PreferenceSource) Service {
	logger := discardLogger()
	discoverer := venue.NewDiscoverer(venue.Config{MaxVenuesPerType: 10, Concurrency: 4}, provider, logger)
	filter := availability.NewFilter(availability.FilterConfig{CheckTimeout: time.Second, Concurrency: 4}, oracle, nil, logger)
	if cfg.Seed == 0 {
		cfg.Seed = 42
	}
	return NewService(cfg, discoverer, filter, profiles, logger)
}

// cityVenues lays n venues of one type on a small grid around a base point.
func cityVenues(tag venue.Tag, n int, latOffset float64) []venue.Venue {
	out := make([]venue.Venue, n)
	for i := range out {
		rating := 4.0 + float64(i)/10
		out[i] = venue.Venue{
			ID:       fmt.Sprintf("%s-%d", tag, i),
			Name:     fmt.Sprintf("%s %d", tag, i),
			Location: venue.Location{Latitude: 40.70 + latOffset + float64(i)*0.002, Longitude: -74.00 + float64(i)*0.003},
			Rating:   &rating,
		}
	}
	return out
}

func baseRequest() Request {
	return Request{
		UserID:        "user-1",
		VenueTypes:    []venue.Tag{venue.TagRestaurant, venue.TagCafe, venue.TagPark},
		Location:      venue.Location{Latitude: 40.70, Longitude: -74.00},
		RadiusKm:      5,
		RequestedTime: time.Date(2026, 6, 12, 18, 0, 0, 0, time.UTC),
		GroupSize:     4,
		MaxVenues:     3,
	}
}

func standardProvider() *fakeProvider {
	return &fakeProvider{venues: map[venue.Tag][]venue.Venue{
		venue.TagRestaurant: cityVenues(venue.TagRestaurant, 3, 0),
		venue.TagCafe:       cityVenues(venue.TagCafe, 3, 0.01),
		venue.TagPark:       cityVenues(venue.TagPark, 3, 0.02),
	}}
}

func requirePlanInvariants(t *testing.T, resp Response, groupSize int) {
	t.Helper()
	require.Equal(t, len(resp.Plans), resp.TotalPlansGenerated)
	for _, plan := range resp.Plans {
		seen := map[venue.Tag]struct{}{}
		for i, slot := range plan.Venues {
			_, dup := seen[slot.VenueType]
			require.False(t, dup, "category %s repeated in plan %s", slot.VenueType, plan.PlanID)
			seen[slot.VenueType] = struct{}{}

			require.GreaterOrEqual(t, slot.TravelTimeFromPrevious, 0)
			require.True(t, slot.EndTime.After(slot.StartTime))
			require.Equal(t, slot.StartTime.Add(time.Duration(slot.DurationMinutes)*time.Minute), slot.EndTime)
			if i == 0 {
				require.Equal(t, 0, slot.TravelTimeFromPrevious)
				continue
			}
			prev := plan.Venues[i-1]
			require.Equal(t, prev.EndTime.Add(time.Duration(slot.TravelTimeFromPrevious)*time.Minute), slot.StartTime)
			require.GreaterOrEqual(t, slot.TravelTimeFromPrevious, slot.TransitMinutes)
			if slot.AvailabilityChecked {
				require.GreaterOrEqual(t, slot.RemainingCapacity, groupSize)
			}
		}
		require.Len(t, plan.VenueTypes, len(plan.Venues))
	}
}

func TestCreatePlanAllCategoriesAvailable(t *testing.T) {
	svc := newTestService(Config{PlansPerRequest: 3}, standardProvider(), &fakeOracle{}, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Equal(t, 3, resp.TotalPlansGenerated)
	require.Equal(t, 9, resp.TotalVenuesFound)
	require.Equal(t, 9, resp.TotalVenuesAvailable)
	require.False(t, resp.Degraded)
	require.Empty(t, resp.Warnings)
	require.NotEmpty(t, resp.PlanID)
	for _, plan := range resp.Plans {
		require.Len(t, plan.Venues, 3)
		require.ElementsMatch(t, []venue.Tag{venue.TagRestaurant, venue.TagCafe, venue.TagPark}, plan.VenueTypes)
		require.Equal(t, baseRequest().RequestedTime, plan.StartTime)
	}
	requirePlanInvariants(t, resp, 4)
}

func TestCreatePlanSiblingsUseDifferentVenues(t *testing.T) {
	svc := newTestService(Config{PlansPerRequest: 3}, standardProvider(), &fakeOracle{}, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	used := map[string]int{}
	for _, plan := range resp.Plans {
		for _, slot := range plan.Venues {
			used[slot.VenueID]++
		}
	}
	require.Len(t, used, 9)
}

func TestCreatePlanSingleCandidateRepeatsAcrossSiblings(t *testing.T) {
	provider := standardProvider()
	provider.venues[venue.TagPark] = cityVenues(venue.TagPark, 1, 0.02)
	svc := newTestService(Config{PlansPerRequest: 3}, provider, &fakeOracle{}, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	for _, plan := range resp.Plans {
		var park string
		for _, slot := range plan.Venues {
			if slot.VenueType == venue.TagPark {
				park = slot.VenueID
			}
		}
		require.Equal(t, "park-0", park)
	}
}

func TestCreatePlanDropsCategoryWithoutCapacity(t *testing.T) {
	provider := standardProvider()
	provider.venues[venue.TagPark] = cityVenues(venue.TagPark, 1, 0.02)
	oracle := &fakeOracle{capacity: map[string]int{"park-0": 2}}
	svc := newTestService(Config{PlansPerRequest: 3}, provider, oracle, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	require.Equal(t, 3, resp.TotalPlansGenerated)
	for _, plan := range resp.Plans {
		require.Len(t, plan.Venues, 2)
		require.NotContains(t, plan.VenueTypes, venue.TagPark)
	}
	require.Len(t, resp.Warnings, 1)
	require.Equal(t, WarningNoAvailableVenues, resp.Warnings[0].Code)
	require.Equal(t, []venue.Tag{venue.TagPark}, resp.Warnings[0].VenueTypes)
	require.Equal(t, 1, resp.Stats.VenuesRejected)
	requirePlanInvariants(t, resp, 4)
}

func TestCreatePlanDiscoveryDegraded(t *testing.T) {
	provider := standardProvider()
	provider.errs = map[venue.Tag]error{venue.TagCafe: context.DeadlineExceeded}
	svc := newTestService(Config{PlansPerRequest: 3}, provider, &fakeOracle{}, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	codes := warningCodes(resp)
	require.Contains(t, codes, WarningDiscoveryDegraded)
	for _, w := range resp.Warnings {
		if w.Code == WarningDiscoveryDegraded {
			require.Equal(t, []venue.Tag{venue.TagCafe}, w.VenueTypes)
		}
	}
	for _, plan := range resp.Plans {
		require.ElementsMatch(t, []venue.Tag{venue.TagRestaurant, venue.TagPark}, plan.VenueTypes)
	}
	requirePlanInvariants(t, resp, 4)
}

func TestCreatePlanRejectsTooManyVenuesWithoutIO(t *testing.T) {
	provider := standardProvider()
	svc := newTestService(Config{}, provider, &fakeOracle{}, nil)
	req := baseRequest()
	req.MaxVenues = 4

	_, err := svc.CreatePlan(context.Background(), req)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, CodeInvalidInput))
	require.Equal(t, 0, provider.calls)
}

func TestCreatePlanOracleDownFailsOpen(t *testing.T) {
	oracle := &fakeOracle{down: true, capacity: map[string]int{"park-0": 0}}
	svc := newTestService(Config{PlansPerRequest: 3}, standardProvider(), oracle, nil)

	resp, err := svc.CreatePlan(context.Background(), baseRequest())
	require.NoError(t, err)
	require.True(t, resp.Degraded)
	require.Contains(t, warningCodes(resp), WarningAvailabilityDegraded)
	require.Equal(t, resp.TotalVenuesFound, resp.TotalVenuesAvailable)
	require.Equal(t, 3, resp.TotalPlansGenerated)
	for _, plan := range resp.Plans {
		require.Len(t, plan.Venues, 3)
		for _, slot := range plan.Venues {
			require.False(t, slot.AvailabilityChecked)
		}
	}
	requirePlanInvariants(t, resp, 4)
}

func TestCreatePlanMaxVenuesSubset(t *testing.T) {
	svc := newTestService(Config{PlansPerRequest: 3}, standardProvider(), &fakeOracle{}, nil)
	req := baseRequest()
	req.MaxVenues = 2

	resp, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	subsets := map[string]struct{}{}
	for _, plan := range resp.Plans {
		require.Len(t, plan.Venues, 2)
		subsets[subsetKey(plan.VenueTypes)] = struct{}{}
	}
	require.Greater(t, len(subsets), 1)
	requirePlanInvariants(t, resp, 4)
}

func TestCreatePlanIsReproducibleForSeed(t *testing.T) {
	run := func() []string {
		svc := newTestService(Config{PlansPerRequest: 3, Seed: 7}, standardProvider(), &fakeOracle{}, nil)
		req := baseRequest()
		req.MaxVenues = 2
		resp, err := svc.CreatePlan(context.Background(), req)
		require.NoError(t, err)
		var ids []string
		for _, plan := range resp.Plans {
			for _, slot := range plan.Venues {
				ids = append(ids, slot.VenueID)
			}
		}
		return ids
	}
	require.Equal(t, run(), run())
}

func TestCreatePlanNothingAvailable(t *testing.T) {
	oracle := &fakeOracle{capacity: map[string]int{}}
	provider := standardProvider()
	for _, vs := range provider.venues {
		for _, v := range vs {
			oracle.capacity[v.ID] = 0
		}
	}
	svc := newTestService(Config{}, provider, oracle, nil)

	_, err := svc.CreatePlan(context.Background(), baseRequest())
	require.True(t, apperrors.IsCode(err, CodeNoAvailableVenues))
}

func TestCreatePlanTimeout(t *testing.T) {
	provider := &fakeProvider{block: true}
	svc := newTestService(Config{PlanTimeout: 20 * time.Millisecond}, provider, &fakeOracle{}, nil)

	_, err := svc.CreatePlan(context.Background(), baseRequest())
	require.True(t, apperrors.IsCode(err, CodePlanTimeout))
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCreatePlanCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := newTestService(Config{}, standardProvider(), &fakeOracle{}, nil)

	_, err := svc.CreatePlan(ctx, baseRequest())
	require.True(t, apperrors.IsCode(err, CodeRequestCanceled))
}

func TestCreatePlanMinRatingFilter(t *testing.T) {
	svc := newTestService(Config{PlansPerRequest: 1}, standardProvider(), &fakeOracle{}, nil)
	req := baseRequest()
	minRating := 4.15
	req.MinRating = &minRating

	resp, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 6, resp.Stats.VenuesBelowRating)
	require.Equal(t, 3, resp.TotalVenuesAvailable)
	for _, slot := range resp.Plans[0].Venues {
		require.GreaterOrEqual(t, *slot.Rating, minRating)
	}
}

func TestCreatePlanPersonalizationUnavailable(t *testing.T) {
	profiles := stubProfiles{err: errors.New("profile service down")}
	svc := newTestService(Config{PlansPerRequest: 1}, standardProvider(), &fakeOracle{}, profiles)
	req := baseRequest()
	req.UsePersonalization = true

	resp, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	require.Contains(t, warningCodes(resp), WarningPersonalizationUnavailable)
	require.False(t, resp.Degraded)
	require.Len(t, resp.Plans, 1)
}

func TestCreatePlanScoresWithStoredPreferences(t *testing.T) {
	profiles := stubProfiles{found: true, prefs: Preferences{PreferredVenueTypes: []venue.Tag{venue.TagCafe}}}
	svc := newTestService(Config{PlansPerRequest: 1}, standardProvider(), &fakeOracle{}, profiles)
	req := baseRequest()
	req.UsePersonalization = true

	resp, err := svc.CreatePlan(context.Background(), req)
	require.NoError(t, err)
	for _, slot := range resp.Plans[0].Venues {
		if slot.VenueType == venue.TagCafe {
			require.Equal(t, 1.0, slot.PersonalizationScore)
		} else {
			require.Equal(t, 0.0, slot.PersonalizationScore)
		}
	}
}

func warningCodes(resp Response) []string {
	codes := make([]string, 0, len(resp.Warnings))
	for _, w := range resp.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}
