package planning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/planeet/internal/domain/availability"
	"github.com/yanqian/planeet/internal/domain/venue"
	apperrors "github.com/yanqian/planeet/pkg/errors"
	"github.com/yanqian/planeet/pkg/metrics"
	"github.com/yanqian/planeet/pkg/util"
)

// Service exposes plan generation.
type Service interface {
	CreatePlan(ctx context.Context, req Request) (Response, error)
}

type service struct {
	cfg        Config
	discoverer VenueDiscoverer
	filter     AvailabilityFilter
	profiles   PreferenceSource
	logger     *slog.Logger
	calls      atomic.Uint64
	now        func() time.Time
}

// NewService wires up the planning pipeline. profiles may be nil.
func NewService(cfg Config, discoverer VenueDiscoverer, filter AvailabilityFilter, profiles PreferenceSource, logger *slog.Logger) Service {
	if cfg.PlansPerRequest <= 0 {
		cfg.PlansPerRequest = 3
	}
	if cfg.PlanTimeout <= 0 {
		cfg.PlanTimeout = 60 * time.Second
	}
	return &service{
		cfg:        cfg,
		discoverer: discoverer,
		filter:     filter,
		profiles:   profiles,
		logger:     logger.With("component", "planning.service"),
		now:        util.NowUTC,
	}
}

func (s *service) CreatePlan(ctx context.Context, req Request) (Response, error) {
	started := time.Now()
	req, err := normalizeRequest(req)
	if err != nil {
		return Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PlanTimeout)
	defer cancel()

	var (
		warnings []Warning
		stats    metrics.PipelineStats
		degraded bool
	)

	stored, err := s.loadPreferences(ctx, req)
	if err != nil {
		if stageErr := stageError(ctx); stageErr != nil {
			return Response{}, stageErr
		}
		s.logger.Warn("preferences unavailable", "user_id", req.UserID, "error", err)
		warnings = append(warnings, Warning{
			Code:    WarningPersonalizationUnavailable,
			Message: "user preferences could not be loaded; ranking uses request filters only",
		})
	}
	prefs := mergePreferences(stored, req)

	discoveryStart := time.Now()
	found, err := s.discoverer.Discover(ctx, req.VenueTypes, req.Location, req.RadiusKm)
	stats.DiscoveryMillis = time.Since(discoveryStart).Milliseconds()
	if err != nil {
		return Response{}, failStage(ctx, "venue discovery failed", err)
	}
	if stageErr := stageError(ctx); stageErr != nil {
		return Response{}, stageErr
	}
	stats.VenuesDiscovered = found.Total()
	stats.DuplicatesSkipped = found.Duplicates
	if found.Degraded() {
		degraded = true
		warnings = append(warnings, Warning{
			Code:       WarningDiscoveryDegraded,
			Message:    "some venue types returned no candidates",
			VenueTypes: found.Shortfall(),
		})
	}

	pool := make([]venue.Venue, 0, found.Total())
	for _, tag := range req.VenueTypes {
		for _, v := range found.ByType[tag] {
			if belowRating(v, req.MinRating) {
				stats.VenuesBelowRating++
				continue
			}
			pool = append(pool, v)
		}
	}

	availabilityStart := time.Now()
	outcome, err := s.filter.FilterWindows(ctx, pool, req.RequestedTime, req.GroupSize, visitWindow(req))
	stats.AvailabilityMillis = time.Since(availabilityStart).Milliseconds()
	if err != nil {
		return Response{}, failStage(ctx, "availability filtering failed", err)
	}
	if stageErr := stageError(ctx); stageErr != nil {
		return Response{}, stageErr
	}
	stats.VenuesChecked = outcome.Checked
	stats.VenuesAvailable = len(outcome.Kept)
	stats.VenuesRejected = len(outcome.Rejected)
	stats.CheckFailures = outcome.Failures()
	if outcome.Degraded {
		degraded = true
		warnings = append(warnings, Warning{
			Code:    WarningAvailabilityDegraded,
			Message: "availability could not be verified; venues are shown unchecked: " + outcome.Reason,
		})
	}

	scored := make(map[venue.Tag][]scoredCandidate)
	for tag, candidates := range outcome.KeptByType() {
		for _, c := range candidates {
			scored[tag] = append(scored[tag], scoredCandidate{Candidate: c, score: scoreVenue(c.Venue, prefs)})
		}
	}

	var missing []venue.Tag
	for _, tag := range req.VenueTypes {
		if len(scored[tag]) == 0 {
			missing = append(missing, tag)
		}
	}
	if len(missing) == len(req.VenueTypes) {
		return Response{}, apperrors.Wrap(CodeNoAvailableVenues, "no requested venue type has an available venue", nil)
	}
	if len(missing) > 0 {
		warnings = append(warnings, Warning{
			Code:       WarningNoAvailableVenues,
			Message:    fmt.Sprintf("%d venue type(s) had no available venue and were left out of the plans", len(missing)),
			VenueTypes: missing,
		})
	}

	plans := newAssembler(s.cfg.PlansPerRequest, s.seed()).assemble(scored, req.VenueTypes, req)
	stats.TotalMillis = time.Since(started).Milliseconds()

	s.logger.Info("plans assembled",
		"user_id", req.UserID,
		"plans", len(plans),
		"venues_found", stats.VenuesDiscovered,
		"venues_available", stats.VenuesAvailable,
		"degraded", degraded,
	)

	return Response{
		PlanID:               uuid.NewString(),
		UserID:               req.UserID,
		Plans:                plans,
		TotalPlansGenerated:  len(plans),
		TotalVenuesFound:     stats.VenuesDiscovered,
		TotalVenuesAvailable: stats.VenuesAvailable,
		Warnings:             warnings,
		Degraded:             degraded,
		Stats:                stats,
		GeneratedAt:          s.now(),
	}, nil
}

func (s *service) loadPreferences(ctx context.Context, req Request) (*Preferences, error) {
	if !req.UsePersonalization || req.UserID == "" || s.profiles == nil {
		return nil, nil
	}
	prefs, found, err := s.profiles.Preferences(ctx, req.UserID)
	if err != nil || !found {
		return nil, err
	}
	return &prefs, nil
}

// seed derives a per-call seed so sibling plans vary between calls yet stay reproducible
// for a fixed configured seed.
func (s *service) seed() uint64 {
	call := s.calls.Add(1)
	if s.cfg.Seed == 0 {
		return uint64(time.Now().UnixNano()) + call
	}
	return uint64(s.cfg.Seed) + call - 1
}

func visitWindow(req Request) availability.WindowFunc {
	return func(v venue.Venue, requested time.Time) availability.Window {
		return availability.Window{Start: requested, End: requested.Add(visitDuration(v.Type, req.GroupSize, req.DurationHours))}
	}
}

func belowRating(v venue.Venue, minRating *float64) bool {
	return minRating != nil && v.Rating != nil && *v.Rating < *minRating
}

// stageError maps an expired or canceled context onto the public error codes.
func stageError(ctx context.Context) error {
	switch err := ctx.Err(); {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Wrap(CodePlanTimeout, "plan generation timed out", err)
	default:
		return apperrors.Wrap(CodeRequestCanceled, "plan request canceled", err)
	}
}

func failStage(ctx context.Context, msg string, err error) error {
	if stageErr := stageError(ctx); stageErr != nil {
		return stageErr
	}
	return apperrors.Wrap(CodePlanningError, msg, err)
}
