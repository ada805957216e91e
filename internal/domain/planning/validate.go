package planning

import (
	"fmt"
	"strings"
	"time"

	"github.com/yanqian/planeet/internal/domain/venue"
	apperrors "github.com/yanqian/planeet/pkg/errors"
)

const (
	defaultRadiusKm  = 10.0
	maxRadiusKm      = 100.0
	maxDurationHours = 12.0
	startGrid        = 15 * time.Minute
)

var budgetRanges = map[string]struct{}{"": {}, "$": {}, "$$": {}, "$$$": {}}

// normalizeRequest validates req and fills defaults. It performs no I/O.
func normalizeRequest(req Request) (Request, error) {
	if len(req.VenueTypes) == 0 {
		return Request{}, invalid("venue_types cannot be empty")
	}
	tags := make([]venue.Tag, 0, len(req.VenueTypes))
	seen := make(map[venue.Tag]struct{}, len(req.VenueTypes))
	for _, raw := range req.VenueTypes {
		tag := venue.NormalizeTag(string(raw))
		if tag == "" {
			return Request{}, invalid("venue_types cannot contain blank entries")
		}
		if _, dup := seen[tag]; dup {
			return Request{}, invalid(fmt.Sprintf("venue type %q requested twice", tag))
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	req.VenueTypes = tags

	if req.GroupSize < 1 {
		return Request{}, invalid("group_size must be at least 1")
	}
	if req.MaxVenues == 0 {
		req.MaxVenues = len(tags)
	}
	if req.MaxVenues < 1 || req.MaxVenues > len(tags) {
		return Request{}, invalid(fmt.Sprintf("max_venues must be between 1 and %d (the number of venue types)", len(tags)))
	}

	if req.RadiusKm == 0 {
		req.RadiusKm = defaultRadiusKm
	}
	if req.RadiusKm < 0 || req.RadiusKm > maxRadiusKm {
		return Request{}, invalid(fmt.Sprintf("radius_km must be in (0, %.0f]", maxRadiusKm))
	}
	if !req.Location.Valid() {
		return Request{}, invalid("location coordinates are out of range")
	}

	if req.RequestedTime.IsZero() {
		return Request{}, invalid("requested_time is required")
	}
	if req.RequestedTime.Second() != 0 || req.RequestedTime.Nanosecond() != 0 || req.RequestedTime.Minute()%int(startGrid/time.Minute) != 0 {
		return Request{}, invalid("requested_time must fall on a 15 minute boundary (XX:00, XX:15, XX:30, XX:45)")
	}

	if req.MinRating != nil && (*req.MinRating < 0 || *req.MinRating > 5) {
		return Request{}, invalid("min_rating must be between 0 and 5")
	}
	req.BudgetRange = strings.TrimSpace(req.BudgetRange)
	if _, ok := budgetRanges[req.BudgetRange]; !ok {
		return Request{}, invalid("budget_range must be one of $, $$, $$$")
	}
	if req.DurationHours != nil && (*req.DurationHours <= 0 || *req.DurationHours > maxDurationHours) {
		return Request{}, invalid(fmt.Sprintf("duration_hours must be in (0, %.0f]", maxDurationHours))
	}
	req.UserID = strings.TrimSpace(req.UserID)
	return req, nil
}

func invalid(msg string) error {
	return apperrors.Wrap(CodeInvalidInput, msg, nil)
}
