package planning

import (
	"time"

	"github.com/yanqian/planeet/internal/domain/venue"
	"github.com/yanqian/planeet/pkg/metrics"
)

// Request asks for sibling plans around a location at a given time.
type Request struct {
	UserID              string         `json:"user_id"`
	VenueTypes          []venue.Tag    `json:"venue_types"`
	Location            venue.Location `json:"location"`
	RadiusKm            float64        `json:"radius_km"`
	RequestedTime       time.Time      `json:"requested_time"`
	GroupSize           int            `json:"group_size"`
	MaxVenues           int            `json:"max_venues"`
	BudgetRange         string         `json:"budget_range,omitempty"`
	MinRating           *float64       `json:"min_rating,omitempty"`
	Amenities           []string       `json:"amenities,omitempty"`
	DietaryRestrictions []string       `json:"dietary_restrictions,omitempty"`
	AccessibilityNeeds  []string       `json:"accessibility_needs,omitempty"`
	DurationHours       *float64       `json:"duration_hours,omitempty"`
	UsePersonalization  bool           `json:"use_personalization"`
}

// Preferences describe what a user tends to enjoy. They only influence ranking.
type Preferences struct {
	PreferredVenueTypes []venue.Tag `json:"preferred_venue_types,omitempty"`
	PreferredPriceRange string      `json:"preferred_price_range,omitempty"`
	PreferredAmenities  []string    `json:"preferred_amenities,omitempty"`
	PreferredCities     []string    `json:"preferred_cities,omitempty"`
	MinRating           *float64    `json:"min_rating,omitempty"`
	DietaryRestrictions []string    `json:"dietary_restrictions,omitempty"`
}

func (p Preferences) empty() bool {
	return len(p.PreferredVenueTypes) == 0 &&
		p.PreferredPriceRange == "" &&
		len(p.PreferredAmenities) == 0 &&
		len(p.PreferredCities) == 0 &&
		p.MinRating == nil &&
		len(p.DietaryRestrictions) == 0
}

// CandidateVenueSlot is one scheduled stop inside a plan.
type CandidateVenueSlot struct {
	VenueID    string         `json:"venue_id"`
	Name       string         `json:"name"`
	VenueType  venue.Tag      `json:"venue_type"`
	Location   venue.Location `json:"location"`
	Rating     *float64       `json:"rating,omitempty"`
	PriceRange string         `json:"price_range,omitempty"`
	Amenities  []string       `json:"amenities,omitempty"`
	Website    string         `json:"website,omitempty"`

	TimeSlot        string    `json:"time_slot"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationMinutes int       `json:"duration_minutes"`
	// TravelTimeFromPrevious is the whole gap after the previous stop ends, buffer included.
	TravelTimeFromPrevious int     `json:"travel_time_from_previous"`
	TransitMinutes         int     `json:"transit_minutes"`
	TravelDistanceKm       float64 `json:"travel_distance_km"`

	RemainingCapacity    int     `json:"remaining_capacity"`
	AvailabilityChecked  bool    `json:"availability_checked"`
	PersonalizationScore float64 `json:"personalization_score"`
}

// Plan is one sequenced, category-unique selection of venues.
type Plan struct {
	PlanID                 string               `json:"plan_id"`
	Venues                 []CandidateVenueSlot `json:"venues"`
	VenueTypes             []venue.Tag          `json:"venue_types"`
	StartTime              time.Time            `json:"start_time"`
	EndTime                time.Time            `json:"end_time"`
	EstimatedTotalDuration int                  `json:"estimated_total_duration"`
	TotalDistanceKm        float64              `json:"total_distance_km"`
	PersonalizationScore   float64              `json:"personalization_score"`
}

// Warning codes attached to degraded responses.
const (
	WarningDiscoveryDegraded          = "discovery_degraded"
	WarningAvailabilityDegraded       = "availability_degraded"
	WarningNoAvailableVenues          = "no_available_venues"
	WarningPersonalizationUnavailable = "personalization_unavailable"
)

// Warning is a soft condition that did not stop plan generation.
type Warning struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	VenueTypes []venue.Tag `json:"venue_types,omitempty"`
}

// Response is returned by CreatePlan.
type Response struct {
	PlanID               string                `json:"plan_id"`
	UserID               string                `json:"user_id,omitempty"`
	Plans                []Plan                `json:"plans"`
	TotalPlansGenerated  int                   `json:"total_plans_generated"`
	TotalVenuesFound     int                   `json:"total_venues_found"`
	TotalVenuesAvailable int                   `json:"total_venues_available"`
	Warnings             []Warning             `json:"warnings,omitempty"`
	Degraded             bool                  `json:"degraded"`
	Stats                metrics.PipelineStats `json:"stats"`
	GeneratedAt          time.Time             `json:"generated_at"`
}
