package planning

import (
	"slices"
	"strings"

	"github.com/yanqian/planeet/internal/domain/venue"
)

const neutralScore = 0.5

const (
	weightVenueType = 0.25
	weightPrice     = 0.20
	weightAmenities = 0.15
	weightRating    = 0.15
	weightLocation  = 0.15
	weightDietary   = 0.10
)

var priceLevels = map[string]int{"$": 1, "$$": 2, "$$$": 3}

var dietaryKeywords = map[string][]string{
	"vegetarian":  {"vegetarian", "vegan", "plant-based"},
	"vegan":       {"vegan", "plant-based"},
	"gluten-free": {"gluten-free", "gluten free", "celiac"},
	"halal":       {"halal"},
	"kosher":      {"kosher"},
}

// mergePreferences overlays the request's own filters on the stored profile.
func mergePreferences(stored *Preferences, req Request) *Preferences {
	var merged Preferences
	if stored != nil {
		merged = *stored
		merged.PreferredAmenities = slices.Clone(stored.PreferredAmenities)
		merged.DietaryRestrictions = slices.Clone(stored.DietaryRestrictions)
	}
	if req.BudgetRange != "" {
		merged.PreferredPriceRange = req.BudgetRange
	}
	if req.MinRating != nil {
		merged.MinRating = req.MinRating
	}
	merged.PreferredAmenities = appendUnique(merged.PreferredAmenities, req.Amenities...)
	merged.PreferredAmenities = appendUnique(merged.PreferredAmenities, req.AccessibilityNeeds...)
	merged.DietaryRestrictions = appendUnique(merged.DietaryRestrictions, req.DietaryRestrictions...)
	if merged.empty() {
		return nil
	}
	return &merged
}

// scoreVenue rates how well v matches prefs on a 0..1 scale. Only the signals that
// apply to both sides count, and their weights are renormalized.
func scoreVenue(v venue.Venue, prefs *Preferences) float64 {
	if prefs == nil {
		return neutralScore
	}
	var total, weight float64
	add := func(score, w float64) {
		total += score * w
		weight += w
	}

	if len(prefs.PreferredVenueTypes) > 0 {
		if slices.Contains(prefs.PreferredVenueTypes, v.Type) {
			add(1, weightVenueType)
		} else {
			add(0, weightVenueType)
		}
	}
	if prefs.PreferredPriceRange != "" && v.PriceRange != "" {
		add(priceMatch(v.PriceRange, prefs.PreferredPriceRange), weightPrice)
	}
	if len(prefs.PreferredAmenities) > 0 && len(v.Amenities) > 0 {
		add(amenityMatch(v.Amenities, prefs.PreferredAmenities), weightAmenities)
	}
	if prefs.MinRating != nil && *prefs.MinRating > 0 && v.Rating != nil {
		add(ratingMatch(*v.Rating, *prefs.MinRating), weightRating)
	}
	if len(prefs.PreferredCities) > 0 && v.Location.City != "" {
		if containsFold(prefs.PreferredCities, v.Location.City) {
			add(1, weightLocation)
		} else {
			add(0.3, weightLocation)
		}
	}
	if len(prefs.DietaryRestrictions) > 0 && len(v.Amenities) > 0 {
		add(dietaryMatch(v.Amenities, prefs.DietaryRestrictions), weightDietary)
	}

	if weight == 0 {
		return neutralScore
	}
	return total / weight
}

func priceMatch(venuePrice, preferred string) float64 {
	level := func(p string) int {
		if l, ok := priceLevels[p]; ok {
			return l
		}
		return 2
	}
	diff := level(venuePrice) - level(preferred)
	switch {
	case diff == 0:
		return 1
	case diff == 1 || diff == -1:
		return 0.7
	default:
		return 0.3
	}
}

func amenityMatch(have, want []string) float64 {
	matches := 0
	for _, w := range want {
		if containsFold(have, w) {
			matches++
		}
	}
	return float64(matches) / float64(len(want))
}

func ratingMatch(rating, minRating float64) float64 {
	if rating >= minRating {
		if rating >= minRating+1 {
			return 1
		}
		return 0.8
	}
	switch diff := minRating - rating; {
	case diff <= 0.5:
		return 0.6
	case diff <= 1:
		return 0.4
	default:
		return 0.2
	}
}

func dietaryMatch(amenities, restrictions []string) float64 {
	score := 0.5
	for _, r := range restrictions {
		keywords, ok := dietaryKeywords[strings.ToLower(r)]
		if !ok {
			continue
		}
		if slices.ContainsFunc(keywords, func(k string) bool { return containsFold(amenities, k) }) {
			score += 0.3
		} else {
			score -= 0.2
		}
	}
	return min(1, max(0, score))
}

func containsFold(list []string, needle string) bool {
	return slices.ContainsFunc(list, func(s string) bool { return strings.EqualFold(s, needle) })
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" || containsFold(list, item) {
			continue
		}
		list = append(list, item)
	}
	return list
}
