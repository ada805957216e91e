package google

import (
	"strings"

	"github.com/yanqian/planeet/internal/domain/venue"
)

var placeTypes = map[venue.Tag]string{
	venue.TagRestaurant:     "restaurant",
	venue.TagCafe:           "cafe",
	venue.TagBar:            "bar",
	venue.TagMuseum:         "museum",
	venue.TagTheater:        "movie_theater",
	venue.TagPark:           "park",
	venue.TagShoppingCenter: "shopping_mall",
	venue.TagSportsFacility: "gym",
	venue.TagHotel:          "lodging",
	venue.TagOther:          "establishment",
}

var amenityTypes = map[string]string{
	"wheelchair_accessible_entrance": "wheelchair_accessible",
	"parking":                        "parking",
	"wifi":                           "wifi",
	"outdoor_seating":                "outdoor_seating",
	"delivery":                       "delivery",
	"takeout":                        "takeout",
	"reservations":                   "reservations",
	"live_music":                     "live_music",
	"family_friendly":                "family_friendly",
	"romantic":                       "romantic",
	"casual":                         "casual",
	"upscale":                        "upscale",
}

func placeType(tag venue.Tag) string {
	if t, ok := placeTypes[tag]; ok {
		return t
	}
	return "establishment"
}

func toVenue(p place, tag venue.Tag) venue.Venue {
	return venue.Venue{
		ID:   p.PlaceID,
		Name: p.Name,
		Type: tag,
		Location: venue.Location{
			Latitude:  p.Geometry.Location.Lat,
			Longitude: p.Geometry.Location.Lng,
			Address:   p.Vicinity,
			City:      cityFromVicinity(p.Vicinity),
		},
		Rating:     p.Rating,
		PriceRange: priceRange(p.Price),
		Amenities:  amenities(p.Types),
		Website:    p.Website,
	}
}

// cityFromVicinity takes the second comma separated part, which is usually the city.
func cityFromVicinity(vicinity string) string {
	parts := strings.Split(vicinity, ", ")
	switch {
	case vicinity == "":
		return ""
	case len(parts) >= 2:
		return parts[1]
	default:
		return parts[0]
	}
}

func priceRange(level *int) string {
	if level == nil {
		return ""
	}
	switch *level {
	case 0, 1:
		return "$"
	case 2:
		return "$$"
	case 3, 4:
		return "$$$"
	default:
		return "$$"
	}
}

func amenities(types []string) []string {
	var out []string
	for _, t := range types {
		if a, ok := amenityTypes[t]; ok {
			out = append(out, a)
		}
	}
	return out
}
