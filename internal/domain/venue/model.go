package venue

import (
	"context"
	"strings"
)

// Tag is a normalized venue type such as "restaurant" or "park".
type Tag string

// Well known tags. Any other non-empty tag is accepted and mapped to a generic search.
const (
	TagRestaurant     Tag = "restaurant"
	TagBar            Tag = "bar"
	TagCafe           Tag = "cafe"
	TagMuseum         Tag = "museum"
	TagTheater        Tag = "theater"
	TagPark           Tag = "park"
	TagShoppingCenter Tag = "shopping_center"
	TagSportsFacility Tag = "sports_facility"
	TagSpa            Tag = "spa"
	TagHotel          Tag = "hotel"
	TagOther          Tag = "other"
)

// NormalizeTag lower-cases and trims a tag, turning spaces and dashes into underscores.
func NormalizeTag(raw string) Tag {
	clean := strings.ToLower(strings.TrimSpace(raw))
	clean = strings.NewReplacer(" ", "_", "-", "_").Replace(clean)
	return Tag(clean)
}

// Location is a point with optional postal details.
type Location struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
	Address   string  `json:"address,omitempty" yaml:"address"`
	City      string  `json:"city,omitempty" yaml:"city"`
	Country   string  `json:"country,omitempty" yaml:"country"`
}

// Valid reports whether the coordinates are within WGS84 bounds.
func (l Location) Valid() bool {
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// Venue is a bookable place returned by a places provider. ID is the provider's stable identifier.
type Venue struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Type       Tag      `json:"venue_type" yaml:"type"`
	Location   Location `json:"location" yaml:"location"`
	Rating     *float64 `json:"rating,omitempty" yaml:"rating"`
	PriceRange string   `json:"price_range,omitempty" yaml:"priceRange"`
	Amenities  []string `json:"amenities,omitempty" yaml:"amenities"`
	Website    string   `json:"website,omitempty" yaml:"website"`
}

// Query asks a provider for venues of one type around a location.
type Query struct {
	Type     Tag
	Location Location
	RadiusKm float64
	Limit    int
}

// PlacesProvider is the external capability "given a location and venue type, return candidate venues".
type PlacesProvider interface {
	Search(ctx context.Context, q Query) ([]Venue, error)
}

// Discovery is the result of one discovery round across all requested types.
type Discovery struct {
	ByType map[Tag][]Venue
	// Failed lists types whose provider call errored.
	Failed []Tag
	// Empty lists types for which the provider answered with no venues.
	Empty []Tag
	// Duplicates counts venues skipped because an earlier type already claimed them.
	Duplicates int
}

// Total returns the number of distinct venues discovered.
func (d Discovery) Total() int {
	n := 0
	for _, venues := range d.ByType {
		n += len(venues)
	}
	return n
}

// Degraded reports whether any type came back without candidates.
func (d Discovery) Degraded() bool {
	return len(d.Failed) > 0 || len(d.Empty) > 0
}

// Shortfall returns failed and empty types in one list, failed first.
func (d Discovery) Shortfall() []Tag {
	out := make([]Tag, 0, len(d.Failed)+len(d.Empty))
	out = append(out, d.Failed...)
	return append(out, d.Empty...)
}
