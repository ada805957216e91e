package fixture

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/venue"
)

const sample = `
venues:
  - id: far-cafe
    name: Far Cafe
    type: cafe
    location: {latitude: 40.80, longitude: -74.00}
  - id: near-cafe
    name: Near Cafe
    type: Cafe
    rating: 4.2
    priceRange: "$"
    amenities: [wifi]
    location: {latitude: 40.701, longitude: -74.00, city: New York}
  - id: mid-cafe
    name: Mid Cafe
    type: cafe
    location: {latitude: 40.71, longitude: -74.00}
  - id: bar
    name: A Bar
    type: bar
    location: {latitude: 40.70, longitude: -74.00}
`

func TestLoadAndSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venues.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	p, err := Load(path)
	require.NoError(t, err)

	got, err := p.Search(context.Background(), venue.Query{
		Type:     venue.TagCafe,
		Location: venue.Location{Latitude: 40.70, Longitude: -74.00},
		RadiusKm: 5,
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "near-cafe", got[0].ID)
	require.Equal(t, "mid-cafe", got[1].ID)
	require.Equal(t, "New York", got[0].Location.City)
	require.Equal(t, []string{"wifi"}, got[0].Amenities)
	require.InDelta(t, 4.2, *got[0].Rating, 1e-9)

	limited, err := p.Search(context.Background(), venue.Query{Type: venue.TagCafe, Location: venue.Location{Latitude: 40.70, Longitude: -74.00}, RadiusKm: 50, Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
