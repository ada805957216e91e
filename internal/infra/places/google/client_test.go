package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/venue"
)

const firstPage = `{
  "status": "OK",
  "next_page_token": "page-2",
  "results": [
    {"place_id": "p1", "name": "Cinema One", "vicinity": "12 Main St, Springfield",
     "rating": 4.4, "price_level": 2, "types": ["movie_theater", "parking", "wifi"],
     "geometry": {"location": {"lat": 40.71, "lng": -74.01}}},
    {"place_id": "", "name": "ghost"}
  ]
}`

const secondPage = `{
  "status": "OK",
  "results": [
    {"place_id": "p2", "name": "Cinema Two", "vicinity": "Downtown",
     "geometry": {"location": {"lat": 40.72, "lng": -74.02}}}
  ]
}`

func TestSearchFollowsPages(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/nearbysearch/json", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("key"))
		if r.URL.Query().Get("pagetoken") == "page-2" {
			_, _ = w.Write([]byte(secondPage))
			return
		}
		assert.Equal(t, "movie_theater", r.URL.Query().Get("type"))
		assert.Equal(t, "2500", r.URL.Query().Get("radius"))
		_, _ = w.Write([]byte(firstPage))
	}))
	defer srv.Close()

	client := NewClient(Config{APIKey: "secret", BaseURL: srv.URL})
	got, err := client.Search(context.Background(), venue.Query{
		Type:     venue.TagTheater,
		Location: venue.Location{Latitude: 40.7, Longitude: -74},
		RadiusKm: 2.5,
		Limit:    10,
	})
	require.NoError(t, err)
	require.Equal(t, int32(2), calls.Load())
	require.Len(t, got, 2)

	first := got[0]
	require.Equal(t, "p1", first.ID)
	require.Equal(t, venue.TagTheater, first.Type)
	require.Equal(t, "Springfield", first.Location.City)
	require.Equal(t, "$$", first.PriceRange)
	require.Equal(t, []string{"parking", "wifi"}, first.Amenities)
	require.InDelta(t, 4.4, *first.Rating, 1e-9)
	require.Equal(t, "Downtown", got[1].Location.City)
	require.Nil(t, got[1].Rating)
}

func TestSearchStopsAtLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(firstPage))
	}))
	defer srv.Close()

	got, err := NewClient(Config{APIKey: "k", BaseURL: srv.URL}).Search(context.Background(), venue.Query{Type: venue.TagCafe, Limit: 1})
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, int32(1), calls.Load())
}

func TestSearchStatuses(t *testing.T) {
	serve := func(body string) *Client {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(body))
		}))
		t.Cleanup(srv.Close)
		return NewClient(Config{APIKey: "k", BaseURL: srv.URL})
	}

	got, err := serve(`{"status":"ZERO_RESULTS","results":[]}`).Search(context.Background(), venue.Query{Type: venue.TagPark})
	require.NoError(t, err)
	require.Empty(t, got)

	_, err = serve(`{"status":"REQUEST_DENIED","error_message":"bad key"}`).Search(context.Background(), venue.Query{Type: venue.TagPark})
	require.ErrorContains(t, err, "REQUEST_DENIED")
}

func TestMappings(t *testing.T) {
	require.Equal(t, "gym", placeType(venue.TagSportsFacility))
	require.Equal(t, "establishment", placeType("bowling"))
	four, zero := 4, 0
	require.Equal(t, "$$$", priceRange(&four))
	require.Equal(t, "$", priceRange(&zero))
	require.Equal(t, "", priceRange(nil))
	require.Equal(t, "", cityFromVicinity(""))
}
