package profile

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/planeet/internal/domain/venue"
)

func TestPreferences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("user_id") {
		case "u1":
			_, _ = w.Write([]byte(`{"preferred_venue_types":["cafe"],"preferred_price_range":"$$","preferred_cities":["Haifa"]}`))
		case "u2":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()
	client := NewClient(srv.URL, time.Second)
	ctx := context.Background()

	prefs, found, err := client.Preferences(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, []venue.Tag{venue.TagCafe}, prefs.PreferredVenueTypes)
	require.Equal(t, "$$", prefs.PreferredPriceRange)

	_, found, err = client.Preferences(ctx, "u2")
	require.NoError(t, err)
	require.False(t, found)

	_, _, err = client.Preferences(ctx, "u3")
	require.Error(t, err)
}

func TestPreferencesWithoutService(t *testing.T) {
	_, found, err := NewClient("", 0).Preferences(context.Background(), "u1")
	require.NoError(t, err)
	require.False(t, found)
}
