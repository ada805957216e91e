package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yanqian/planeet/internal/domain/venue"
)

const (
	defaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	// maxResults is the Nearby Search ceiling across all pages.
	maxResults = 60
)

// Config tunes the Places client.
type Config struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	PageDelay         time.Duration
}

// Client searches Google Places Nearby Search.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a rate limited Places client.
func NewClient(cfg Config) *Client {
	base := strings.TrimSpace(cfg.BaseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	return &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(limit, cfg.Burst),
	}
}

// Search returns up to q.Limit venues of q.Type around q.Location, following result pages.
func (c *Client) Search(ctx context.Context, q venue.Query) ([]venue.Venue, error) {
	limit := q.Limit
	if limit <= 0 || limit > maxResults {
		limit = maxResults
	}

	params := url.Values{}
	params.Set("location", fmt.Sprintf("%f,%f", q.Location.Latitude, q.Location.Longitude))
	params.Set("radius", strconv.Itoa(int(q.RadiusKm*1000)))
	params.Set("type", placeType(q.Type))
	params.Set("keyword", strings.ReplaceAll(string(q.Type), "_", " "))
	params.Set("key", c.cfg.APIKey)

	var out []venue.Venue
	pageToken := ""
	for {
		if pageToken != "" {
			if err := sleepCtx(ctx, c.cfg.PageDelay); err != nil {
				return nil, err
			}
			params = url.Values{"pagetoken": {pageToken}, "key": {c.cfg.APIKey}}
		}
		page, err := c.nearby(ctx, params)
		if err != nil {
			return nil, err
		}
		for _, p := range page.Results {
			if p.PlaceID == "" {
				continue
			}
			out = append(out, toVenue(p, q.Type))
			if len(out) >= limit {
				return out, nil
			}
		}
		if page.NextPageToken == "" {
			return out, nil
		}
		pageToken = page.NextPageToken
	}
}

type nearbyResponse struct {
	Status        string  `json:"status"`
	ErrorMessage  string  `json:"error_message"`
	Results       []place `json:"results"`
	NextPageToken string  `json:"next_page_token"`
}

type place struct {
	PlaceID  string   `json:"place_id"`
	Name     string   `json:"name"`
	Vicinity string   `json:"vicinity"`
	Rating   *float64 `json:"rating"`
	Price    *int     `json:"price_level"`
	Types    []string `json:"types"`
	Website  string   `json:"website"`
	Geometry struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}

func (c *Client) nearby(ctx context.Context, params url.Values) (nearbyResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nearbyResponse{}, err
	}
	endpoint := c.baseURL + "/nearbysearch/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nearbyResponse{}, fmt.Errorf("build places request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nearbyResponse{}, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nearbyResponse{}, fmt.Errorf("places request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var page nearbyResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nearbyResponse{}, fmt.Errorf("decode places response: %w", err)
	}
	switch page.Status {
	case "OK":
		return page, nil
	case "ZERO_RESULTS":
		return nearbyResponse{}, nil
	default:
		return nearbyResponse{}, fmt.Errorf("places api error: %s %s", page.Status, page.ErrorMessage)
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ venue.PlacesProvider = (*Client)(nil)
