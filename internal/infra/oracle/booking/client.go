package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/planeet/internal/domain/availability"
)

const defaultBaseURL = "http://localhost:8003"

// Client talks to the booking service availability API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a booking service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	base := strings.TrimSpace(baseURL)
	if base == "" {
		base = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(base, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return statusError("health", resp)
	}
	return nil
}

type generateRequest struct {
	VenueID        string `json:"venue_id"`
	DefaultCounter int    `json:"default_counter"`
}

func (c *Client) GenerateTimeSlots(ctx context.Context, venueID string, defaultCounter int) error {
	body, err := json.Marshal(generateRequest{VenueID: venueID, DefaultCounter: defaultCounter})
	if err != nil {
		return fmt.Errorf("encode generate request: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/v1/time-slots/generate", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode < 300, resp.StatusCode == http.StatusConflict:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return availability.ErrVenueNotFound
	default:
		return statusError("generate time slots", resp)
	}
}

type overlappingResponse struct {
	Available bool   `json:"available"`
	Counter   int    `json:"counter"`
	VenueName string `json:"venue_name"`
	Error     string `json:"error"`
}

func (c *Client) CheckOverlapping(ctx context.Context, venueID string, w availability.Window) (availability.Result, error) {
	endpoint := fmt.Sprintf("%s/v1/availability/google-place/%s/overlapping/%s",
		c.baseURL, url.PathEscape(venueID), url.PathEscape(w.String()))
	resp, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return availability.Result{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return availability.Result{}, availability.ErrVenueNotFound
	case resp.StatusCode >= 300:
		return availability.Result{}, statusError("check availability", resp)
	}

	var payload overlappingResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return availability.Result{}, fmt.Errorf("decode availability response: %w", err)
	}
	if payload.Error != "" {
		return availability.Result{}, fmt.Errorf("booking service: %s", payload.Error)
	}
	return availability.Result{
		Available:         payload.Available,
		RemainingCapacity: payload.Counter,
		Checked:           true,
	}, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build booking request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", availability.ErrOracleUnreachable, err)
	}
	return resp, nil
}

// statusError reads a short body excerpt. Gateway and 5xx answers count as an unreachable oracle.
func statusError(op string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	err := fmt.Errorf("booking %s error: status=%d body=%s", op, resp.StatusCode, strings.TrimSpace(string(payload)))
	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %v", availability.ErrOracleUnreachable, err)
	}
	return err
}

var _ availability.Oracle = (*Client)(nil)
