package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/yanqian/planeet/internal/domain/planning"
)

// Client reads outing preferences from the outing profile service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a profile client. An empty base URL yields a client that never finds preferences.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Preferences implements planning.PreferenceSource.
func (c *Client) Preferences(ctx context.Context, userID string) (planning.Preferences, bool, error) {
	if c.baseURL == "" || userID == "" {
		return planning.Preferences{}, false, nil
	}
	endpoint := fmt.Sprintf("%s/profiles?user_id=%s", c.baseURL, url.QueryEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return planning.Preferences{}, false, fmt.Errorf("build profile request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return planning.Preferences{}, false, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return planning.Preferences{}, false, nil
	case resp.StatusCode >= 300:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return planning.Preferences{}, false, fmt.Errorf("profile request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var prefs planning.Preferences
	if err := json.NewDecoder(resp.Body).Decode(&prefs); err != nil {
		return planning.Preferences{}, false, fmt.Errorf("decode profile response: %w", err)
	}
	return prefs, true, nil
}

var _ planning.PreferenceSource = (*Client)(nil)
