package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds one bridge request.
const DefaultTimeout = 15 * time.Second

// Client talks to the ENTSO-E bridge REST API.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a bridge client. A non-positive timeout falls back to
// DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("telemetry: empty base url")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}, nil
}

// Generation fetches the latest aggregate generation snapshot.
func (c *Client) Generation(ctx context.Context) (GenerationSample, error) {
	var sample GenerationSample
	if err := c.getJSON(ctx, "/api/entsoe/generation", &sample); err != nil {
		return GenerationSample{}, err
	}
	return sample, nil
}

type flowsResponse struct {
	Flows map[string]Flow `json:"flows"`
}

// CrossBorderFlows fetches the current exchange per neighbouring country.
func (c *Client) CrossBorderFlows(ctx context.Context) (map[string]Flow, error) {
	var resp flowsResponse
	if err := c.getJSON(ctx, "/api/entsoe/cross-border-flows", &resp); err != nil {
		return nil, err
	}
	return resp.Flows, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telemetry: http %d from %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
