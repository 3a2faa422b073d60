package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"helpline-responder/internal/domain"
)

const defaultBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"

// nearbyResponse is the minimal Nearby Search response shape.
type nearbyResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	Results      []struct {
		Name     string `json:"name"`
		Vicinity string `json:"vicinity"`
	} `json:"results"`
}

// HTTPStatusError captures non-2xx upstream responses.
type HTTPStatusError struct {
	StatusCode int
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("places: unexpected status %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client is a Google Places Nearby Search client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	apiKey     string
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSpace(baseURL)
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("places: api key must not be empty")
	}
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return c, nil
}

// NearbySearch returns places around q in the ranking order of the service.
// ZERO_RESULTS is an empty slice, not an error.
func (c *Client) NearbySearch(ctx context.Context, q domain.PlaceQuery) ([]domain.Place, error) {
	params := url.Values{}
	params.Set("location", formatCoord(q.Lat)+","+formatCoord(q.Long))
	if q.Radius > 0 {
		params.Set("radius", strconv.Itoa(q.Radius))
	}
	if q.Type != "" {
		params.Set("type", q.Type)
	}
	params.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("places: create request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places: request failed: %s", strings.ReplaceAll(err.Error(), c.apiKey, "REDACTED"))
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{StatusCode: res.StatusCode, Body: string(buf)}
	}

	var payload nearbyResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, 1<<20)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("places: decode response: %w", err)
	}
	switch payload.Status {
	case "OK", "":
	case "ZERO_RESULTS":
		return []domain.Place{}, nil
	default:
		return nil, fmt.Errorf("places: search status %s: %s", payload.Status, payload.ErrorMessage)
	}

	out := make([]domain.Place, 0, len(payload.Results))
	for _, r := range payload.Results {
		out = append(out, domain.Place{Name: r.Name, Vicinity: r.Vicinity})
	}
	return out, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
