package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"helpline-responder/internal/domain"
)

const defaultBaseURL = "https://graph.facebook.com/v2.6"

// sendRequest is the Send API request body.
type sendRequest struct {
	Recipient    recipient              `json:"recipient"`
	Message      *domain.MessagePayload `json:"message,omitempty"`
	SenderAction string                 `json:"sender_action,omitempty"`
}

type recipient struct {
	ID string `json:"id"`
}

// sendResponse is the minimal response shape returned by the Send API.
type sendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

// profileResponse is the subset of the user profile the bot reads.
type profileResponse struct {
	FirstName string `json:"first_name"`
}

// HTTPStatusError captures non-2xx upstream responses with status-aware context.
type HTTPStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("messenger: unexpected status %d from %s: %s", e.StatusCode, e.URL, e.Body)
}

func (e *HTTPStatusError) HTTPStatusCode() int {
	return e.StatusCode
}

// Client talks to the Messenger Platform Graph API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	accessToken string
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

// NewClient creates a Client authenticating with the page access token.
func NewClient(accessToken string, opts ...Option) (*Client, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, errors.New("messenger: page access token must not be empty")
	}
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		accessToken: accessToken,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (c *Client) endpoint(path string) string {
	base := strings.TrimRight(c.baseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	return base + path
}

// SendMessage delivers msg through the Send API and returns the identifiers
// assigned by the platform.
func (c *Client) SendMessage(ctx context.Context, msg domain.OutboundMessage) (domain.SendResult, error) {
	if strings.TrimSpace(msg.Recipient) == "" {
		return domain.SendResult{}, errors.New("messenger: recipient must not be empty")
	}
	if msg.Payload == nil && msg.SenderAction == "" {
		return domain.SendResult{}, errors.New("messenger: message has neither payload nor sender action")
	}

	body, err := json.Marshal(sendRequest{
		Recipient:    recipient{ID: msg.Recipient},
		Message:      msg.Payload,
		SenderAction: msg.SenderAction,
	})
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("messenger: marshal send request: %w", err)
	}

	endpoint := c.endpoint("/me/messages")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+c.tokenQuery(nil), bytes.NewReader(body))
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("messenger: create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.doJSONRequest(req, endpoint)
	if err != nil {
		return domain.SendResult{}, fmt.Errorf("messenger: send request failed: %w", err)
	}

	var payload sendResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.SendResult{}, fmt.Errorf("messenger: decode send response: %w", err)
	}
	return domain.SendResult{RecipientID: payload.RecipientID, MessageID: payload.MessageID}, nil
}

// GetUserProfile fetches the first name of a page-scoped user id.
func (c *Client) GetUserProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.UserProfile{}, errors.New("messenger: user id must not be empty")
	}

	endpoint := c.endpoint("/" + url.PathEscape(userID))
	q := url.Values{"fields": {"first_name"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+c.tokenQuery(q), nil)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("messenger: create profile request: %w", err)
	}

	raw, err := c.doJSONRequest(req, endpoint)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("messenger: profile request failed: %w", err)
	}

	var payload profileResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.UserProfile{}, fmt.Errorf("messenger: decode profile response: %w", err)
	}
	return domain.UserProfile{FirstName: payload.FirstName}, nil
}

func (c *Client) tokenQuery(q url.Values) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("access_token", c.accessToken)
	return q.Encode()
}

// doJSONRequest reports errors against url, which never carries the access token.
func (c *Client) doJSONRequest(req *http.Request, url string) ([]byte, error) {
	res, doErr := c.resolvedHTTPClient().Do(req)
	if doErr != nil {
		return nil, redact(doErr, c.accessToken)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		buf, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return nil, &HTTPStatusError{
			StatusCode: res.StatusCode,
			URL:        url,
			Body:       string(buf),
		}
	}

	buf, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	return buf, nil
}

// redact strips the access token from transport errors, which embed the full request URL.
func redact(err error, token string) error {
	msg := err.Error()
	if token == "" || !strings.Contains(msg, token) {
		return err
	}
	return errors.New(strings.ReplaceAll(msg, token, "REDACTED"))
}
