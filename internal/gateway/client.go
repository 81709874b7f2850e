// Package gateway provides the HTTP client for the downstream fitness-data
// service that backs the coaching tools: completed activities, daily
// wellness metrics, and the training calendar.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Credentials identifies the athlete to the upstream service.
type Credentials struct {
	APIKey            string
	UpstreamAthleteID string
}

// Client is a bearer-authenticated JSON client for the fitness gateway.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the gateway at baseURL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// RecentActivities fetches the athlete's completed activities for the
// last days days.
func (c *Client) RecentActivities(ctx context.Context, creds Credentials, days int) (json.RawMessage, error) {
	params := url.Values{"days": {strconv.Itoa(days)}}
	return c.get(ctx, creds, "/athletes/"+url.PathEscape(creds.UpstreamAthleteID)+"/activities", params)
}

// Wellness fetches daily wellness rows for the inclusive date range.
// Empty bounds mean the upstream default window.
func (c *Client) Wellness(ctx context.Context, creds Credentials, startDate, endDate string) (json.RawMessage, error) {
	params := url.Values{}
	if startDate != "" {
		params.Set("oldest", startDate)
	}
	if endDate != "" {
		params.Set("newest", endDate)
	}
	return c.get(ctx, creds, "/athletes/"+url.PathEscape(creds.UpstreamAthleteID)+"/wellness", params)
}

// CalendarEvents fetches planned events in the inclusive date range.
func (c *Client) CalendarEvents(ctx context.Context, creds Credentials, startDate, endDate string) (json.RawMessage, error) {
	params := url.Values{"oldest": {startDate}, "newest": {endDate}}
	return c.get(ctx, creds, "/athletes/"+url.PathEscape(creds.UpstreamAthleteID)+"/events", params)
}

// CreateEvent adds a calendar event. The payload is already in the
// upstream field-naming convention.
func (c *Client) CreateEvent(ctx context.Context, creds Credentials, event map[string]any) (json.RawMessage, error) {
	return c.send(ctx, creds, http.MethodPost,
		"/athletes/"+url.PathEscape(creds.UpstreamAthleteID)+"/events", event)
}

// UpdateEvent modifies an existing calendar event.
func (c *Client) UpdateEvent(ctx context.Context, creds Credentials, eventID string, event map[string]any) (json.RawMessage, error) {
	return c.send(ctx, creds, http.MethodPut,
		"/athletes/"+url.PathEscape(creds.UpstreamAthleteID)+"/events/"+url.PathEscape(eventID), event)
}

func (c *Client) get(ctx context.Context, creds Credentials, path string, params url.Values) (json.RawMessage, error) {
	requestURL := c.baseURL + path
	if len(params) > 0 {
		requestURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, creds)
}

func (c *Client) send(ctx context.Context, creds Credentials, method, path string, body any) (json.RawMessage, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, creds)
}

func (c *Client) do(req *http.Request, creds Credentials) (json.RawMessage, error) {
	req.Header.Set("Authorization", "Bearer "+creds.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Err: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &Error{Kind: KindRateLimited, StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	case resp.StatusCode >= 400:
		c.logger.Debug("gateway request failed",
			"method", req.Method, "path", req.URL.Path, "status", resp.StatusCode)
		return nil, &Error{Kind: KindUpstream, StatusCode: resp.StatusCode, Message: upstreamMessage(body)}
	}

	if len(body) == 0 {
		return json.RawMessage("null"), nil
	}
	return json.RawMessage(body), nil
}

// upstreamMessage extracts a short error message from an upstream body,
// falling back to a truncated raw body.
func upstreamMessage(body []byte) string {
	var wire struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Message != "" {
			return wire.Message
		}
		if wire.Error != "" {
			return wire.Error
		}
	}
	const maxLen = 200
	if len(body) > maxLen {
		return string(body[:maxLen])
	}
	return string(body)
}
