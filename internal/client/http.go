package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/threadcraft/pulse/internal/model"
)

// HTTPClient implements PulseClient using the pulse HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	tenantID   string
	userID     string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request. tenantID and userID identify the caller
// via the X-Tenant-ID / X-User-ID headers.
func NewHTTPClient(baseURL, token, tenantID, userID string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		tenantID:   tenantID,
		userID:     userID,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Events ---

func (c *HTTPClient) PublishEvent(ctx context.Context, req *PublishEventRequest) (*PublishEventResponse, error) {
	var resp PublishEventResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/events", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var ev model.Event
	if err := c.doJSON(ctx, http.MethodGet, "/v1/events/"+url.PathEscape(id), nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *HTTPClient) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
	q := url.Values{}
	if req.EntityType != "" {
		q.Set("entity_type", req.EntityType)
	}
	if req.EntityID != "" {
		q.Set("entity_id", req.EntityID)
	}
	if req.Processed != nil {
		q.Set("processed", strconv.FormatBool(*req.Processed))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/v1/events"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListEventsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Notifications ---

func (c *HTTPClient) ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	q := url.Values{}
	if req.Category != "" {
		q.Set("category", req.Category)
	}
	if req.Priority != "" {
		q.Set("priority", req.Priority)
	}
	if req.Unread != nil {
		q.Set("unread", strconv.FormatBool(*req.Unread))
	}
	if req.Limit > 0 {
		q.Set("limit", strconv.Itoa(req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", strconv.Itoa(req.Offset))
	}

	path := "/v1/notifications"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListNotificationsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UnreadCount(ctx context.Context, category string) (int, error) {
	path := "/v1/notifications/unread-count"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var resp struct {
		Unread int `json:"unread"`
	}
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Unread, nil
}

func (c *HTTPClient) MarkRead(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	if err := c.doJSON(ctx, http.MethodPost, "/v1/notifications/"+url.PathEscape(id)+"/read", nil, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (c *HTTPClient) MarkAllRead(ctx context.Context, category string) (int, error) {
	path := "/v1/notifications/read-all"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var resp struct {
		Updated int `json:"updated"`
	}
	if err := c.doJSON(ctx, http.MethodPost, path, nil, &resp); err != nil {
		return 0, err
	}
	return resp.Updated, nil
}

func (c *HTTPClient) DeleteNotification(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/notifications/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) Cleanup(ctx context.Context) (int64, error) {
	var resp struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/v1/notifications/cleanup", nil, &resp); err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// --- Sessions ---

func (c *HTTPClient) SessionRoster(ctx context.Context) (*SessionRosterResponse, error) {
	var resp SessionRosterResponse
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.tenantID != "" {
		req.Header.Set("X-Tenant-ID", c.tenantID)
	}
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
