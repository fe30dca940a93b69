// Package client provides an HTTP client for the community backend REST API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/evcraddock/gatekeeper/internal/visitor"
)

// Client is an HTTP client for the community backend.
type Client struct {
	http *resty.Client
}

// New creates a new API client.
func New(baseURL, apiKey string) *Client {
	rc := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30*time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")

	if apiKey != "" {
		rc.SetHeader("Authorization", "Bearer "+apiKey)
	}

	rc.OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
		r.SetHeader("X-Request-ID", uuid.NewString())
		return nil
	})

	return &Client{http: rc}
}

// Resty exposes the underlying client so callers can install hooks.
func (c *Client) Resty() *resty.Client {
	return c.http
}

// Settings is the community configuration record.
type Settings struct {
	CommunityID    string          `json:"communityId,omitempty"`
	OverstayLimits json.RawMessage `json:"overstayLimits,omitempty"`
}

// saveResponse is the acknowledgment for a settings write.
type saveResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// CommunitySettings returns the configuration record for a community.
func (c *Client) CommunitySettings(ctx context.Context, communityID string) (*Settings, error) {
	var s Settings
	if err := c.get(ctx, settingsPath(communityID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// OverstayLimits returns the raw overstayLimits value for a community.
func (c *Client) OverstayLimits(ctx context.Context, communityID string) (json.RawMessage, error) {
	s, err := c.CommunitySettings(ctx, communityID)
	if err != nil {
		return nil, err
	}
	return s.OverstayLimits, nil
}

// SaveOverstayLimits replaces the community's limits. The bool is the
// backend's success acknowledgment.
func (c *Client) SaveOverstayLimits(ctx context.Context, communityID string, limits map[string]int) (bool, error) {
	body := map[string]interface{}{"overstayLimits": limits}
	var resp saveResponse
	if err := c.send(ctx, http.MethodPut, settingsPath(communityID), body, &resp); err != nil {
		return false, err
	}
	if !resp.Success && resp.Error != "" {
		return false, fmt.Errorf("%s", resp.Error)
	}
	return resp.Success, nil
}

// ListOptions controls filtering for ListVisitors.
type ListOptions struct {
	CommunityID string
	Status      string // checked_in, checked_out, pending (empty = all)
	From        time.Time
	To          time.Time
}

// ListVisitors returns visitor records, optionally filtered.
func (c *Client) ListVisitors(ctx context.Context, opts ListOptions) ([]*visitor.Visitor, error) {
	params := url.Values{}
	if opts.CommunityID != "" {
		params.Set("communityId", opts.CommunityID)
	}
	if opts.Status != "" {
		params.Set("status", opts.Status)
	}
	if !opts.From.IsZero() {
		params.Set("from", opts.From.UTC().Format(time.RFC3339))
	}
	if !opts.To.IsZero() {
		params.Set("to", opts.To.UTC().Format(time.RFC3339))
	}

	var visitors []*visitor.Visitor
	if err := c.get(ctx, "/api/visitors", params, &visitors); err != nil {
		return nil, err
	}
	return visitors, nil
}

// CheckIn admits the holder of a gate pass.
func (c *Client) CheckIn(ctx context.Context, pass visitor.Pass) (*visitor.Visitor, error) {
	var v visitor.Visitor
	if err := c.send(ctx, http.MethodPost, "/api/visitors/checkin", pass, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// CheckOut records a visitor leaving.
func (c *Client) CheckOut(ctx context.Context, visitorID string) (*visitor.Visitor, error) {
	var v visitor.Visitor
	path := fmt.Sprintf("/api/visitors/%s/checkout", url.PathEscape(visitorID))
	if err := c.send(ctx, http.MethodPost, path, nil, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Ping checks the backend is reachable and the API key is accepted.
// It returns the HTTP status code.
func (c *Client) Ping(ctx context.Context) (int, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("limit", "1").
		Get("/api/visitors")
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	return resp.StatusCode(), nil
}

func settingsPath(communityID string) string {
	return fmt.Sprintf("/api/communities/%s/settings", url.PathEscape(communityID))
}

// get performs a GET request and decodes the response.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	resp, err := req.Get(path)
	return c.decode(resp, err, result)
}

// send performs a request with an optional JSON body and decodes the response.
func (c *Client) send(ctx context.Context, method, path string, body, result interface{}) error {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	return c.decode(resp, err, result)
}

// decode handles transport errors, error responses and JSON decoding.
func (c *Client) decode(resp *resty.Response, err error, result interface{}) error {
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	body := resp.Body()
	if resp.StatusCode() >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s", errResp.Error)
		}
		return fmt.Errorf("server error: %s", http.StatusText(resp.StatusCode()))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
