// Package control provides the Beam control API client used for account,
// app, key, queue, and integration management.
package control

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

const defaultBaseURL = "https://control.beam.sh/v1"

// Client talks to the Beam control API with an account access token.
type Client struct {
	BaseURL    string
	Token      string
	HTTPClient *http.Client
}

// NewClient creates a control API client. BEAM_CONTROL_URL overrides the
// production endpoint, which the test suite and self-hosted installs rely on.
func NewClient(token string) *Client {
	base := os.Getenv("BEAM_CONTROL_URL")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		BaseURL:    base,
		Token:      token,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Account identifies the account an access token belongs to.
type Account struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is the authenticated user within an account.
type User struct {
	Email string `json:"email"`
}

// Me is the response of the token introspection endpoint.
type Me struct {
	Account Account `json:"account"`
	User    User    `json:"user"`
}

// App is a Beam application.
type App struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created"`
}

// Key is an API key scoped to an app.
type Key struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Key        string   `json:"key"`
	Capability []string `json:"capability"`
	Revoked    bool     `json:"revoked"`
}

// Queue is a provisioned message queue.
type Queue struct {
	Name     string `json:"name"`
	Region   string `json:"region"`
	State    string `json:"state"`
	Messages struct {
		Ready   int `json:"ready"`
		Unacked int `json:"unacked"`
		Total   int `json:"total"`
	} `json:"messages"`
}

// Rule is an integration rule forwarding channel traffic to an external
// target (webhook, queue, function).
type Rule struct {
	ID          string `json:"id"`
	Type        string `json:"ruleType"`
	RequestMode string `json:"requestMode"`
	Source      struct {
		ChannelFilter string `json:"channelFilter"`
		Type          string `json:"type"`
	} `json:"source"`
	Target json.RawMessage `json:"target"`
}

// StatsInterval is one aggregated stats bucket for an app or account.
type StatsInterval struct {
	IntervalID string `json:"intervalId"`
	Messages   struct {
		All struct {
			Count int64 `json:"count"`
			Data  int64 `json:"data"`
		} `json:"all"`
	} `json:"messages"`
	Connections struct {
		Peak int64 `json:"peak"`
		Mean int64 `json:"mean"`
	} `json:"connections"`
	Channels struct {
		Peak int64 `json:"peak"`
	} `json:"channels"`
}

type apiError struct {
	Err struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error"`
}

// Me returns the account and user for the client's token.
func (c *Client) Me(ctx context.Context) (*Me, error) {
	var me Me
	if err := c.do(ctx, http.MethodGet, "/me", nil, &me); err != nil {
		return nil, err
	}
	return &me, nil
}

// ListApps returns the apps in the account.
func (c *Client) ListApps(ctx context.Context, accountID string) ([]App, error) {
	var apps []App
	err := c.do(ctx, http.MethodGet, "/accounts/"+accountID+"/apps", nil, &apps)
	return apps, err
}

// CreateApp provisions a new app.
func (c *Client) CreateApp(ctx context.Context, accountID, name string) (*App, error) {
	var app App
	body := map[string]string{"name": name}
	if err := c.do(ctx, http.MethodPost, "/accounts/"+accountID+"/apps", body, &app); err != nil {
		return nil, err
	}
	return &app, nil
}

// DeleteApp permanently deletes an app and all its data.
func (c *Client) DeleteApp(ctx context.Context, appID string) error {
	return c.do(ctx, http.MethodDelete, "/apps/"+appID, nil, nil)
}

// ListKeys returns the API keys of an app.
func (c *Client) ListKeys(ctx context.Context, appID string) ([]Key, error) {
	var keys []Key
	err := c.do(ctx, http.MethodGet, "/apps/"+appID+"/keys", nil, &keys)
	return keys, err
}

// CreateKey issues a new API key for an app with the given capabilities.
func (c *Client) CreateKey(ctx context.Context, appID, name string, capability []string) (*Key, error) {
	var key Key
	body := map[string]any{"name": name, "capability": capability}
	if err := c.do(ctx, http.MethodPost, "/apps/"+appID+"/keys", body, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

// RevokeKey revokes an API key.
func (c *Client) RevokeKey(ctx context.Context, appID, keyID string) error {
	return c.do(ctx, http.MethodPost, "/apps/"+appID+"/keys/"+keyID+"/revoke", nil, nil)
}

// ListQueues returns the queues provisioned for an app.
func (c *Client) ListQueues(ctx context.Context, appID string) ([]Queue, error) {
	var queues []Queue
	err := c.do(ctx, http.MethodGet, "/apps/"+appID+"/queues", nil, &queues)
	return queues, err
}

// CreateQueue provisions a queue in a region.
func (c *Client) CreateQueue(ctx context.Context, appID, name, region string) (*Queue, error) {
	var q Queue
	body := map[string]string{"name": name, "region": region}
	if err := c.do(ctx, http.MethodPost, "/apps/"+appID+"/queues", body, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQueue deletes a queue. Messages still in the queue are lost.
func (c *Client) DeleteQueue(ctx context.Context, appID, name string) error {
	return c.do(ctx, http.MethodDelete, "/apps/"+appID+"/queues/"+name, nil, nil)
}

// ListRules returns the integration rules of an app.
func (c *Client) ListRules(ctx context.Context, appID string) ([]Rule, error) {
	var rules []Rule
	err := c.do(ctx, http.MethodGet, "/apps/"+appID+"/rules", nil, &rules)
	return rules, err
}

// AppStats returns aggregated stats buckets for an app, most recent first.
// unit is "minute", "hour", "day", or "month".
func (c *Client) AppStats(ctx context.Context, appID, unit string, limit int) ([]StatsInterval, error) {
	var stats []StatsInterval
	path := fmt.Sprintf("/apps/%s/stats?unit=%s&limit=%d", appID, unit, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &stats)
	return stats, err
}

// AccountStats returns aggregated stats buckets for the whole account.
func (c *Client) AccountStats(ctx context.Context, accountID, unit string, limit int) ([]StatsInterval, error) {
	var stats []StatsInterval
	path := fmt.Sprintf("/accounts/%s/stats?unit=%s&limit=%d", accountID, unit, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &stats)
	return stats, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("control API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Err.Message != "" {
			return fmt.Errorf("control API: %s (status %d)", ae.Err.Message, resp.StatusCode)
		}
		return fmt.Errorf("control API: unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
