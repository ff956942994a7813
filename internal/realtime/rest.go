package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultRESTURL = "https://rest.beam.sh"

// REST is the data-plane HTTP client for operations that do not need a
// persistent connection: one-shot publish, history, channel enumeration,
// occupancy, and presence.
type REST struct {
	BaseURL    string
	Key        string
	HTTPClient *http.Client
}

// NewREST creates a data-plane client authenticating with an API key of the
// form "keyId:keySecret". BEAM_REST_URL overrides the production endpoint.
func NewREST(key string) *REST {
	base := os.Getenv("BEAM_REST_URL")
	if base == "" {
		base = defaultRESTURL
	}
	return &REST{
		BaseURL:    base,
		Key:        key,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Occupancy describes who currently holds a channel open.
type Occupancy struct {
	Connections     int `json:"connections"`
	Publishers      int `json:"publishers"`
	Subscribers     int `json:"subscribers"`
	PresenceMembers int `json:"presenceMembers"`
}

// Member is one entry in a channel's presence set.
type Member struct {
	ClientID string          `json:"clientId"`
	Data     json.RawMessage `json:"data,omitempty"`
	Action   string          `json:"action,omitempty"`
}

// ChannelDetail is returned by channel enumeration.
type ChannelDetail struct {
	Name      string    `json:"name"`
	Occupancy Occupancy `json:"occupancy"`
}

// Publish sends a single message to a channel.
func (r *REST) Publish(ctx context.Context, channel, name string, data []byte) error {
	body := map[string]any{"name": name, "data": json.RawMessage(data)}
	return r.do(ctx, http.MethodPost, "/channels/"+url.PathEscape(channel)+"/messages", body, nil)
}

// History returns the most recent messages of a channel, newest first.
func (r *REST) History(ctx context.Context, channel string, limit int) ([]Message, error) {
	var msgs []Message
	path := fmt.Sprintf("/channels/%s/messages?limit=%d&direction=backwards",
		url.PathEscape(channel), limit)
	err := r.do(ctx, http.MethodGet, path, nil, &msgs)
	return msgs, err
}

// ListChannels enumerates active channels, optionally filtered by prefix.
func (r *REST) ListChannels(ctx context.Context, prefix string, limit int) ([]ChannelDetail, error) {
	var channels []ChannelDetail
	path := fmt.Sprintf("/channels?limit=%d", limit)
	if prefix != "" {
		path += "&prefix=" + url.QueryEscape(prefix)
	}
	err := r.do(ctx, http.MethodGet, path, nil, &channels)
	return channels, err
}

// ChannelOccupancy returns the live occupancy metrics of a channel.
func (r *REST) ChannelOccupancy(ctx context.Context, channel string) (*Occupancy, error) {
	var detail ChannelDetail
	err := r.do(ctx, http.MethodGet, "/channels/"+url.PathEscape(channel), nil, &detail)
	if err != nil {
		return nil, err
	}
	return &detail.Occupancy, nil
}

// PushPublish delivers a push notification to every device subscribed to a
// channel.
func (r *REST) PushPublish(ctx context.Context, channel, title, body string) error {
	payload := map[string]any{
		"recipient": map[string]string{"channel": channel},
		"push": map[string]any{
			"notification": map[string]string{"title": title, "body": body},
		},
	}
	return r.do(ctx, http.MethodPost, "/push/publish", payload, nil)
}

// PushSubscription is one channel-to-device push binding.
type PushSubscription struct {
	Channel  string `json:"channel"`
	DeviceID string `json:"deviceId,omitempty"`
	ClientID string `json:"clientId,omitempty"`
}

// ListPushSubscriptions enumerates push subscriptions, optionally filtered
// by channel.
func (r *REST) ListPushSubscriptions(ctx context.Context, channel string, limit int) ([]PushSubscription, error) {
	var subs []PushSubscription
	path := fmt.Sprintf("/push/channelSubscriptions?limit=%d", limit)
	if channel != "" {
		path += "&channel=" + url.QueryEscape(channel)
	}
	err := r.do(ctx, http.MethodGet, path, nil, &subs)
	return subs, err
}

// Presence returns the current presence set of a channel.
func (r *REST) Presence(ctx context.Context, channel string) ([]Member, error) {
	var members []Member
	err := r.do(ctx, http.MethodGet, "/channels/"+url.PathEscape(channel)+"/presence", nil, &members)
	return members, err
}

func (r *REST) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, reader)
	if err != nil {
		return err
	}
	keyID, secret, _ := strings.Cut(r.Key, ":")
	req.SetBasicAuth(keyID, secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("beam API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(data))
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("beam API: %s (status %d)", msg, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
