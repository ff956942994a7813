// Package realtime provides the Beam realtime pub/sub client used by the
// publish, subscribe, logs, and bench commands.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const defaultRealtimeURL = "wss://realtime.beam.sh/connect"

// Protocol frame actions.
const (
	actionHeartbeat = 0
	actionConnected = 1
	actionError     = 2
	actionAttach    = 3
	actionAttached  = 4
	actionDetach    = 5
	actionMessage   = 6
)

// Message is a single channel message.
type Message struct {
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
	ClientID  string          `json:"clientId,omitempty"`
	Timestamp int64           `json:"timestamp,omitempty"` // ms since epoch
}

// Time returns the message timestamp as a time.Time.
func (m Message) Time() time.Time {
	return time.UnixMilli(m.Timestamp)
}

type frame struct {
	Action   int       `json:"action"`
	Channel  string    `json:"channel,omitempty"`
	Messages []Message `json:"messages,omitempty"`
	Error    *struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}

// Client is a websocket connection to the Beam realtime service. It serves
// one command invocation at a time: connect, attach to channels, consume
// messages until the context is cancelled, close.
type Client struct {
	URL string
	Key string

	mu     sync.Mutex
	conn   *websocket.Conn
	subs   map[string]chan Message
	closed bool
	done   chan struct{}
}

// NewClient creates a realtime client authenticating with an API key.
// BEAM_REALTIME_URL overrides the production endpoint.
func NewClient(key string) *Client {
	u := os.Getenv("BEAM_REALTIME_URL")
	if u == "" {
		u = defaultRealtimeURL
	}
	return &Client{URL: u, Key: key, subs: make(map[string]chan Message), done: make(chan struct{})}
}

// Connect dials the realtime endpoint and waits for the CONNECTED frame.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.URL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("key", c.Key)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("realtime connect: %w", err)
	}

	var f frame
	if err := conn.ReadJSON(&f); err != nil {
		conn.Close()
		return fmt.Errorf("realtime handshake: %w", err)
	}
	if f.Action != actionConnected {
		conn.Close()
		if f.Error != nil {
			return fmt.Errorf("realtime connect rejected: %s", f.Error.Message)
		}
		return fmt.Errorf("realtime connect rejected: unexpected action %d", f.Action)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop()
	return nil
}

// readLoop fans incoming MESSAGE frames out to the per-channel subscriber
// channels. It exits when the connection closes, closing every subscriber
// channel so consumers unblock.
func (c *Client) readLoop() {
	for {
		var f frame
		c.mu.Lock()
		conn := c.conn
		c.mu.Unlock()
		if conn == nil {
			break
		}
		if err := conn.ReadJSON(&f); err != nil {
			break
		}
		switch f.Action {
		case actionMessage:
			c.mu.Lock()
			ch := c.subs[f.Channel]
			c.mu.Unlock()
			if ch == nil {
				continue
			}
			for _, msg := range f.Messages {
				ch <- msg
			}
		case actionHeartbeat, actionAttached:
			// Nothing to deliver.
		}
	}

	c.mu.Lock()
	for name, ch := range c.subs {
		close(ch)
		delete(c.subs, name)
	}
	c.mu.Unlock()

	// A peer-side close counts as a session close too, so goroutines
	// waiting on the done channel unblock.
	c.Close()
}

// Publish sends a message on a channel over the open connection.
func (c *Client) Publish(ctx context.Context, channel, name string, data []byte) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return fmt.Errorf("realtime publish: not connected")
	}
	f := frame{
		Action:   actionMessage,
		Channel:  channel,
		Messages: []Message{{Name: name, Data: json.RawMessage(data)}},
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetWriteDeadline(deadline)
	}
	return conn.WriteJSON(f)
}

// Subscribe attaches to a channel and returns a stream of its messages. The
// stream is closed when ctx is cancelled or the connection drops; callers
// should range over it.
func (c *Client) Subscribe(ctx context.Context, channel string) (<-chan Message, error) {
	c.mu.Lock()
	conn := c.conn
	if conn == nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("realtime subscribe: not connected")
	}
	if _, ok := c.subs[channel]; ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("realtime subscribe: already attached to %q", channel)
	}
	ch := make(chan Message, 64)
	c.subs[channel] = ch
	c.mu.Unlock()

	if err := conn.WriteJSON(frame{Action: actionAttach, Channel: channel}); err != nil {
		c.mu.Lock()
		delete(c.subs, channel)
		c.mu.Unlock()
		return nil, fmt.Errorf("realtime attach %q: %w", channel, err)
	}

	// Cancellation path: closing the connection unblocks the read loop,
	// which closes every subscriber channel. The done channel lets the
	// goroutine exit when the peer closes the connection first.
	go func() {
		select {
		case <-ctx.Done():
			c.Close()
		case <-c.done:
		}
	}()

	return ch, nil
}

// Close tears the connection down. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
