package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/BioHazard786/diceroom/cli/internal/dns"
	"github.com/BioHazard786/diceroom/cli/internal/feed"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	dialTimeout    = 10 * time.Second
)

// CloseInfo is the close frame the server ended the session with.
type CloseInfo struct {
	Code int
	Text string
}

// Client manages the WebSocket connection to the dice server.
type Client struct {
	conn      *websocket.Conn
	serverURL string
	name      string
	incoming  chan string
	outgoing  chan string
	done      chan struct{}
	closeOnce sync.Once

	mu        sync.Mutex
	closeInfo *CloseInfo
}

// NewClient creates a client that joins as name.
func NewClient(serverURL, name string) *Client {
	return &Client{
		serverURL: serverURL,
		name:      name,
		incoming:  make(chan string, 32),
		outgoing:  make(chan string, 8),
		done:      make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection, sending the player name in
// the Name header.
func (c *Client) Connect(ctx context.Context) error {
	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Falls back to public DNS when the system resolver fails.
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: dialTimeout,
		NetDialContext:   dns.NewResolver().DialContext,
	}

	header := http.Header{}
	header.Set("Name", c.name)

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return WrapError("connect to server", err, resp.Status)
		}
		return NewError("connect to server", err)
	}

	c.conn = conn

	c.conn.SetReadLimit(maxMessageSize)

	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	slog.Debug("Connected", "server", c.serverURL, "name", c.name)

	go c.readPump()
	go c.writePump()

	return nil
}

// Join waits for the server's first line. A full room or a close before
// any line is an admission failure.
func (c *Client) Join(ctx context.Context) (string, error) {
	select {
	case line, ok := <-c.incoming:
		if !ok {
			return "", c.rejection()
		}
		if line == feed.RoomFullText {
			return "", WrapError("join room", ErrRoomFull, line)
		}
		return line, nil
	case <-ctx.Done():
		return "", WrapError("join room", ErrTimeout, ctx.Err().Error())
	}
}

func (c *Client) rejection() error {
	if info := c.CloseInfo(); info != nil {
		return WrapError("join room", ErrRejected, fmt.Sprintf("%d %s", info.Code, info.Text))
	}
	return NewError("join room", ErrDisconnected)
}

// readPump reads text frames from the WebSocket connection.
func (c *Client) readPump() {
	defer func() {
		c.conn.Close()
		close(c.incoming)
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			c.recordReadError(err)
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		select {
		case c.incoming <- string(data):
		case <-c.done:
			return
		}
	}
}

func (c *Client) recordReadError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		c.closeInfo = &CloseInfo{Code: ce.Code, Text: ce.Text}
	}
	slog.Debug("Read loop ended", "error", err)
}

// writePump writes text frames to the WebSocket connection and sends periodic pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.Close()
	}()

	for {
		select {
		case text := <-c.outgoing:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"))
			return
		}
	}
}

// Send queues a text frame for the server.
func (c *Client) Send(text string) error {
	if c.conn == nil {
		return ErrNotConnected
	}
	select {
	case <-c.done:
		return ErrDisconnected
	default:
	}
	select {
	case c.outgoing <- text:
		return nil
	case <-c.done:
		return ErrDisconnected
	}
}

// Incoming returns the channel of server lines. It is closed when the
// connection ends.
func (c *Client) Incoming() <-chan string {
	return c.incoming
}

// CloseInfo returns the server's close frame, or nil if the connection did
// not end with one.
func (c *Client) CloseInfo() *CloseInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeInfo
}

// Close leaves the room with a normal closure.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}
