package room

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// Options tunes a Client's socket handling.
type Options struct {
	// Time allowed to write a message to the peer.
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer.
	PongWait time.Duration

	// Send pings to peer with this period. Must be less than PongWait.
	PingPeriod time.Duration

	// Maximum message size allowed from peer.
	MaxMessageSize int64

	// Number of outbound texts that may be queued before sends are dropped.
	SendBuffer int
}

// DefaultOptions returns the socket settings used when none are configured.
func DefaultOptions() Options {
	pongWait := 60 * time.Second
	return Options{
		WriteWait:      10 * time.Second,
		PongWait:       pongWait,
		PingPeriod:     (pongWait * 9) / 10,
		MaxMessageSize: 4 * 1024,
		SendBuffer:     256,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.WriteWait <= 0 {
		o.WriteWait = d.WriteWait
	}
	if o.PongWait <= 0 {
		o.PongWait = d.PongWait
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = (o.PongWait * 9) / 10
	}
	if o.MaxMessageSize <= 0 {
		o.MaxMessageSize = d.MaxMessageSize
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = d.SendBuffer
	}
	return o
}

// Client is a participant's websocket connection. It implements Conn.
type Client struct {
	conn   *websocket.Conn
	opts   Options
	logger *slog.Logger

	// send is a buffered channel of outbound texts. WritePump is its only
	// reader and the only goroutine that writes data frames.
	send       chan string
	mu         sync.Mutex
	sendClosed bool

	state atomic.Int32
}

// NewClient wraps an upgraded connection. The client starts out open.
func NewClient(conn *websocket.Conn, opts Options, logger *slog.Logger) *Client {
	opts = opts.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		conn:   conn,
		opts:   opts,
		logger: logger,
		send:   make(chan string, opts.SendBuffer),
	}
	c.state.Store(int32(StateOpen))
	return c
}

// State returns the connection's lifecycle state.
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

func (c *Client) setState(s ConnState) {
	c.state.Store(int32(s))
}

// Send queues text for WritePump. It never blocks.
func (c *Client) Send(text string) error {
	if c.State() != StateOpen {
		return ErrConnNotOpen
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sendClosed {
		return ErrConnNotOpen
	}

	select {
	case c.send <- text:
		return nil
	default:
		return ErrSendBufferFull
	}
}

// Close stops accepting texts. WritePump drains what is queued, sends a
// close frame and closes the socket.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sendClosed {
		return nil
	}
	c.sendClosed = true
	close(c.send)
	c.state.CompareAndSwap(int32(StateOpen), int32(StateClosing))
	return nil
}

// Reject reports a refused admission and closes the socket. It must only be
// called before Start.
func (c *Client) Reject(rej Rejection) error {
	c.setState(StateClosing)
	defer func() {
		c.conn.Close()
		c.setState(StateClosed)
	}()

	deadline := time.Now().Add(c.opts.WriteWait)
	if rej.Notice != "" {
		c.conn.SetWriteDeadline(deadline)
		if err := c.conn.WriteMessage(websocket.TextMessage, []byte(rej.Notice)); err != nil {
			return WrapError("reject", ErrTransportFailure, err.Error())
		}
	}

	msg := websocket.FormatCloseMessage(rej.Code, rej.Reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, deadline); err != nil {
		return WrapError("reject", ErrTransportFailure, err.Error())
	}
	return nil
}

// Start runs the client's pumps for participant p.
func (c *Client) Start(hub *Hub, p *Participant) {
	go c.WritePump()
	go c.ReadPump(hub, p)
}

// ReadPump pumps texts from the websocket connection to the hub.
//
// The application runs ReadPump in a per-connection goroutine. The application
// ensures that there is at most one reader on a connection by executing all
// reads from this goroutine.
func (c *Client) ReadPump(hub *Hub, p *Participant) {
	var cause error

	// When this function exits (e.g., connection closes), the hub unseats
	// the participant and closes the client.
	defer func() {
		hub.Leave(p.ID, c, cause)
	}()

	c.conn.SetReadLimit(c.opts.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.opts.PongWait))
		return nil
	})

	// Echo the peer's close status and description back.
	c.conn.SetCloseHandler(func(code int, text string) error {
		c.setState(StateClosing)
		msg := websocket.FormatCloseMessage(code, text)
		err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.opts.WriteWait))
		if err != nil && !errors.Is(err, websocket.ErrCloseSent) {
			return err
		}
		return nil
	})

	for {
		mt, data, err := c.conn.ReadMessage()
		if err != nil {
			cause = c.receiveFailure(p, err)
			return
		}
		if mt != websocket.TextMessage {
			continue
		}

		if err := hub.Dispatch(p.ID, strings.ToValidUTF8(string(data), "\uFFFD")); err != nil {
			return
		}
	}
}

// receiveFailure classifies the error that ended ReadPump. A close frame
// from the peer is a clean departure and yields nil.
func (c *Client) receiveFailure(p *Participant, err error) error {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure {
		c.logger.Debug("Peer closed connection",
			"participant", p.ID, "code", closeErr.Code, "text", closeErr.Text)
		return nil
	}

	if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
		c.logger.Warn("Receive failed", "participant", p.ID, "error", err)
	}
	return NewParticipantError("receive", p.Name, errors.Join(ErrTransportFailure, err))
}

// WritePump pumps texts from the hub to the websocket connection.
//
// A goroutine running WritePump is started for each connection. The
// application ensures that there is at most one writer to a connection by
// executing all writes from this goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.setState(StateClosed)
	}()

	for {
		select {
		case text, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if !ok {
				// The hub closed the channel.
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				c.conn.WriteMessage(websocket.CloseMessage, msg)
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, []byte(text)); err != nil {
				c.logger.Debug("Write failed", "error", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
