// Package chat is the client for the real-time chat and notification feed.
//
// A connection is opened per room at <ws root>/<room>/?token=<access token>.
// The server pushes JSON frames; the client answers heartbeats, surfaces
// error frames and delivers everything else to the caller.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/autocare/autocare/internal/api"
	"github.com/autocare/autocare/internal/errors"
	"github.com/autocare/autocare/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024

	// MaxMessageLength is the longest message body accepted by Send.
	MaxMessageLength = 5000
)

// Close codes sent by the server.
const (
	CloseAuthFailed  = 4001
	CloseInvalidRoom = 4002
)

// Frame types.
const (
	TypeMessage           = "message"
	TypeHeartbeat         = "heartbeat"
	TypeHeartbeatResponse = "heartbeat_response"
)

// ErrClosed is returned by Send and Receive once the connection is closed.
var ErrClosed = errors.New("chat connection is closed")

// Message is a frame received from the feed.
type Message struct {
	Type       string `json:"type,omitempty"`
	Message    string `json:"message,omitempty"`
	SenderID   api.ID `json:"sender_id,omitempty"`
	ReceiverID api.ID `json:"receiver_id,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
	MessageID  api.ID `json:"message_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

type outgoing struct {
	Message    string `json:"message"`
	SenderID   api.ID `json:"sender_id"`
	ReceiverID api.ID `json:"receiver_id"`
}

type heartbeatResponse struct {
	Type      string `json:"type"`
	Timestamp any    `json:"timestamp,omitempty"`
}

// RemoteError is an error frame pushed by the server. The connection stays open.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "chat: " + e.Message
}

// Room returns the room shared by two users: the smaller id first.
// Numeric ids compare numerically.
func Room(a, b api.ID) string {
	if lessID(b, a) {
		a, b = b, a
	}
	return fmt.Sprintf("%s_%s", a, b)
}

func lessID(a, b api.ID) bool {
	if len(a) != len(b) && isDigits(string(a)) && isDigits(string(b)) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Dialer opens feed connections under a websocket root such as
// ws://127.0.0.1:8000/ws/chat/.
type Dialer struct {
	root   string
	dialer *websocket.Dialer
	logger *logging.Logger
}

// DialerOption configures a Dialer.
type DialerOption func(*Dialer)

// WithLogger sets the logger used for connection events.
func WithLogger(logger *logging.Logger) DialerOption {
	return func(d *Dialer) {
		if logger != nil {
			d.logger = logger.WithComponent("chat")
		}
	}
}

// WithHandshakeTimeout bounds the websocket handshake.
func WithHandshakeTimeout(timeout time.Duration) DialerOption {
	return func(d *Dialer) {
		d.dialer.HandshakeTimeout = timeout
	}
}

// NewDialer returns a Dialer for root, which must be a ws:// or wss:// URL.
func NewDialer(root string, opts ...DialerOption) (*Dialer, error) {
	u, err := url.Parse(root)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return nil, fmt.Errorf("%w: chat url must be ws:// or wss://, got %q", errors.ErrInvalidInput, root)
	}
	if !strings.HasSuffix(root, "/") {
		root += "/"
	}
	d := &Dialer{
		root: root,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// URL returns the connection URL for room authenticated by token.
func (d *Dialer) URL(room, token string) string {
	return d.root + url.PathEscape(room) + "/?token=" + url.QueryEscape(token)
}

// Dial connects to room as userID.
func (d *Dialer) Dial(ctx context.Context, room string, userID api.ID, token string) (*Conn, error) {
	if token == "" {
		return nil, errors.Wrap(errors.ErrNotAuthenticated, "chat")
	}
	ws, resp, err := d.dialer.DialContext(ctx, d.URL(room, token), nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, errors.NewSessionExpiredError(err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errors.NewNetworkError(err).WithOperation("chat")
	}
	d.logger.Info("chat connected", "room", room)
	return newConn(ws, userID, d.logger.With("room", room)), nil
}

// Conn is an open feed connection. Receive must be called from one goroutine;
// Send and Close are safe for concurrent use.
type Conn struct {
	ws     *websocket.Conn
	userID api.ID
	logger *logging.Logger

	incoming chan Message
	done     chan struct{}
	readDone chan struct{}
	pingDone chan struct{}

	writeMu sync.Mutex

	mu      sync.Mutex
	closed  bool
	readErr error
}

func newConn(ws *websocket.Conn, userID api.ID, logger *logging.Logger) *Conn {
	c := &Conn{
		ws:       ws,
		userID:   userID,
		logger:   logger,
		incoming: make(chan Message, 64),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
		pingDone: make(chan struct{}),
	}
	go c.readPump()
	go c.pingPump()
	return c
}

func (c *Conn) readPump() {
	defer close(c.readDone)
	defer close(c.incoming)

	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			c.setReadErr(err)
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.logger.Warn("dropping malformed chat frame", "error", err)
			continue
		}
		if msg.Type == TypeHeartbeat {
			c.answerHeartbeat(data)
			continue
		}

		select {
		case c.incoming <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) answerHeartbeat(data []byte) {
	var hb struct {
		Timestamp any `json:"timestamp"`
	}
	_ = json.Unmarshal(data, &hb)
	if err := c.write(heartbeatResponse{Type: TypeHeartbeatResponse, Timestamp: hb.Timestamp}); err != nil {
		c.logger.Debug("heartbeat response failed", "error", err)
	}
}

// pingPump keeps the connection alive until it is closed or the read side
// ends.
func (c *Conn) pingPump() {
	defer close(c.pingDone)
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-c.readDone:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (c *Conn) setReadErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		c.readErr = ErrClosed
		return
	}
	switch {
	case websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway):
		c.readErr = ErrClosed
	case websocket.IsCloseError(err, CloseAuthFailed):
		c.readErr = errors.NewSessionExpiredError(err)
	case websocket.IsCloseError(err, CloseInvalidRoom):
		c.readErr = fmt.Errorf("%w: invalid chat room", errors.ErrInvalidInput)
	default:
		c.logger.Warn("chat connection lost", "error", err)
		c.readErr = errors.NewNetworkError(err).WithOperation("chat")
	}
}

// Receive blocks until the next message arrives. Error frames are returned
// as *RemoteError. Once the connection ends Receive returns ErrClosed after a
// normal closure, or the error that ended it.
func (c *Conn) Receive(ctx context.Context) (Message, error) {
	select {
	case <-ctx.Done():
		return Message{}, ctx.Err()
	case msg, ok := <-c.incoming:
		if !ok {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.readErr == nil {
				return Message{}, ErrClosed
			}
			return Message{}, c.readErr
		}
		if msg.Error != "" {
			return msg, &RemoteError{Message: msg.Error}
		}
		return msg, nil
	}
}

// Send posts text to receiver.
func (c *Conn) Send(text string, receiver api.ID) error {
	switch {
	case strings.TrimSpace(text) == "":
		return fmt.Errorf("%w: message content is required", errors.ErrInvalidInput)
	case len(text) > MaxMessageLength:
		return fmt.Errorf("%w: message content too long", errors.ErrInvalidInput)
	case receiver == "":
		return fmt.Errorf("%w: receiver is required", errors.ErrInvalidInput)
	}
	if c.isClosed() {
		return ErrClosed
	}
	return c.write(outgoing{Message: text, SenderID: c.userID, ReceiverID: receiver})
}

func (c *Conn) write(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.isClosed() {
		return ErrClosed
	}
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(v); err != nil {
		return errors.NewNetworkError(err).WithOperation("chat")
	}
	return nil
}

func (c *Conn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed || c.readErr != nil
}

// Close sends a normal closure and releases the connection. It is safe to
// call more than once.
func (c *Conn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	close(c.done)

	c.writeMu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing connection"),
		time.Now().Add(writeWait))
	c.writeMu.Unlock()

	c.logger.Debug("chat closed")
	return c.ws.Close()
}
