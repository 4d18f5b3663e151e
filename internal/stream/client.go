// Package stream implements the reconnecting market-data tick client.
//
// The client multiplexes one logical trade stream per instrument over a
// single combined-stream websocket connection and forwards parsed ticks to
// its sink. Connection loss triggers a reconnect after a fixed 5 second
// delay, retrying indefinitely until Stop; this fixed delay (no exponential
// backoff, no circuit breaker) is a deliberate simplicity choice inherited
// from the system design, not an oversight.
package stream

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"statarb-lab/internal/domain"
	"statarb-lab/internal/observability"
)

// State is the client connection state.
type State int32

// Client states. Stopped is terminal and reachable from any state.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateBackoff
	StateStopped
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateBackoff:
		return "backoff"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// Sink receives every successfully parsed tick. The tick store implements
// this; Write must never fail, per the store's contract.
type Sink interface {
	Write(ctx context.Context, t domain.Tick)
}

// Config configures the stream client.
type Config struct {
	// URL is the combined-stream base, e.g.
	// wss://fstream.binance.com/stream?streams=
	URL string

	// Symbols is the instrument set to subscribe to.
	Symbols []string

	// ReconnectDelay is the fixed wait between connection attempts.
	// Defaults to 5s.
	ReconnectDelay time.Duration

	// HandshakeTimeout bounds the websocket dial. Defaults to 10s.
	HandshakeTimeout time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.ReconnectDelay <= 0 {
		out.ReconnectDelay = 5 * time.Second
	}
	if out.HandshakeTimeout <= 0 {
		out.HandshakeTimeout = 10 * time.Second
	}
	return out
}

// StreamURL derives the subscription URL deterministically from the
// instrument set: one lowercased aggTrade topic per instrument, joined on
// one connection.
func (c *Config) StreamURL() string {
	topics := make([]string, len(c.Symbols))
	for i, sym := range c.Symbols {
		topics[i] = strings.ToLower(sym) + "@aggTrade"
	}
	return c.URL + strings.Join(topics, "/")
}

// Client is the reconnecting stream client. One Client owns one background
// read loop; Run blocks until Stop or context cancellation.
type Client struct {
	cfg     Config
	sink    Sink
	logger  *log.Logger
	metrics *observability.Metrics

	state   atomic.Int32
	stopped atomic.Bool
	done    chan struct{}

	connMu sync.Mutex
	conn   *websocket.Conn
}

// NewClient creates a stream client for the given instrument set and sink.
func NewClient(cfg Config, sink Sink, logger *log.Logger, metrics *observability.Metrics) *Client {
	return &Client{
		cfg:     cfg.withDefaults(),
		sink:    sink,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	// Stopped is terminal.
	if State(c.state.Load()) == StateStopped {
		return
	}
	c.state.Store(int32(s))
}

// Run drives the connect/read/backoff loop until Stop is called or ctx is
// cancelled. It retries indefinitely on transport faults; no failure mode
// in here terminates the process.
func (c *Client) Run(ctx context.Context) {
	url := c.cfg.StreamURL()
	logger := c.logger.WithField("url", url)

	for {
		if c.halted(ctx) {
			c.shutdown()
			return
		}

		c.setState(StateConnecting)
		if c.metrics != nil {
			c.metrics.Reconnects.Inc()
		}

		conn, err := c.dial(ctx, url)
		if err != nil {
			if c.halted(ctx) {
				c.shutdown()
				return
			}
			logger.WithError(err).Warn("stream connect failed")
			if !c.backoff(ctx) {
				c.shutdown()
				return
			}
			continue
		}

		c.setConn(conn)
		c.setState(StateConnected)
		logger.Info("stream connected")

		c.readLoop(ctx, conn)
		conn.Close()
		c.setConn(nil)

		if c.halted(ctx) {
			c.shutdown()
			return
		}
		logger.Warn("stream closed, reconnecting")
		if !c.backoff(ctx) {
			c.shutdown()
			return
		}
	}
}

// Stop signals the client to halt. The active connection is closed, which
// unblocks the read loop; an in-flight parse is allowed to complete. Safe
// to call more than once.
func (c *Client) Stop() {
	if c.stopped.Swap(true) {
		return
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
	}
	c.connMu.Unlock()
}

func (c *Client) dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: c.cfg.HandshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	return conn, err
}

func (c *Client) setConn(conn *websocket.Conn) {
	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
}

// readLoop consumes messages until the connection fails. Every message is
// parsed independently: a malformed one is logged and discarded without
// touching the connection.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if c.metrics != nil {
			c.metrics.StreamedBytes.Add(float64(len(message)))
		}

		tick, err := ParseMessage(message)
		if err != nil {
			if c.metrics != nil {
				c.metrics.ParseErrors.Inc()
			}
			c.logger.WithError(err).Debug("discarded malformed stream message")
			continue
		}
		if c.metrics != nil {
			c.metrics.TicksParsed.Inc()
		}
		c.sink.Write(ctx, tick)
	}
}

// backoff waits the fixed reconnect delay. Returns false when the client
// was stopped while waiting.
func (c *Client) backoff(ctx context.Context) bool {
	c.setState(StateBackoff)
	select {
	case <-time.After(c.cfg.ReconnectDelay):
		return true
	case <-c.done:
		return false
	case <-ctx.Done():
		return false
	}
}

func (c *Client) halted(ctx context.Context) bool {
	if c.stopped.Load() {
		return true
	}
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

func (c *Client) shutdown() {
	c.state.Store(int32(StateStopped))
	c.logger.Info("stream client stopped")
}
