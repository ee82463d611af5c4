// File: client/client.go
// Package client provides a blocking TCP connector speaking the server's
// framings: connect, send one framed message, receive raw bytes, close.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package client

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

// Config holds client parameters.
type Config struct {
	Family      tcp.Family
	BufferSize  int           // size of the receive buffer
	DialTimeout time.Duration // 0 = no timeout beyond the context
}

// DefaultConfig mirrors the server defaults.
func DefaultConfig() Config {
	return Config{
		Family:     tcp.FamilyIPv4,
		BufferSize: 4096,
	}
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.log = l.With().Str("component", "client").Logger()
	}
}

// Client is a single blocking connection. It keeps no framing state between
// calls and is not safe for concurrent use.
type Client struct {
	cfg  Config
	log  zerolog.Logger
	conn net.Conn
	buf  []byte
}

// New creates an unconnected Client.
func New(cfg Config, opts ...Option) *Client {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig().BufferSize
	}
	c := &Client{cfg: cfg, log: zerolog.Nop(), buf: make([]byte, cfg.BufferSize)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect resolves host and connects to it, blocking until the connection
// is established, ctx is done or the dial timeout expires.
func (c *Client) Connect(ctx context.Context, host string, port int) error {
	if c.conn != nil {
		return api.NewError(api.KindState, "connect", api.ErrInvalidState)
	}
	if port < 0 || port > 65535 {
		return api.NewError(api.KindConfig, "connect", api.ErrInvalidPort)
	}
	d := net.Dialer{Timeout: c.cfg.DialTimeout}
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	conn, err := d.DialContext(ctx, c.cfg.Family.Network(), addr)
	if err != nil {
		c.log.Error().Err(err).Str("remote", addr).Msg("connection failed")
		return api.OSError("connect", err)
	}
	c.conn = conn
	c.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("connected")
	return nil
}

// Send writes payload with delimiter framing. Payloads containing a
// reserved byte are rejected before anything is written.
func (c *Client) Send(payload []byte) error {
	frame, err := protocol.EncodeDelimited(payload)
	if err != nil {
		return err
	}
	return c.write(frame)
}

// SendString is Send for a string payload.
func (c *Client) SendString(s string) error {
	return c.Send([]byte(s))
}

// SendLengthPrefixed writes payload with length-prefixed framing. Any byte
// may appear in payload.
func (c *Client) SendLengthPrefixed(payload []byte) error {
	return c.write(protocol.EncodeLengthPrefixed(payload))
}

// Receive performs one blocking read and returns a copy of what arrived.
// A closed peer yields an error wrapping io.EOF.
func (c *Client) Receive() ([]byte, error) {
	if c.conn == nil {
		return nil, api.NewError(api.KindClosed, "receive", api.ErrClosed)
	}
	n, err := c.conn.Read(c.buf)
	if n > 0 {
		c.log.Debug().Int("bytes", n).Msg("bytes received")
		return append([]byte(nil), c.buf[:n]...), nil
	}
	if errors.Is(err, io.EOF) {
		return nil, api.NewError(api.KindClosed, "receive", err)
	}
	return nil, api.OSError("receive", err)
}

// SetDeadline bounds the next Send or Receive.
func (c *Client) SetDeadline(t time.Time) error {
	if c.conn == nil {
		return api.NewError(api.KindClosed, "deadline", api.ErrClosed)
	}
	return c.conn.SetDeadline(t)
}

// Close closes the connection. Closing an unconnected client is a no-op.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	c.log.Info().Msg("connection closed")
	return err
}

func (c *Client) write(frame []byte) error {
	if c.conn == nil {
		return api.NewError(api.KindClosed, "send", api.ErrClosed)
	}
	if _, err := c.conn.Write(frame); err != nil {
		c.log.Error().Err(err).Msg("send failed")
		return api.OSError("send", err)
	}
	c.log.Debug().Int("bytes", len(frame)).Msg("frame sent")
	return nil
}
