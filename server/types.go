// File: server/types.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol"
	"github.com/momentics/hioload-tcp/reactor"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

// MaxPort is the highest accepted listen port.
const MaxPort = 65534

// DefaultMaxPending bounds the per-client outbound queue.
const DefaultMaxPending = 1 << 20

// Config holds all server-side configuration parameters.
type Config struct {
	Port        int           // listen port, 0..65534; 0 picks an ephemeral port
	Family      tcp.Family    // address family
	SocketType  string        // only "stream"
	Protocol    int           // 0 = OS default for the socket type
	BindAddress string        // "any" or an IP literal
	Backlog     int           // pending, not yet accepted, connection attempts
	BufferSize  int           // per-connection receive buffer in bytes
	PollTimeout time.Duration // bounded wait of each readiness poll
	Framing     protocol.Framing
	MaxFrame    int // largest accepted length-prefixed payload; 0 = what fits in BufferSize
	MaxClients  int // 0 = unlimited
	MaxPending  int // outbound bytes queued per client while its socket is full; 0 = no queue
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		Port:        9999,
		Family:      tcp.FamilyIPv4,
		SocketType:  tcp.SockStream,
		Protocol:    0,
		BindAddress: "any",
		Backlog:     4,
		BufferSize:  4096,
		PollTimeout: reactor.DefaultPollTimeout,
		Framing:     protocol.FramingLength,
		MaxPending:  DefaultMaxPending,
	}
}

// Validate checks every field before any socket is created.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > MaxPort {
		return api.NewError(api.KindConfig, "validate", fmt.Errorf("%w: %d", api.ErrInvalidPort, c.Port))
	}
	switch {
	case c.SocketType != "" && c.SocketType != tcp.SockStream:
		return invalid("unsupported socket type %q", c.SocketType)
	case c.Protocol < 0:
		return invalid("protocol must not be negative")
	case c.Backlog < 0:
		return invalid("backlog must not be negative")
	case c.BufferSize <= 0:
		return invalid("buffer size must be positive")
	case c.PollTimeout < 0:
		return invalid("poll timeout must not be negative")
	case c.MaxFrame < 0:
		return invalid("max frame must not be negative")
	case c.MaxClients < 0:
		return invalid("max clients must not be negative")
	case c.MaxPending < 0:
		return invalid("max pending must not be negative")
	case !c.Family.Valid():
		return invalid("unknown address family %d", int(c.Family))
	case c.Framing != protocol.FramingLength && c.Framing != protocol.FramingDelimiter:
		return invalid("unknown framing %d", int(c.Framing))
	}
	if c.Framing == protocol.FramingLength {
		fit := defaultMaxFrame(c.BufferSize)
		if fit < 1 {
			return invalid("buffer size %d cannot hold a length-prefixed frame", c.BufferSize)
		}
		if c.MaxFrame > fit {
			return invalid("max frame %d does not fit in a %d byte buffer (at most %d)", c.MaxFrame, c.BufferSize, fit)
		}
	}
	if _, err := tcp.BindIP(c.Family, c.BindAddress); err != nil {
		return err
	}
	return nil
}

func (c Config) maxFrame() int {
	if c.MaxFrame > 0 {
		return c.MaxFrame
	}
	return defaultMaxFrame(c.BufferSize)
}

func invalid(format string, args ...any) error {
	return api.NewError(api.KindConfig, "validate", fmt.Errorf("%w: "+format, append([]any{api.ErrInvalidConfig}, args...)...))
}

// State is the lifecycle state of a Server.
type State int

const (
	StateUninitialized State = iota
	StateCreated
	StateBound
	StateListening
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateBound:
		return "bound"
	case StateListening:
		return "listening"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}
