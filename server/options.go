// File: server/options.go
// Package server defines functional options for the Server.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/reactor"
)

// Option customizes server initialization.
type Option func(*Server)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) {
		s.log = l.With().Str("component", "server").Logger()
	}
}

// WithMetrics records server activity in m.
func WithMetrics(m *control.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithWaiter replaces the OS readiness primitive, mainly for tests.
func WithWaiter(w reactor.Waiter) Option {
	return func(s *Server) {
		s.waiter = w
	}
}

// WithTickHook calls fn on the serving goroutine after every Tick driven by
// Serve.
func WithTickHook(fn func(*Server)) Option {
	return func(s *Server) {
		s.onTick = fn
	}
}
