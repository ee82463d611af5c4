// File: server/handler.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol"
)

// Handler processes one decoded message from a client.
type Handler interface {
	ServeMessage(s *Server, id api.ConnID, msg protocol.Message)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(s *Server, id api.ConnID, msg protocol.Message)

// ServeMessage calls f.
func (f HandlerFunc) ServeMessage(s *Server, id api.ConnID, msg protocol.Message) {
	f(s, id, msg)
}

// Middleware augments a Handler.
type Middleware func(Handler) Handler

// NewHandlerChain applies middleware in order: first in slice is outermost.
func NewHandlerChain(base Handler, mw ...Middleware) Handler {
	h := base
	for i := len(mw) - 1; i >= 0; i-- {
		h = mw[i](h)
	}
	return h
}

// Echo writes every message back to its sender with the server's framing.
// A sender that stops reading is dropped once its queued output passes
// Config.MaxPending.
func Echo() Handler {
	return HandlerFunc(func(s *Server, id api.ConnID, msg protocol.Message) {
		_ = s.WriteID(id, msg.Payload)
	})
}
