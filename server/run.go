// File: server/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"context"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol"
)

// event is a decoded message waiting for the process phase.
type event struct {
	id  api.ConnID
	msg protocol.Message
}

// batch is what one ready client yielded in the read phase.
type batch struct {
	id   api.ConnID
	msgs []protocol.Message
}

// Tick runs one iteration of the serving loop: admit at most one pending
// client, flush queued output, poll all clients once, read and decode every
// ready client, then hand the decoded messages to h. Messages reach h in
// registry order, and each client's messages in the order they arrived.
//
// Clients whose peer closed, whose read or flush failed or whose framing is
// broken are removed. Failures while admitting a client are logged and do
// not end the tick; a failed client poll does and is returned.
func (s *Server) Tick(h Handler) error {
	if s.state != StateListening {
		return notListening("tick")
	}
	_, _, _ = s.AcceptPendingClients()
	s.Flush()

	res := s.CheckClientBuffers()
	switch res.Status {
	case api.PollError:
		return res.Err
	case api.PollReady:
		// Descending so removals do not shift positions still to visit.
		batches := make([]batch, 0, len(res.Ready))
		for i := len(res.Ready) - 1; i >= 0; i-- {
			if b, ok := s.service(res.Ready[i]); ok {
				batches = append(batches, b)
			}
		}
		for i := len(batches) - 1; i >= 0; i-- {
			for _, m := range batches[i].msgs {
				s.events.Add(event{id: batches[i].id, msg: m})
			}
		}
	}

	for s.events.Length() > 0 {
		ev := s.events.Remove().(event)
		if h != nil {
			h.ServeMessage(s, ev.id, ev.msg)
		}
	}
	return nil
}

// service reads and decodes the client at pos. Messages decoded before a
// framing error are still returned; the client itself is removed.
func (s *Server) service(pos int) (batch, bool) {
	c, err := s.clients.At(pos)
	if err != nil {
		return batch{}, false
	}
	n, err := s.read(c)
	switch {
	case api.IsWouldBlock(err):
		return batch{}, false
	case err != nil, n == 0:
		_ = s.RemoveClient(pos)
		return batch{}, false
	}
	msgs, err := s.decode(c)
	if err != nil {
		_ = s.RemoveClient(pos)
	}
	return batch{id: c.ID, msgs: msgs}, len(msgs) > 0
}

// Serve initializes the server if needed and runs Tick until ctx is done.
// It returns nil on cancellation and the first poll error otherwise. Close
// the server after Serve returns.
func (s *Server) Serve(ctx context.Context, h Handler) error {
	if s.state == StateUninitialized {
		if err := s.Init(); err != nil {
			return err
		}
	}
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("serve loop stopped")
			return nil
		default:
		}
		if err := s.Tick(h); err != nil {
			return err
		}
		if s.onTick != nil {
			s.onTick(s)
		}
	}
}
