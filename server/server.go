// File: server/server.go
// Package server implements the single-threaded socket server controller:
// create, bind and listen on a stream socket, admit one pending client per
// call, poll every client for input with a bounded wait, and turn buffered
// bytes into framed messages.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package server

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/eapache/queue"
	"github.com/rs/zerolog"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/control"
	"github.com/momentics/hioload-tcp/internal/registry"
	"github.com/momentics/hioload-tcp/pool"
	"github.com/momentics/hioload-tcp/protocol"
	"github.com/momentics/hioload-tcp/reactor"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

// Server owns the listening socket and every accepted client.
//
// Clients can be addressed by position or by api.ConnID. A position is an
// index into the live registry in acceptance order and is only valid until
// the next removal, which shifts every later position down by one. Keep a
// ConnID when a client must be found again later.
//
// A Server is not safe for concurrent use. All calls, including Close, must
// come from the goroutine driving it.
type Server struct {
	cfg     Config
	log     zerolog.Logger
	metrics *control.Metrics
	waiter  reactor.Waiter
	mux     *reactor.Multiplexer
	ln      *tcp.Listener
	clients *registry.Registry
	slabs   *pool.BytePool
	fds     []int
	events  *queue.Queue
	state   State
	onTick  func(*Server)
}

// New constructs a Server. No socket is created until Init.
func New(cfg Config, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		log:     zerolog.Nop(),
		clients: registry.New(),
		events:  queue.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	var mopts []reactor.Option
	if s.waiter != nil {
		mopts = append(mopts, reactor.WithWaiter(s.waiter))
	}
	s.mux = reactor.New(cfg.PollTimeout, mopts...)
	return s
}

// Init validates the configuration, then creates, binds and listens in that
// order. The first failing step aborts initialization and its error is
// returned. An out-of-range port fails with api.ErrInvalidPort before any
// socket exists; OS failures carry their errno (see api.ErrnoOf). After a
// failed Init the server is back in StateUninitialized.
func (s *Server) Init() error {
	if s.state != StateUninitialized {
		return api.NewError(api.KindState, "init", fmt.Errorf("%w: server is %s", api.ErrInvalidState, s.state))
	}
	if err := s.cfg.Validate(); err != nil {
		s.log.Error().Err(err).Int("port", s.cfg.Port).Msg("invalid configuration")
		return err
	}

	s.slabs = pool.NewBytePool(s.cfg.BufferSize)
	s.ln = tcp.NewListener(tcp.ListenConfig{
		Family:   s.cfg.Family,
		Protocol: s.cfg.Protocol,
		Address:  s.cfg.BindAddress,
		Port:     s.cfg.Port,
		Backlog:  s.cfg.Backlog,
	})
	steps := []struct {
		name string
		run  func() error
		next State
	}{
		{"create", s.ln.Create, StateCreated},
		{"bind", s.ln.Bind, StateBound},
		{"listen", s.ln.Listen, StateListening},
	}
	for _, step := range steps {
		if err := step.run(); err != nil {
			s.metrics.Error(step.name)
			logErr(s.log.Error(), err).
				Str("step", step.name).
				Int("port", s.cfg.Port).
				Msg("socket setup failed")
			_ = s.ln.Close()
			s.state = StateUninitialized
			return err
		}
		s.state = step.next
	}

	s.log.Info().
		Int("port", s.Port()).
		Str("family", s.cfg.Family.String()).
		Str("framing", s.cfg.Framing.String()).
		Msg("socket configured, listening")
	return nil
}

// State reports the lifecycle state.
func (s *Server) State() State { return s.state }

// Config returns the configuration the server was built with.
func (s *Server) Config() Config { return s.cfg }

// Port returns the bound port once listening, otherwise the configured one.
func (s *Server) Port() int {
	if s.ln == nil || s.ln.FD() < 0 {
		return s.cfg.Port
	}
	p, err := s.ln.Port()
	if err != nil {
		return s.cfg.Port
	}
	return p
}

// SetPollTimeout changes the bounded wait of subsequent polls. It may be
// called from another goroutine.
func (s *Server) SetPollTimeout(d time.Duration) error {
	return s.mux.SetTimeout(d)
}

// PollTimeout reports the current bounded wait.
func (s *Server) PollTimeout() time.Duration { return s.mux.Timeout() }

// AcceptPendingClients polls the listening socket and, when a connection
// attempt is pending, accepts exactly one. It does not drain a burst: N
// pending attempts need N calls. ok is false when nothing was admitted this
// call, which is not an error.
func (s *Server) AcceptPendingClients() (id api.ConnID, ok bool, err error) {
	if s.state != StateListening {
		return 0, false, notListening("accept")
	}
	ready, err := s.mux.PollListener(s.ln.FD())
	if err != nil {
		s.metrics.Poll("listener", api.PollError.String())
		s.metrics.Error("poll")
		logErr(s.log.Error(), err).Msg("listener poll failed")
		return 0, false, err
	}
	if !ready {
		s.metrics.Poll("listener", api.PollTimeout.String())
		return 0, false, nil
	}
	s.metrics.Poll("listener", api.PollReady.String())

	fd, remote, err := s.ln.Accept()
	if err != nil {
		if api.IsWouldBlock(err) {
			return 0, false, nil
		}
		s.metrics.Error("accept")
		logErr(s.log.Error(), err).Msg("failed to accept client connection")
		return 0, false, err
	}
	if s.cfg.MaxClients > 0 && s.clients.Count() >= s.cfg.MaxClients {
		_ = tcp.CloseFD(fd)
		s.metrics.ConnRejected()
		s.log.Warn().Str("remote", remote).Int("max_clients", s.cfg.MaxClients).Msg("client limit reached, connection closed")
		return 0, false, nil
	}

	slab := s.slabs.GetBuffer()
	c, err := s.clients.Add(fd, remote, pool.NewBuffer(slab))
	if err != nil {
		s.slabs.PutBuffer(slab)
		s.metrics.Error("accept")
		s.log.Error().Err(err).Int("fd", fd).Msg("registry rejected accepted socket")
		return 0, false, err
	}
	s.metrics.ConnAccepted()
	s.metrics.SetActive(s.clients.Count())
	s.log.Info().
		Stringer("conn_id", c.ID).
		Int("fd", fd).
		Str("remote", remote).
		Int("clients", s.clients.Count()).
		Msg("accepted new client connection")
	return c.ID, true, nil
}

// CheckClientBuffers polls every client with one bounded wait. On PollReady,
// Ready lists the positions with pending input in registry order; the caller
// is expected to SocketRead each of them and then decode. With no clients it
// reports PollTimeout without waiting.
func (s *Server) CheckClientBuffers() api.PollResult {
	if s.state != StateListening {
		return api.PollResult{Status: api.PollError, Err: notListening("check client buffers")}
	}
	s.fds = s.clients.Handles(s.fds)
	res := s.mux.PollClients(s.fds)
	s.metrics.Poll("clients", res.Status.String())
	if res.Status == api.PollError {
		s.metrics.Error("poll")
		logErr(s.log.Error(), res.Err).Int("clients", len(s.fds)).Msg("client poll failed")
	}
	return res
}

// SocketRead performs one read into the buffer of the client at pos. It
// returns the byte count, 0 with a nil error when the peer closed the
// connection, or an error. An error wrapping api.ErrWouldBlock means there
// was nothing to read. Unconsumed bytes from earlier reads are kept, so a
// frame split across reads is reassembled.
func (s *Server) SocketRead(pos int) (int, error) {
	c, err := s.clients.At(pos)
	if err != nil {
		return 0, err
	}
	return s.read(c)
}

// ReadID is SocketRead addressed by ConnID.
func (s *Server) ReadID(id api.ConnID) (int, error) {
	c, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return s.read(c)
}

// SplitBuffer runs the positional delimiter scan (protocol.SplitBuffer) over
// the buffer of the client at pos starting at *cursor, and advances *cursor.
// It does not consume buffered bytes; *cursor is an offset from the buffer
// origin and is invalidated by the next read, which shifts unconsumed bytes
// back to the origin. Use ResetBuffer to discard what has been scanned, or
// Messages for the consuming decoder.
func (s *Server) SplitBuffer(pos int, cursor *int) ([]string, error) {
	c, err := s.clients.At(pos)
	if err != nil {
		return nil, err
	}
	return protocol.SplitBuffer(c.Buffer.Bytes(), cursor), nil
}

// ResetBuffer discards everything buffered for the client at pos.
func (s *Server) ResetBuffer(pos int) error {
	c, err := s.clients.At(pos)
	if err != nil {
		return err
	}
	c.Buffer.Reset()
	return nil
}

// Messages decodes every complete frame buffered for the client at pos using
// the configured framing. A trailing partial frame stays buffered for the
// next read. A framing violation is returned together with the messages
// decoded before it.
func (s *Server) Messages(pos int) ([]protocol.Message, error) {
	c, err := s.clients.At(pos)
	if err != nil {
		return nil, err
	}
	return s.decode(c)
}

// MessagesID is Messages addressed by ConnID.
func (s *Server) MessagesID(id api.ConnID) ([]protocol.Message, error) {
	c, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return s.decode(c)
}

// Write frames payload with the configured framing and writes it to the
// client at pos. When the socket cannot take the whole frame, the unsent
// tail is queued and later frames wait behind it; Flush, which Tick calls,
// drains the queue. A client whose queue would exceed MaxPending is closed
// and removed, shifting later positions, and the returned error wraps
// api.ErrSendBacklog.
func (s *Server) Write(pos int, payload []byte) error {
	c, err := s.clients.At(pos)
	if err != nil {
		return err
	}
	return s.write(c, payload)
}

// WriteID is Write addressed by ConnID.
func (s *Server) WriteID(id api.ConnID, payload []byte) error {
	c, err := s.lookup(id)
	if err != nil {
		return err
	}
	return s.write(c, payload)
}

// RemoveClient closes and removes the client at pos. Later positions shift
// down by one. An out-of-range pos returns an error wrapping
// api.ErrOutOfRange and changes nothing.
func (s *Server) RemoveClient(pos int) error {
	c, err := s.clients.Remove(pos)
	if err != nil {
		return err
	}
	return s.closeConn(c, "removed")
}

// RemoveID closes and removes the client with the given id.
func (s *Server) RemoveID(id api.ConnID) error {
	c, err := s.clients.RemoveID(id)
	if err != nil {
		return err
	}
	return s.closeConn(c, "removed")
}

// ClientCount is the number of connected clients.
func (s *Server) ClientCount() int { return s.clients.Count() }

// ClientID returns the stable id of the client at pos.
func (s *Server) ClientID(pos int) (api.ConnID, error) {
	c, err := s.clients.At(pos)
	if err != nil {
		return 0, err
	}
	return c.ID, nil
}

// ClientIndex returns the current position of id, or -1.
func (s *Server) ClientIndex(id api.ConnID) int { return s.clients.Index(id) }

// Clients returns the ids of all clients in registry order.
func (s *Server) Clients() []api.ConnID { return s.clients.IDs() }

// RemoteAddr returns the peer address of id.
func (s *Server) RemoteAddr(id api.ConnID) (string, error) {
	c, err := s.lookup(id)
	if err != nil {
		return "", err
	}
	return c.Remote, nil
}

// Close closes every client and then the listening socket. The server
// cannot be reinitialized. Closing twice is a no-op.
func (s *Server) Close() error {
	if s.state == StateClosed {
		return nil
	}
	var errs []error
	for _, c := range s.clients.Drain() {
		if err := s.closeConn(c, "shutdown"); err != nil {
			errs = append(errs, err)
		}
	}
	if s.ln != nil {
		if err := s.ln.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	s.state = StateClosed
	s.log.Info().Msg("server closed")
	return errors.Join(errs...)
}

func (s *Server) lookup(id api.ConnID) (*registry.Conn, error) {
	c, ok := s.clients.Lookup(id)
	if !ok {
		return nil, api.NewError(api.KindRange, "lookup", fmt.Errorf("%w: %s", api.ErrUnknownConn, id))
	}
	return c, nil
}

func (s *Server) read(c *registry.Conn) (int, error) {
	n, err := c.Buffer.Fill(func(p []byte) (int, error) {
		return tcp.Read(c.FD, p)
	})
	switch {
	case err == nil && n == 0:
		s.log.Debug().Stringer("conn_id", c.ID).Msg("peer closed connection")
	case err == nil:
		s.metrics.BytesRead(n)
		s.log.Debug().Stringer("conn_id", c.ID).Int("bytes", n).Msg("bytes read from socket")
	case api.IsWouldBlock(err):
	default:
		s.metrics.Error("read")
		logErr(s.log.Error(), err).Stringer("conn_id", c.ID).Msg("error reading from socket")
	}
	return n, err
}

func (s *Server) decode(c *registry.Conn) ([]protocol.Message, error) {
	msgs, n, err := s.cfg.Framing.Decode(c.Buffer.Pending(), s.cfg.maxFrame())
	c.Buffer.Advance(n)
	s.metrics.FramesDecoded(s.cfg.Framing.String(), len(msgs))
	if err != nil {
		s.metrics.Error("decode")
		s.log.Warn().Err(err).Stringer("conn_id", c.ID).Msg("framing violation")
	}
	return msgs, err
}

func (s *Server) write(c *registry.Conn, payload []byte) error {
	frame, err := s.cfg.Framing.Encode(payload)
	if err != nil {
		return err
	}
	if len(c.Out) > 0 {
		return s.enqueue(c, frame)
	}
	n, err := tcp.Write(c.FD, frame)
	switch {
	case err == nil:
		return nil
	case api.IsWouldBlock(err):
		return s.enqueue(c, frame[n:])
	default:
		s.metrics.Error("write")
		logErr(s.log.Error(), err).Stringer("conn_id", c.ID).Msg("error writing to socket")
		return err
	}
}

// enqueue keeps rest for Flush. A client whose queue would grow past
// MaxPending is closed, since the frame already on the wire can no longer
// be completed.
func (s *Server) enqueue(c *registry.Conn, rest []byte) error {
	pending := len(c.Out) + len(rest)
	if pending > s.cfg.MaxPending {
		s.metrics.Error("write")
		s.log.Warn().
			Stringer("conn_id", c.ID).
			Int("pending", pending).
			Int("max_pending", s.cfg.MaxPending).
			Msg("outbound backlog exceeded, closing connection")
		if _, err := s.clients.RemoveID(c.ID); err == nil {
			_ = s.closeConn(c, "backlog")
		}
		return api.NewError(api.KindClosed, "write", fmt.Errorf("%w: %d bytes pending for %s", api.ErrSendBacklog, pending, c.ID))
	}
	c.Out = append(c.Out, rest...)
	return nil
}

// Flush retries queued output of every client, one write attempt each.
// Clients whose write fails are removed. It reports how many clients still
// have output queued.
func (s *Server) Flush() int {
	waiting := 0
	for i := s.clients.Count() - 1; i >= 0; i-- {
		c, err := s.clients.At(i)
		if err != nil || len(c.Out) == 0 {
			continue
		}
		n, err := tcp.Write(c.FD, c.Out)
		c.Out = c.Out[n:]
		if len(c.Out) == 0 {
			c.Out = nil
		}
		switch {
		case err == nil:
		case api.IsWouldBlock(err):
			waiting++
		default:
			s.metrics.Error("write")
			logErr(s.log.Error(), err).Stringer("conn_id", c.ID).Msg("error flushing socket")
			_ = s.RemoveClient(i)
		}
	}
	return waiting
}

// Pending returns the number of queued outbound bytes for id.
func (s *Server) Pending(id api.ConnID) (int, error) {
	c, err := s.lookup(id)
	if err != nil {
		return 0, err
	}
	return len(c.Out), nil
}

func (s *Server) closeConn(c *registry.Conn, reason string) error {
	err := tcp.CloseFD(c.FD)
	c.Buffer.Release(s.slabs)
	c.Out = nil
	s.metrics.ConnRemoved()
	s.metrics.SetActive(s.clients.Count())
	s.log.Info().
		Stringer("conn_id", c.ID).
		Str("remote", c.Remote).
		Str("reason", reason).
		Int("clients", s.clients.Count()).
		Msg("client connection closed")
	return err
}

func notListening(op string) error {
	return api.NewError(api.KindState, op, api.ErrNotListening)
}

func logErr(e *zerolog.Event, err error) *zerolog.Event {
	if errno, ok := api.ErrnoOf(err); ok {
		e = e.Int("errno", int(errno))
	}
	return e.Err(err)
}

// defaultMaxFrame leaves room for the length header and terminator so the
// largest accepted frame still fits in one connection buffer.
func defaultMaxFrame(bufSize int) int {
	return bufSize - len(strconv.Itoa(bufSize)) - 2
}
