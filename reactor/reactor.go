// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Platform-neutral readiness multiplexer over a pluggable Waiter.

package reactor

import (
	"errors"
	"fmt"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/momentics/hioload-tcp/api"
)

// DefaultPollTimeout keeps the controller responsive without busy spinning.
const DefaultPollTimeout = 100 * time.Microsecond

// Waiter performs one bounded readability wait over fds. On return ready[i]
// reports whether fds[i] has input pending (or a hangup/error the next read
// will surface). It returns the number of ready descriptors.
type Waiter interface {
	Wait(fds []int, ready []bool, timeout time.Duration) (int, error)
}

// Option customizes a Multiplexer.
type Option func(*Multiplexer)

// WithWaiter replaces the OS poll primitive, mainly for tests.
func WithWaiter(w Waiter) Option {
	return func(m *Multiplexer) {
		if w != nil {
			m.waiter = w
		}
	}
}

// Multiplexer reports readiness of the listener and of client sockets.
// It keeps scratch slices between calls and must be driven from one
// goroutine; only the timeout may be changed concurrently.
type Multiplexer struct {
	waiter  Waiter
	timeout atomic.Int64
	ready   []bool
	one     [1]int
}

// New creates a Multiplexer. A non-positive timeout selects
// DefaultPollTimeout.
func New(timeout time.Duration, opts ...Option) *Multiplexer {
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	m := &Multiplexer{waiter: NewSystemWaiter()}
	m.timeout.Store(int64(timeout))
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Timeout returns the current bounded wait.
func (m *Multiplexer) Timeout() time.Duration {
	return time.Duration(m.timeout.Load())
}

// SetTimeout changes the bounded wait used by subsequent polls.
func (m *Multiplexer) SetTimeout(d time.Duration) error {
	if d <= 0 {
		return api.NewError(api.KindConfig, "set poll timeout", fmt.Errorf("%w: poll timeout must be positive", api.ErrInvalidConfig))
	}
	m.timeout.Store(int64(d))
	return nil
}

// PollListener reports whether a connection attempt is pending on fd. When it
// returns true the caller should accept right away so the backlog does not
// fill up.
func (m *Multiplexer) PollListener(fd int) (bool, error) {
	m.one[0] = fd
	ready := m.scratch(1)
	_, err := m.waiter.Wait(m.one[:], ready, m.Timeout())
	if err != nil {
		if errors.Is(err, syscall.EINTR) {
			return false, nil
		}
		return false, wrap("poll listener", err)
	}
	return ready[0], nil
}

// PollClients waits for input on any of fds, given in registry order. An
// empty set has nothing to wait on and reports PollTimeout without touching
// the Waiter.
func (m *Multiplexer) PollClients(fds []int) api.PollResult {
	if len(fds) == 0 {
		return api.PollResult{Status: api.PollTimeout}
	}
	ready := m.scratch(len(fds))
	n, err := m.waiter.Wait(fds, ready, m.Timeout())
	if err != nil {
		if errors.Is(err, syscall.EINTR) {
			return api.PollResult{Status: api.PollTimeout}
		}
		return api.PollResult{Status: api.PollError, Err: wrap("poll clients", err)}
	}
	if n <= 0 {
		return api.PollResult{Status: api.PollTimeout}
	}
	idx := make([]int, 0, n)
	for i, ok := range ready {
		if ok {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return api.PollResult{Status: api.PollTimeout}
	}
	return api.PollResult{Status: api.PollReady, Ready: idx}
}

func (m *Multiplexer) scratch(n int) []bool {
	if cap(m.ready) < n {
		m.ready = make([]bool, n)
	}
	r := m.ready[:n]
	clear(r)
	return r
}

func wrap(op string, err error) error {
	if api.KindOf(err) != api.KindUnknown {
		return err
	}
	return api.OSError(op, err)
}
