// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"
	"time"
)

// Waiter is a scripted readiness Waiter that records how often the OS
// primitive would have been invoked.
type Waiter struct {
	mu    sync.Mutex
	calls int
	ready map[int]bool
	err   error
	last  time.Duration
}

// NewWaiter returns a Waiter with no ready descriptors.
func NewWaiter() *Waiter {
	return &Waiter{ready: make(map[int]bool)}
}

// SetReady marks fd as readable (or not) for subsequent waits.
func (w *Waiter) SetReady(fd int, ok bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ready[fd] = ok
}

// FailWith makes every subsequent wait return err.
func (w *Waiter) FailWith(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.err = err
}

// Calls is the number of Wait invocations so far.
func (w *Waiter) Calls() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.calls
}

// LastTimeout is the timeout passed to the most recent Wait.
func (w *Waiter) LastTimeout() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

func (w *Waiter) Wait(fds []int, ready []bool, timeout time.Duration) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls++
	w.last = timeout
	if w.err != nil {
		return 0, w.err
	}
	n := 0
	for i, fd := range fds {
		ready[i] = w.ready[fd]
		if ready[i] {
			n++
		}
	}
	return n, nil
}
