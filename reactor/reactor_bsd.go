//go:build darwin || freebsd || netbsd || openbsd
// +build darwin freebsd netbsd openbsd

// File: reactor/reactor_bsd.go
// Author: momentics <momentics@gmail.com>
//
// BSD/Darwin poll(2) waiter. poll only has millisecond resolution, so
// sub-millisecond timeouts are rounded up to 1ms rather than down to a busy
// spin.

package reactor

import (
	"time"

	"golang.org/x/sys/unix"
)

const readable = unix.POLLIN | unix.POLLHUP | unix.POLLERR | unix.POLLNVAL

type pollWaiter struct {
	pfds []unix.PollFd
}

// NewSystemWaiter returns the platform poll(2) based Waiter.
func NewSystemWaiter() Waiter {
	return &pollWaiter{}
}

func (w *pollWaiter) Wait(fds []int, ready []bool, timeout time.Duration) (int, error) {
	w.pfds = w.pfds[:0]
	for _, fd := range fds {
		w.pfds = append(w.pfds, unix.PollFd{Fd: int32(fd), Events: unix.POLLIN})
	}
	ms := int((timeout + time.Millisecond - 1) / time.Millisecond)
	n, err := unix.Poll(w.pfds, ms)
	if err != nil {
		return 0, err
	}
	for i := range w.pfds {
		ready[i] = w.pfds[i].Revents&readable != 0
	}
	return n, nil
}
