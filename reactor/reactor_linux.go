//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux poll(2) waiter. ppoll takes a timespec, so sub-millisecond timeouts
// are honoured.

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
	ts := unix.NsecToTimespec(timeout.Nanoseconds())
	n, err := unix.Ppoll(w.pfds, &ts, nil)
	if err != nil {
		return 0, err
	}
	for i := range w.pfds {
		ready[i] = w.pfds[i].Revents&readable != 0
	}
	return n, nil
}
