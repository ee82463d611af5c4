//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd
// +build !linux,!darwin,!freebsd,!netbsd,!openbsd

// File: reactor/reactor_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for unsupported platforms.

package reactor

import (
	"time"

	"github.com/momentics/hioload-tcp/api"
)

type stubWaiter struct{}

// NewSystemWaiter returns a Waiter that always fails on this platform.
func NewSystemWaiter() Waiter { return stubWaiter{} }

func (stubWaiter) Wait([]int, []bool, time.Duration) (int, error) {
	return 0, api.NewError(api.KindNotSupported, "poll", api.ErrNotSupported)
}
