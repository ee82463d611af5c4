//go:build linux

// File: affinity/affinity_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux implementation over sched_setaffinity(2).

package affinity

import (
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
)

// setAffinityPlatform pins the calling thread; pid 0 addresses the thread,
// not the process.
func setAffinityPlatform(cpuID int) (func(), error) {
	var old unix.CPUSet
	if err := unix.SchedGetaffinity(0, &old); err != nil {
		return nil, api.OSError("sched_getaffinity", err)
	}
	var set unix.CPUSet
	set.Zero()
	set.Set(cpuID)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return nil, api.OSError("sched_setaffinity", err)
	}
	return func() { _ = unix.SchedSetaffinity(0, &old) }, nil
}
