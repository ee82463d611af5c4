// File: affinity/affinity.go
// Author: momentics <momentics@gmail.com>
//
// Pins the goroutine that owns every socket to one logical CPU.
// Platform-specific implementations live in affinity_linux.go and
// affinity_stub.go.

package affinity

import (
	"fmt"
	"runtime"

	"github.com/momentics/hioload-tcp/api"
)

// Pin locks the calling goroutine to its OS thread and restricts that thread
// to logical CPU cpuID. The returned function restores the previous mask and
// unlocks the thread; call it from the same goroutine.
func Pin(cpuID int) (unpin func(), err error) {
	if cpuID < 0 || cpuID >= runtime.NumCPU() {
		return nil, api.NewError(api.KindConfig, "pin", fmt.Errorf("%w: cpu %d of %d", api.ErrInvalidConfig, cpuID, runtime.NumCPU()))
	}
	runtime.LockOSThread()
	restore, err := setAffinityPlatform(cpuID)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, err
	}
	return func() {
		restore()
		runtime.UnlockOSThread()
	}, nil
}
