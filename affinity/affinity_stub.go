//go:build !linux

// File: affinity/affinity_stub.go
// Author: momentics <momentics@gmail.com>
//
// Stub implementation for platforms without thread affinity.

package affinity

import "github.com/momentics/hioload-tcp/api"

func setAffinityPlatform(int) (func(), error) {
	return nil, api.NewError(api.KindNotSupported, "pin", api.ErrNotSupported)
}
