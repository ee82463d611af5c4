// Package api
// Author: momentics
//
// Readiness poll results shared by the reactor and the server.

package api

// PollStatus is the outcome of one bounded readiness wait.
type PollStatus int

const (
	PollTimeout PollStatus = iota
	PollReady
	PollError
)

func (s PollStatus) String() string {
	switch s {
	case PollReady:
		return "ready"
	case PollError:
		return "error"
	default:
		return "timeout"
	}
}

// PollResult reports which registry positions have pending input.
// Ready is only meaningful when Status is PollReady and preserves registry
// order. Positions are valid until the next removal from the registry.
type PollResult struct {
	Status PollStatus
	Ready  []int
	Err    error
}
