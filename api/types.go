// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations.

package api

import "strconv"

// ConnID identifies an accepted client connection for the life of a server.
// Unlike a registry position it is never shifted by removals and never reused.
type ConnID uint64

func (id ConnID) String() string {
	return "conn-" + strconv.FormatUint(uint64(id), 10)
}
