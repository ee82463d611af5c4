// Package pool
// Author: momentics <momentics@gmail.com>
//
// Memory layer for hioload-tcp: fixed-size receive slabs recycled through a
// sync.Pool, and the per-connection Buffer that keeps unconsumed bytes
// between reads.
package pool
