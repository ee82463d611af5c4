// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics, debug introspection and hot-reload for the socket server.
//
// Provides:
//   - Prometheus collectors for accepts, removals, reads, frames and polls
//   - Named debug probes dumped as JSON
//   - An HTTP handler serving /metrics and /debug/state
//   - A debounced file watcher used to reload configuration
package control
