// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package reactor provides the bounded-wait readiness multiplexer used by the
// server: one poll over the listening socket, one poll over every client
// socket, each suspended for at most the configured timeout.
//
// Each client poll scans every registered descriptor, O(n) per tick.
package reactor
