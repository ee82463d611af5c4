// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp is the raw socket layer under the server: explicit
// create/bind/listen steps on a listening descriptor, one non-blocking accept
// at a time, and read/write helpers that separate "would block" from real
// failures. Accepted sockets are switched to non-blocking mode individually
// instead of inheriting it from the listener.
package tcp
