// Package api
// Author: momentics <momentics@gmail.com>
//
// Typed errors shared by the listener, registry, framer and client.
// Configuration failures and OS failures are distinct kinds; an OS failure
// carries its raw errno next to the kind instead of overloading one integer.

package api

import (
	"errors"
	"fmt"
	"syscall"
)

// Kind classifies an Error.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfig
	KindOS
	KindWouldBlock
	KindProtocol
	KindRange
	KindState
	KindClosed
	KindNotSupported
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindOS:
		return "os"
	case KindWouldBlock:
		return "would-block"
	case KindProtocol:
		return "protocol"
	case KindRange:
		return "range"
	case KindState:
		return "state"
	case KindClosed:
		return "closed"
	case KindNotSupported:
		return "not-supported"
	default:
		return "unknown"
	}
}

// Common errors used across the module.
var (
	ErrInvalidPort     = errors.New("port out of range (0 to 65534)")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrWouldBlock      = errors.New("operation would block")
	ErrOutOfRange      = errors.New("client index out of range")
	ErrEmptyRegistry   = errors.New("client registry is empty")
	ErrDuplicateHandle = errors.New("handle already registered")
	ErrUnknownConn     = errors.New("unknown connection id")
	ErrReservedByte    = errors.New("payload contains a reserved framing byte")
	ErrMalformedFrame  = errors.New("malformed frame")
	ErrFrameTooLarge   = errors.New("frame exceeds maximum payload size")
	ErrBufferFull      = errors.New("connection buffer full")
	ErrNotListening    = errors.New("server is not listening")
	ErrInvalidState    = errors.New("invalid lifecycle state")
	ErrSendBacklog     = errors.New("outbound backlog exceeded")
	ErrClosed          = errors.New("closed")
	ErrNotSupported    = errors.New("operation not supported on this platform")
)

// Error is the structured error returned by socket, registry and framing
// operations. Errno is set only for KindOS.
type Error struct {
	Kind  Kind
	Op    string
	Errno syscall.Errno
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindOS && e.Errno != 0 {
		return fmt.Sprintf("%s: %v (errno %d)", e.Op, e.Err, int(e.Errno))
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the wrapped sentinel or errno to errors.Is.
func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with an operation name and kind.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// OSError wraps a failed system call. The errno is extracted when present.
func OSError(op string, err error) error {
	if err == nil {
		return nil
	}
	e := &Error{Kind: KindOS, Op: op, Err: err}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Errno = errno
	}
	return e
}

// KindOf reports the Kind of err, or KindUnknown for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ErrnoOf returns the OS error code carried by err.
func ErrnoOf(err error) (syscall.Errno, bool) {
	var e *Error
	if errors.As(err, &e) && e.Kind == KindOS && e.Errno != 0 {
		return e.Errno, true
	}
	return 0, false
}

// IsWouldBlock reports whether err means "nothing ready this tick".
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}
