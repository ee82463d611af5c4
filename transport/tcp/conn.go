//go:build linux || darwin || freebsd || netbsd || openbsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"errors"
	"io"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
)

// Read performs one read on a non-blocking descriptor. (0, nil) means the
// peer closed the connection in an orderly way.
func Read(fd int, p []byte) (int, error) {
	for {
		n, err := unix.Read(fd, p)
		switch {
		case err == nil:
			return n, nil
		case errors.Is(err, unix.EINTR):
			continue
		case wouldBlock(err):
			return 0, api.NewError(api.KindWouldBlock, "read", api.ErrWouldBlock)
		default:
			return 0, api.OSError("read", err)
		}
	}
}

// Write writes all of p unless the socket buffer fills up, in which case it
// returns the bytes written so far and a would-block error.
func Write(fd int, p []byte) (int, error) {
	written := 0
	for written < len(p) {
		n, err := unix.Write(fd, p[written:])
		if n > 0 {
			written += n
		}
		switch {
		case err == nil:
			if n == 0 {
				return written, api.OSError("write", io.ErrShortWrite)
			}
		case errors.Is(err, unix.EINTR):
		case wouldBlock(err):
			return written, api.NewError(api.KindWouldBlock, "write", api.ErrWouldBlock)
		default:
			return written, api.OSError("write", err)
		}
	}
	return written, nil
}

// CloseFD closes a client descriptor.
func CloseFD(fd int) error {
	if err := unix.Close(fd); err != nil {
		return api.OSError("close", err)
	}
	return nil
}

func wouldBlock(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}
