//go:build linux || darwin || freebsd || netbsd || openbsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"errors"
	"net"
	"strconv"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/api"
)

// Listener owns the listening descriptor. Each lifecycle step is a separate
// call so the controller can track its state between them.
type Listener struct {
	cfg ListenConfig
	fd  int
}

// NewListener prepares a Listener; no descriptor exists until Create.
func NewListener(cfg ListenConfig) *Listener {
	return &Listener{cfg: cfg, fd: -1}
}

// FD returns the listening descriptor or -1.
func (l *Listener) FD() int { return l.fd }

// Create opens the socket, enables address reuse and puts the listening
// descriptor in non-blocking mode so Accept never stalls the tick.
func (l *Listener) Create() error {
	domain := unix.AF_INET
	if l.cfg.Family == FamilyIPv6 {
		domain = unix.AF_INET6
	}
	fd, err := unix.Socket(domain, unix.SOCK_STREAM, l.cfg.Protocol)
	if err != nil {
		return api.OSError("socket", err)
	}
	unix.CloseOnExec(fd)
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return api.OSError("setsockopt SO_REUSEADDR", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return api.OSError("set nonblock", err)
	}
	l.fd = fd
	return nil
}

// Bind binds the socket to the configured address and port.
func (l *Listener) Bind() error {
	sa, err := l.sockaddr()
	if err != nil {
		return err
	}
	if err := unix.Bind(l.fd, sa); err != nil {
		return api.OSError("bind", err)
	}
	return nil
}

// Listen starts accepting connections with the configured backlog.
func (l *Listener) Listen() error {
	if err := unix.Listen(l.fd, l.cfg.Backlog); err != nil {
		return api.OSError("listen", err)
	}
	return nil
}

// Accept makes exactly one non-blocking accept attempt. When nothing is
// pending it returns an error wrapping api.ErrWouldBlock, which is not a
// failure.
func (l *Listener) Accept() (fd int, remote string, err error) {
	for {
		nfd, sa, err := accept(l.fd)
		switch {
		case err == nil:
			return nfd, sockaddrString(sa), nil
		case errors.Is(err, unix.EINTR):
			continue
		case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.ECONNABORTED):
			return -1, "", api.NewError(api.KindWouldBlock, "accept", api.ErrWouldBlock)
		default:
			return -1, "", api.OSError("accept", err)
		}
	}
}

// Port reports the bound port, which differs from the configured one when
// binding to port 0.
func (l *Listener) Port() (int, error) {
	sa, err := unix.Getsockname(l.fd)
	if err != nil {
		return 0, api.OSError("getsockname", err)
	}
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return a.Port, nil
	case *unix.SockaddrInet6:
		return a.Port, nil
	}
	return 0, api.NewError(api.KindNotSupported, "getsockname", api.ErrNotSupported)
}

// Close closes the listening descriptor. Closing twice is a no-op.
func (l *Listener) Close() error {
	if l.fd < 0 {
		return nil
	}
	fd := l.fd
	l.fd = -1
	if err := unix.Close(fd); err != nil {
		return api.OSError("close listener", err)
	}
	return nil
}

func (l *Listener) sockaddr() (unix.Sockaddr, error) {
	ip, err := BindIP(l.cfg.Family, l.cfg.Address)
	if err != nil {
		return nil, err
	}
	if l.cfg.Family == FamilyIPv6 {
		sa := &unix.SockaddrInet6{Port: l.cfg.Port}
		if ip != nil {
			copy(sa.Addr[:], ip.To16())
		}
		return sa, nil
	}
	sa := &unix.SockaddrInet4{Port: l.cfg.Port}
	if ip != nil {
		copy(sa.Addr[:], ip.To4())
	}
	return sa, nil
}

func sockaddrString(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *unix.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	}
	return ""
}
