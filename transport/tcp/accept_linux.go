//go:build linux

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import "golang.org/x/sys/unix"

func accept(fd int) (int, unix.Sockaddr, error) {
	return unix.Accept4(fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
}
