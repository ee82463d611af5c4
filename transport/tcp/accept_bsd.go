//go:build darwin || freebsd || netbsd || openbsd

// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import "golang.org/x/sys/unix"

// accept4 is missing on Darwin, so the flags are applied after the fact.
func accept(fd int) (int, unix.Sockaddr, error) {
	nfd, sa, err := unix.Accept(fd)
	if err != nil {
		return -1, nil, err
	}
	unix.CloseOnExec(nfd)
	if err := unix.SetNonblock(nfd, true); err != nil {
		unix.Close(nfd)
		return -1, nil, err
	}
	return nfd, sa, nil
}
