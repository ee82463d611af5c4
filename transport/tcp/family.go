// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

package tcp

import (
	"fmt"
	"net"
	"strings"

	"github.com/momentics/hioload-tcp/api"
)

// Family is the socket address family.
type Family int

const (
	FamilyIPv4 Family = iota
	FamilyIPv6
)

// SockStream is the only supported socket type.
const SockStream = "stream"

func (f Family) String() string {
	if f == FamilyIPv6 {
		return "ipv6"
	}
	return "ipv4"
}

// Network returns the net package network name for dialing.
func (f Family) Network() string {
	if f == FamilyIPv6 {
		return "tcp6"
	}
	return "tcp4"
}

// Valid reports whether f is a known family.
func (f Family) Valid() bool {
	return f == FamilyIPv4 || f == FamilyIPv6
}

// BindIP parses a bind address for family f. "", "any" and "*" yield a nil
// IP, the wildcard address. IPv4 listeners only take IPv4 literals.
func BindIP(f Family, addr string) (net.IP, error) {
	switch a := strings.TrimSpace(addr); strings.ToLower(a) {
	case "", "any", "*":
		return nil, nil
	default:
		ip := net.ParseIP(a)
		if ip == nil {
			return nil, api.NewError(api.KindConfig, "bind address", fmt.Errorf("%w: bad bind address %q", api.ErrInvalidConfig, addr))
		}
		if f != FamilyIPv6 && ip.To4() == nil {
			return nil, api.NewError(api.KindConfig, "bind address", fmt.Errorf("%w: %q is not an IPv4 address", api.ErrInvalidConfig, addr))
		}
		return ip, nil
	}
}

// ParseFamily accepts ipv4/inet/tcp4 and ipv6/inet6/tcp6.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ipv4", "inet", "tcp4", "af_inet":
		return FamilyIPv4, nil
	case "ipv6", "inet6", "tcp6", "af_inet6":
		return FamilyIPv6, nil
	}
	return 0, api.NewError(api.KindConfig, "parse family", fmt.Errorf("%w: unknown address family %q", api.ErrInvalidConfig, s))
}

// ListenConfig describes the listening endpoint.
type ListenConfig struct {
	Family   Family
	Protocol int    // 0 selects the OS default for stream sockets
	Address  string // "", "any" or an IP literal
	Port     int
	Backlog  int
}
