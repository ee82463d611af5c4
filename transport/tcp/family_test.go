package tcp_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

func TestBindIP(t *testing.T) {
	tests := []struct {
		family tcp.Family
		addr   string
		want   string
		ok     bool
	}{
		{tcp.FamilyIPv4, "", "<nil>", true},
		{tcp.FamilyIPv4, "any", "<nil>", true},
		{tcp.FamilyIPv4, "127.0.0.1", "127.0.0.1", true},
		{tcp.FamilyIPv4, "::1", "", false},
		{tcp.FamilyIPv4, "localhost", "", false},
		{tcp.FamilyIPv6, "::1", "::1", true},
		{tcp.FamilyIPv6, "*", "<nil>", true},
	}
	for _, tt := range tests {
		ip, err := tcp.BindIP(tt.family, tt.addr)
		if !tt.ok {
			if !errors.Is(err, api.ErrInvalidConfig) {
				t.Errorf("BindIP(%v, %q) err = %v, want ErrInvalidConfig", tt.family, tt.addr, err)
			}
			continue
		}
		if err != nil || ip.String() != tt.want {
			t.Errorf("BindIP(%v, %q) = %v, %v; want %s", tt.family, tt.addr, ip, err, tt.want)
		}
	}
}

func TestFamilyValid(t *testing.T) {
	if !tcp.FamilyIPv4.Valid() || !tcp.FamilyIPv6.Valid() {
		t.Fatal("known family reported invalid")
	}
	if tcp.Family(7).Valid() {
		t.Fatal("unknown family reported valid")
	}
}
