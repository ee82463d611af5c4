package api_test

import (
	"errors"
	"syscall"
	"testing"

	"github.com/momentics/hioload-tcp/api"
)

func TestOSErrorCarriesErrno(t *testing.T) {
	err := api.OSError("bind", syscall.EADDRINUSE)
	if api.KindOf(err) != api.KindOS {
		t.Fatalf("kind = %v, want os", api.KindOf(err))
	}
	errno, ok := api.ErrnoOf(err)
	if !ok || errno != syscall.EADDRINUSE {
		t.Fatalf("errno = %v (%v), want EADDRINUSE", errno, ok)
	}
	if !errors.Is(err, syscall.EADDRINUSE) {
		t.Error("errors.Is should see the wrapped errno")
	}
}

func TestConfigErrorHasNoErrno(t *testing.T) {
	err := api.NewError(api.KindConfig, "init", api.ErrInvalidPort)
	if _, ok := api.ErrnoOf(err); ok {
		t.Error("config error must not report an errno")
	}
	if !errors.Is(err, api.ErrInvalidPort) {
		t.Error("expected ErrInvalidPort")
	}
	if api.KindOf(err) != api.KindConfig {
		t.Errorf("kind = %v", api.KindOf(err))
	}
}

func TestIsWouldBlock(t *testing.T) {
	if !api.IsWouldBlock(api.NewError(api.KindWouldBlock, "accept", api.ErrWouldBlock)) {
		t.Error("wrapped ErrWouldBlock not detected")
	}
	if api.IsWouldBlock(errors.New("boom")) {
		t.Error("foreign error reported as would-block")
	}
	if api.OSError("read", nil) != nil {
		t.Error("OSError(nil) must be nil")
	}
}
