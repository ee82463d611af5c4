//go:build linux

package affinity_test

import (
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-tcp/affinity"
	"github.com/momentics/hioload-tcp/api"
)

func TestPin(t *testing.T) {
	var before unix.CPUSet
	if err := unix.SchedGetaffinity(0, &before); err != nil {
		t.Fatal(err)
	}
	cpu := -1
	for i := 0; i < 1024; i++ {
		if before.IsSet(i) {
			cpu = i
			break
		}
	}
	if cpu < 0 {
		t.Skip("no CPU in affinity mask")
	}

	unpin, err := affinity.Pin(cpu)
	if err != nil {
		t.Fatal(err)
	}
	var pinned unix.CPUSet
	if err := unix.SchedGetaffinity(0, &pinned); err != nil {
		t.Fatal(err)
	}
	if pinned.Count() != 1 || !pinned.IsSet(cpu) {
		t.Errorf("mask after pin has %d CPUs", pinned.Count())
	}
	unpin()
}

func TestPinRejectsBadCPU(t *testing.T) {
	if _, err := affinity.Pin(-1); api.KindOf(err) != api.KindConfig {
		t.Fatalf("err = %v, want config error", err)
	}
}
