//go:build linux || darwin

package tcp_test

import (
	"errors"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/transport/tcp"
)

func listen(t *testing.T) *tcp.Listener {
	t.Helper()
	l := tcp.NewListener(tcp.ListenConfig{Address: "127.0.0.1", Backlog: 4})
	for _, step := range []func() error{l.Create, l.Bind, l.Listen} {
		if err := step(); err != nil {
			t.Fatal(err)
		}
	}
	t.Cleanup(func() { l.Close() })
	return l
}

func acceptOne(t *testing.T, l *tcp.Listener) (int, string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		fd, remote, err := l.Accept()
		if err == nil {
			return fd, remote
		}
		if !api.IsWouldBlock(err) {
			t.Fatal(err)
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("no connection accepted")
	return -1, ""
}

func TestListenerAcceptWouldBlock(t *testing.T) {
	l := listen(t)
	_, _, err := l.Accept()
	if !errors.Is(err, api.ErrWouldBlock) {
		t.Fatalf("err = %v, want would-block", err)
	}
	if api.KindOf(err) != api.KindWouldBlock {
		t.Errorf("kind = %v", api.KindOf(err))
	}
}

func TestListenerReadWrite(t *testing.T) {
	l := listen(t)
	port, err := l.Port()
	if err != nil || port == 0 {
		t.Fatalf("port = %d, %v", port, err)
	}
	c, err := net.Dial("tcp4", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	fd, remote := acceptOne(t, l)
	defer tcp.CloseFD(fd)
	if remote != c.LocalAddr().String() {
		t.Errorf("remote = %q, want %q", remote, c.LocalAddr())
	}

	buf := make([]byte, 16)
	if _, err := tcp.Read(fd, buf); !api.IsWouldBlock(err) {
		t.Fatalf("read on idle socket: %v", err)
	}
	if _, err := c.Write([]byte("ping")); err != nil {
		t.Fatal(err)
	}
	var n int
	for i := 0; i < 200; i++ {
		n, err = tcp.Read(fd, buf)
		if !api.IsWouldBlock(err) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if err != nil || string(buf[:n]) != "ping" {
		t.Fatalf("read %q, %v", buf[:n], err)
	}

	if _, err := tcp.Write(fd, []byte("pong")); err != nil {
		t.Fatal(err)
	}
	c.SetReadDeadline(time.Now().Add(2 * time.Second))
	got := make([]byte, 4)
	if _, err := c.Read(got); err != nil || string(got) != "pong" {
		t.Fatalf("client read %q, %v", got, err)
	}

	c.Close()
	for i := 0; i < 200; i++ {
		n, err = tcp.Read(fd, buf)
		if !api.IsWouldBlock(err) {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if n != 0 || err != nil {
		t.Errorf("after peer close: n=%d err=%v, want 0 <nil>", n, err)
	}
}

func TestBindAddressInUse(t *testing.T) {
	l := listen(t)
	port, _ := l.Port()
	l2 := tcp.NewListener(tcp.ListenConfig{Address: "127.0.0.1", Port: port, Backlog: 1})
	if err := l2.Create(); err != nil {
		t.Fatal(err)
	}
	defer l2.Close()
	err := l2.Bind()
	if api.KindOf(err) != api.KindOS {
		t.Fatalf("err = %v, want os error", err)
	}
	if _, ok := api.ErrnoOf(err); !ok {
		t.Error("bind failure should carry an errno")
	}
}

func TestBadBindAddress(t *testing.T) {
	l := tcp.NewListener(tcp.ListenConfig{Address: "::1"})
	if err := l.Create(); err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	if err := l.Bind(); api.KindOf(err) != api.KindConfig {
		t.Errorf("err = %v, want config error", err)
	}
	if err := l.Close(); err != nil {
		t.Error(err)
	}
}

func TestParseFamily(t *testing.T) {
	if f, err := tcp.ParseFamily("inet6"); err != nil || f != tcp.FamilyIPv6 || f.Network() != "tcp6" {
		t.Errorf("got %v %v", f, err)
	}
	if _, err := tcp.ParseFamily("appletalk"); !errors.Is(err, api.ErrInvalidConfig) {
		t.Errorf("err = %v", err)
	}
}
