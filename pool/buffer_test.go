package pool_test

import (
	"errors"
	"testing"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/pool"
)

func reader(chunks ...string) func([]byte) (int, error) {
	return func(p []byte) (int, error) {
		if len(chunks) == 0 {
			return 0, nil
		}
		n := copy(p, chunks[0])
		chunks[0] = chunks[0][n:]
		if chunks[0] == "" {
			chunks = chunks[1:]
		}
		return n, nil
	}
}

func TestBufferAccumulatesAcrossReads(t *testing.T) {
	b := pool.NewBuffer(make([]byte, 16))
	read := reader("hel", "lo!")
	if _, err := b.Fill(read); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Pending()); got != "hel" {
		t.Fatalf("pending = %q", got)
	}
	if _, err := b.Fill(read); err != nil {
		t.Fatal(err)
	}
	if got := string(b.Pending()); got != "hello!" {
		t.Fatalf("pending = %q, want hello!", got)
	}
}

func TestBufferCompactKeepsPartialFrame(t *testing.T) {
	b := pool.NewBuffer(make([]byte, 8))
	if _, err := b.Fill(reader("ab!cd")); err != nil {
		t.Fatal(err)
	}
	b.Advance(3)
	if b.Cursor() != 3 {
		t.Fatalf("cursor = %d", b.Cursor())
	}
	if _, err := b.Fill(reader("e!")); err != nil {
		t.Fatal(err)
	}
	if b.Cursor() != 0 {
		t.Errorf("cursor after compaction = %d, want 0", b.Cursor())
	}
	if got := string(b.Pending()); got != "cde!" {
		t.Errorf("pending = %q, want cde!", got)
	}
}

func TestBufferFull(t *testing.T) {
	b := pool.NewBuffer(make([]byte, 4))
	if _, err := b.Fill(reader("abcd")); err != nil {
		t.Fatal(err)
	}
	_, err := b.Fill(reader("e"))
	if !errors.Is(err, api.ErrBufferFull) {
		t.Fatalf("err = %v, want ErrBufferFull", err)
	}
	b.Advance(4)
	if b.Len() != 0 || b.Cursor() != 0 {
		t.Errorf("fully consumed buffer should rewind, len=%d cursor=%d", b.Len(), b.Cursor())
	}
}

func TestBufferPassesThroughPeerClose(t *testing.T) {
	b := pool.NewBuffer(make([]byte, 4))
	n, err := b.Fill(reader())
	if n != 0 || err != nil {
		t.Fatalf("n=%d err=%v, want 0 <nil>", n, err)
	}
}

func TestBytePoolReuse(t *testing.T) {
	bp := pool.NewBytePool(128)
	b1 := bp.GetBuffer()
	b1[0] = 'x'
	bp.PutBuffer(b1)
	b2 := bp.GetBuffer()
	if len(b2) != 128 {
		t.Fatalf("len = %d, want 128", len(b2))
	}
	if b2[0] != 0 {
		t.Error("slab must be zeroed on Get")
	}
	bp.PutBuffer(make([]byte, 7))
}
