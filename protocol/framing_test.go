package protocol_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-test/deep"

	"github.com/momentics/hioload-tcp/api"
	"github.com/momentics/hioload-tcp/protocol"
)

func TestSplitBufferHello(t *testing.T) {
	buf := make([]byte, 64)
	copy(buf, "hello!")
	cursor := 0
	got := protocol.SplitBuffer(buf, &cursor)
	if diff := deep.Equal(got, []string{"hello"}); diff != nil {
		t.Error(diff)
	}
	if cursor != 6 {
		t.Errorf("cursor = %d, want 6 (past the sentinel)", cursor)
	}
}

func TestSplitBufferFieldsAndSuccessiveFrames(t *testing.T) {
	buf := make([]byte, 32)
	copy(buf, "a,b,c!d!")
	cursor := 0
	if diff := deep.Equal(protocol.SplitBuffer(buf, &cursor), []string{"a", "b", "c"}); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal(protocol.SplitBuffer(buf, &cursor), []string{"d"}); diff != nil {
		t.Error(diff)
	}
	// Zero fill ends the scan and consumes the NUL.
	if got := protocol.SplitBuffer(buf, &cursor); len(got) != 0 {
		t.Errorf("got %q at end of data", got)
	}
	if cursor != 9 {
		t.Errorf("cursor = %d, want 9", cursor)
	}
}

func TestSplitBufferDropsUnterminatedField(t *testing.T) {
	buf := []byte("x,partial\x00")
	cursor := 0
	if diff := deep.Equal(protocol.SplitBuffer(buf, &cursor), []string{"x"}); diff != nil {
		t.Error(diff)
	}
	end := []byte("abc")
	cursor = 0
	protocol.SplitBuffer(end, &cursor)
	if cursor != len(end) {
		t.Errorf("cursor = %d, must stop at end of slice", cursor)
	}
}

func TestDelimitedRoundTrip(t *testing.T) {
	for _, p := range []string{"hello", "", "with space", "üñï"} {
		wire, err := protocol.EncodeDelimited([]byte(p))
		if err != nil {
			t.Fatalf("%q: %v", p, err)
		}
		msgs, n := protocol.DecodeDelimited(wire)
		if n != len(wire) || len(msgs) != 1 {
			t.Fatalf("%q: consumed %d msgs %d", p, n, len(msgs))
		}
		if string(msgs[0].Payload) != p {
			t.Errorf("payload = %q, want %q", msgs[0].Payload, p)
		}
		cursor := 0
		if diff := deep.Equal(protocol.SplitBuffer(wire, &cursor), []string{p}); diff != nil {
			t.Errorf("%q: %v", p, diff)
		}
	}
}

func TestEncodeDelimitedRejectsReservedBytes(t *testing.T) {
	for _, p := range []string{"a,b", "a!b", "a\x00b"} {
		_, err := protocol.EncodeDelimited([]byte(p))
		if !errors.Is(err, api.ErrReservedByte) {
			t.Errorf("%q: err = %v, want ErrReservedByte", p, err)
		}
		if api.KindOf(err) != api.KindProtocol {
			t.Errorf("%q: kind = %v", p, api.KindOf(err))
		}
	}
}

func TestDecodeDelimitedKeepsPartialFrame(t *testing.T) {
	msgs, n := protocol.DecodeDelimited([]byte("one,two!thr"))
	if n != 8 {
		t.Errorf("consumed = %d, want 8", n)
	}
	if diff := deep.Equal(msgs[0].Fields, []string{"one", "two"}); diff != nil {
		t.Error(diff)
	}
}

func TestLengthPrefixedWireFormat(t *testing.T) {
	wire := protocol.EncodeLengthPrefixed([]byte("a,b!c"))
	if !bytes.Equal(wire, []byte("5,a,b!c\x00")) {
		t.Fatalf("wire = %q", wire)
	}
	msgs, n, err := protocol.DecodeLengthPrefixed(wire, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(wire) || len(msgs) != 1 || string(msgs[0].Payload) != "a,b!c" {
		t.Errorf("decoded %q consumed %d", msgs, n)
	}
}

func TestLengthPrefixedRoundTripBinary(t *testing.T) {
	payloads := [][]byte{{}, []byte("!,!,"), {0, 1, 2, 0}, bytes.Repeat([]byte("z"), 300)}
	var stream []byte
	for _, p := range payloads {
		stream = append(stream, protocol.EncodeLengthPrefixed(p)...)
	}
	msgs, n, err := protocol.DecodeLengthPrefixed(stream, 0)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(stream) || len(msgs) != len(payloads) {
		t.Fatalf("consumed %d/%d, %d messages", n, len(stream), len(msgs))
	}
	for i, p := range payloads {
		if !bytes.Equal(msgs[i].Payload, p) {
			t.Errorf("message %d = %q, want %q", i, msgs[i].Payload, p)
		}
	}
}

func TestLengthPrefixedPartial(t *testing.T) {
	wire := protocol.EncodeLengthPrefixed([]byte("hello"))
	for cut := 0; cut < len(wire); cut++ {
		msgs, n, err := protocol.DecodeLengthPrefixed(wire[:cut], 0)
		if err != nil || n != 0 || len(msgs) != 0 {
			t.Errorf("cut %d: msgs=%d n=%d err=%v", cut, len(msgs), n, err)
		}
	}
}

func TestLengthPrefixedErrors(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want error
	}{
		"no digits":      {",abc\x00", 0, api.ErrMalformedFrame},
		"non digit":      {"1x,a\x00", 0, api.ErrMalformedFrame},
		"bad terminator": {"1,ab", 0, api.ErrMalformedFrame},
		"too large":      {"100,", 10, api.ErrFrameTooLarge},
		"prefix runaway": {"12345678901", 0, api.ErrFrameTooLarge},
	}
	for name, tc := range cases {
		_, _, err := protocol.DecodeLengthPrefixed([]byte(tc.in), tc.max)
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", name, err, tc.want)
		}
	}
}

func TestLengthPrefixedReturnsMessagesBeforeError(t *testing.T) {
	stream := append(protocol.EncodeLengthPrefixed([]byte("ok")), "x,"...)
	msgs, n, err := protocol.DecodeLengthPrefixed(stream, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(msgs) != 1 || n != 5 {
		t.Errorf("msgs=%d consumed=%d, want 1 and 5", len(msgs), n)
	}
}

func TestParseFraming(t *testing.T) {
	if f, err := protocol.ParseFraming("Delimiter"); err != nil || f != protocol.FramingDelimiter {
		t.Errorf("got %v %v", f, err)
	}
	if f, err := protocol.ParseFraming(""); err != nil || f != protocol.FramingLength {
		t.Errorf("default: got %v %v", f, err)
	}
	if _, err := protocol.ParseFraming("xml"); api.KindOf(err) != api.KindConfig {
		t.Errorf("err = %v", err)
	}
}
