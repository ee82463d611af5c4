// File: protocol/delimiter.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"bytes"
	"strings"

	"github.com/momentics/hioload-tcp/api"
)

const (
	// Delimiter terminates a frame under delimiter framing.
	Delimiter byte = '!'
	// FieldSeparator splits a delimited frame into fields.
	FieldSeparator byte = ','
	// Terminator ends a length-prefixed frame and marks end-of-data in a
	// zero-filled buffer.
	Terminator byte = 0x00
)

// EncodeDelimited returns payload followed by the '!' sentinel.
func EncodeDelimited(payload []byte) ([]byte, error) {
	if i := bytes.IndexAny(payload, "!,\x00"); i >= 0 {
		return nil, &api.Error{Kind: api.KindProtocol, Op: "encode delimited", Err: api.ErrReservedByte}
	}
	out := make([]byte, len(payload)+1)
	copy(out, payload)
	out[len(payload)] = Delimiter
	return out, nil
}

// SplitBuffer scans buf from *start, collecting comma separated fields until
// it consumes a '!' or a NUL byte. *start is left just past the byte that
// stopped the scan so repeated calls walk successive frames. Characters
// accumulated when a NUL is reached are dropped. Reaching the end of buf acts
// like a NUL but never moves *start past len(buf).
func SplitBuffer(buf []byte, start *int) []string {
	var (
		fields []string
		cur    strings.Builder
	)
	for *start < len(buf) {
		c := buf[*start]
		*start++
		switch c {
		case FieldSeparator:
			fields = append(fields, cur.String())
			cur.Reset()
		case Delimiter:
			return append(fields, cur.String())
		case Terminator:
			return fields
		default:
			cur.WriteByte(c)
		}
	}
	return fields
}

// DecodeDelimited extracts every complete '!'-terminated frame from data and
// reports how many bytes were consumed. A trailing frame without its sentinel
// is left unconsumed. A NUL byte discards whatever partial frame precedes it.
func DecodeDelimited(data []byte) ([]Message, int) {
	var (
		msgs     []Message
		consumed int
	)
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case Delimiter:
			payload := make([]byte, i-consumed)
			copy(payload, data[consumed:i])
			msgs = append(msgs, Message{
				Payload: payload,
				Fields:  strings.Split(string(payload), string(FieldSeparator)),
			})
			consumed = i + 1
		case Terminator:
			consumed = i + 1
		}
	}
	return msgs, consumed
}
