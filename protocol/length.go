// File: protocol/length.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"strconv"

	"github.com/momentics/hioload-tcp/api"
)

// maxLengthDigits bounds the decimal prefix so garbage input cannot make the
// decoder wait forever for a comma.
const maxLengthDigits = 10

// EncodeLengthPrefixed returns "<len>," + payload + NUL.
func EncodeLengthPrefixed(payload []byte) []byte {
	prefix := strconv.Itoa(len(payload))
	out := make([]byte, 0, len(prefix)+1+len(payload)+1)
	out = append(out, prefix...)
	out = append(out, FieldSeparator)
	out = append(out, payload...)
	return append(out, Terminator)
}

// DecodeLengthPrefixed extracts every complete frame from data. It returns
// the decoded messages, the bytes consumed, and an error if a malformed or
// oversized frame is found; messages decoded before the bad frame are still
// returned. maxPayload <= 0 disables the size check.
func DecodeLengthPrefixed(data []byte, maxPayload int) ([]Message, int, error) {
	var (
		msgs     []Message
		consumed int
	)
	for consumed < len(data) {
		frame := data[consumed:]
		length, header, err := parseLength(frame)
		if err != nil {
			return msgs, consumed, err
		}
		if header == 0 {
			break
		}
		if maxPayload > 0 && length > maxPayload {
			return msgs, consumed, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrFrameTooLarge}
		}
		total := header + length + 1
		if len(frame) < total {
			break
		}
		if frame[total-1] != Terminator {
			return msgs, consumed, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrMalformedFrame}
		}
		payload := make([]byte, length)
		copy(payload, frame[header:header+length])
		msgs = append(msgs, Message{Payload: payload})
		consumed += total
	}
	return msgs, consumed, nil
}

// parseLength reads the "<digits>," header. header is 0 when more bytes are
// needed to finish it.
func parseLength(frame []byte) (length, header int, err error) {
	for i, c := range frame {
		switch {
		case c == FieldSeparator:
			if i == 0 {
				return 0, 0, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrMalformedFrame}
			}
			n, convErr := strconv.Atoi(string(frame[:i]))
			if convErr != nil {
				return 0, 0, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrMalformedFrame}
			}
			return n, i + 1, nil
		case c < '0' || c > '9':
			return 0, 0, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrMalformedFrame}
		case i >= maxLengthDigits:
			return 0, 0, &api.Error{Kind: api.KindProtocol, Op: "decode length-prefixed", Err: api.ErrFrameTooLarge}
		}
	}
	return 0, 0, nil
}
