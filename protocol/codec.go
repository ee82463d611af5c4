// File: protocol/codec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"fmt"
	"strings"

	"github.com/momentics/hioload-tcp/api"
)

// Framing selects the message boundary convention.
type Framing int

const (
	FramingLength Framing = iota
	FramingDelimiter
)

func (f Framing) String() string {
	switch f {
	case FramingDelimiter:
		return "delimiter"
	default:
		return "length"
	}
}

// ParseFraming accepts "length" or "delimiter".
func ParseFraming(s string) (Framing, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "length", "length-prefixed":
		return FramingLength, nil
	case "delimiter", "delim":
		return FramingDelimiter, nil
	}
	return 0, api.NewError(api.KindConfig, "parse framing", fmt.Errorf("%w: unknown framing %q", api.ErrInvalidConfig, s))
}

// Message is one decoded application payload. Fields is populated only for
// delimiter framing.
type Message struct {
	Payload []byte
	Fields  []string
}

// Encode frames payload for transmission.
func (f Framing) Encode(payload []byte) ([]byte, error) {
	if f == FramingDelimiter {
		return EncodeDelimited(payload)
	}
	return EncodeLengthPrefixed(payload), nil
}

// Decode extracts complete messages from data and reports bytes consumed.
func (f Framing) Decode(data []byte, maxPayload int) ([]Message, int, error) {
	if f == FramingDelimiter {
		msgs, n := DecodeDelimited(data)
		return msgs, n, nil
	}
	return DecodeLengthPrefixed(data, maxPayload)
}
