// Package protocol frames application messages inside a TCP byte stream.
//
// Two conventions are supported. Length-prefixed framing writes the payload
// length as ASCII decimal, a comma, the payload and a terminating NUL byte:
//
//	5,a,b!c\x00
//
// It places no restriction on payload bytes and is the default. Delimiter
// framing appends '!' to each payload and splits the frame on ',' into
// fields, so '!' ',' and NUL cannot appear in a delimited payload; encoders
// reject such payloads instead of corrupting the stream.
package protocol
